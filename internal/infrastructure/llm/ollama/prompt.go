package ollama

import (
	"fmt"
	"strings"
)

// maxPromptChunks caps the context block; callers already truncate, this
// is a local guard against oversized prompts.
const maxPromptChunks = 40

func buildRecommendationPrompt(question string, chunks []string) string {
	if len(chunks) > maxPromptChunks {
		chunks = chunks[:maxPromptChunks]
	}
	context := strings.Join(chunks, "\n\n---\n\n")

	return fmt.Sprintf(`You are an AI fashion stylist. You must recommend outfits ONLY using the products listed in the context below.

Rules:
- Suggest 2-4 suitable products from the context.
- If no exact match exists, recommend closest alternatives.
- Never say "I don't know" if there are products in context.
- Keep the message short.

Context:
%s

User query: %s

Now give a short, friendly recommendation:`, context, question)
}
