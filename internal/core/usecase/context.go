package usecase

import (
	"fmt"
	"strconv"
)

// buildProductChunks renders one generation context chunk per surviving
// product, in ranking order. Chunk ordering only affects the prompt.
func buildProductChunks(candidates map[int64]productCandidate, ordered []int64) []string {
	chunks := make([]string, 0, len(ordered))
	for _, id := range ordered {
		p := candidates[id].payload
		chunks = append(chunks, fmt.Sprintf(
			"Title: %s\nCategory: %s\nPrice: %s\nDescription: %s\nSnippet: %s",
			p.Title,
			p.Category,
			formatPrice(p.Price),
			p.Description,
			p.ChunkText,
		))
	}
	return chunks
}

func formatPrice(price *float64) string {
	if price == nil {
		return ""
	}
	return strconv.FormatFloat(*price, 'f', -1, 64)
}
