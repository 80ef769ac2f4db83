package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nparshin/product-discovery/internal/core/domain"
	"github.com/nparshin/product-discovery/internal/core/ports"
)

// SearchParams bounds the retrieval pipeline.
type SearchParams struct {
	// VectorLimit is how many points to request from the vector store.
	VectorLimit int
	// TopN is the maximum number of results returned to the caller.
	TopN int
	// ChunkCap bounds the generation context to respect prompt size.
	ChunkCap int
}

func (p SearchParams) normalize() SearchParams {
	if p.VectorLimit <= 0 {
		p.VectorLimit = 20
	}
	if p.TopN <= 0 {
		p.TopN = 6
	}
	if p.ChunkCap <= 0 {
		p.ChunkCap = 40
	}
	return p
}

// SearchUseCase fuses vector similarity, knowledge-graph filtering and
// answer-mention reranking into one ordered result list. It holds no
// mutable state; collaborator handles are long-lived and safe for
// concurrent use.
type SearchUseCase struct {
	synonyms  domain.SynonymTable
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
	graph     ports.GraphStore
	generator ports.AnswerGenerator
	params    SearchParams
}

func NewSearchUseCase(
	synonyms domain.SynonymTable,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	graph ports.GraphStore,
	generator ports.AnswerGenerator,
	params SearchParams,
) *SearchUseCase {
	return &SearchUseCase{
		synonyms:  synonyms,
		embedder:  embedder,
		vectorDB:  vectorDB,
		graph:     graph,
		generator: generator,
		params:    params.normalize(),
	}
}

func (uc *SearchUseCase) Search(ctx context.Context, query string) (*domain.SearchResponse, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", errors.New("query must not be empty"))
	}

	intent := ExtractIntent(uc.synonyms, trimmed)
	enriched := EnrichQuery(uc.synonyms, trimmed, intent.Category)

	// Graph resolution and vector retrieval are independent signals;
	// resolve candidates while the embedding round-trip is in flight.
	graphCh := make(chan domain.GraphSignal, 1)
	go func() {
		graphCh <- uc.resolveGraphCandidates(ctx, intent)
	}()

	queryVector, err := uc.embedder.EmbedQuery(ctx, enriched)
	if err != nil {
		<-graphCh
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := uc.vectorDB.Search(ctx, queryVector, uc.params.VectorLimit)
	if err != nil {
		<-graphCh
		return nil, fmt.Errorf("search vector db: %w", err)
	}

	graph := <-graphCh
	stats := domain.SearchStats{
		VectorHits:      len(hits),
		GraphCandidates: len(graph.Candidates),
		GraphDegraded:   graph.Degraded,
	}

	if len(hits) == 0 {
		resp := noMatchResponse(intent.Category)
		resp.Stats = stats
		return resp, nil
	}

	candidates, ordered := aggregateHits(hits)
	stats.Candidates = len(ordered)
	if len(ordered) == 0 {
		resp := noMatchResponse(domain.CategoryNone)
		resp.Stats = stats
		return resp, nil
	}

	ordered, applied := applyGraphFilter(ordered, graph)
	stats.GraphFilterApplied = applied

	chunks := buildProductChunks(candidates, ordered)
	if kgChunks, err := uc.graph.ContextFor(ctx, ordered); err != nil {
		slog.Warn("graph context degraded", "error", err)
	} else {
		chunks = append(chunks, kgChunks...)
	}
	if len(chunks) > uc.params.ChunkCap {
		chunks = chunks[:uc.params.ChunkCap]
	}

	answer, degraded := uc.generateAnswer(ctx, trimmed, chunks)
	stats.AnswerDegraded = degraded

	results := rerankByMentions(candidates, ordered, strings.ToLower(answer), uc.params.TopN)

	return &domain.SearchResponse{
		Answer:  answer,
		Results: results,
		Stats:   stats,
	}, nil
}

// resolveGraphCandidates consults the knowledge graph when at least one
// intent hint is present. Resolver failure degrades to an empty signal.
func (uc *SearchUseCase) resolveGraphCandidates(ctx context.Context, intent domain.IntentSignals) domain.GraphSignal {
	if intent.Empty() {
		return domain.GraphSignal{}
	}

	ids, err := uc.graph.ResolveCandidates(ctx, intent)
	if err != nil {
		slog.Warn("graph candidate resolution degraded", "error", err)
		return domain.GraphSignal{Degraded: true}
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return domain.GraphSignal{Candidates: set}
}

// generateAnswer asks the generator for a recommendation and substitutes
// a degraded apology on failure, so the pipeline always proceeds to the
// rerank step with a usable answer string.
func (uc *SearchUseCase) generateAnswer(ctx context.Context, question string, chunks []string) (string, bool) {
	if len(chunks) == 0 {
		return "", false
	}
	answer, err := uc.generator.GenerateAnswer(ctx, question, chunks)
	if err != nil {
		slog.Warn("answer generation degraded", "error", err)
		return "I'm unable to generate the full recommendation right now, but these products match your request!", true
	}
	return answer, false
}

func noMatchResponse(category domain.Category) *domain.SearchResponse {
	msg := "I couldn't find any relevant products."
	if category != domain.CategoryNone {
		msg = fmt.Sprintf(
			"I couldn't find any strong matches for %ss. Try rephrasing or relaxing your constraints.",
			category,
		)
	}
	return &domain.SearchResponse{Answer: msg, Results: []domain.RankedResult{}}
}
