package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nparshin/product-discovery/internal/core/domain"
	"github.com/nparshin/product-discovery/internal/core/ports"
)

// IndexUseCase embeds catalog products into the vector store and syncs
// them into the knowledge graph.
type IndexUseCase struct {
	repo     ports.ProductRepository
	embedder ports.Embedder
	vectorDB ports.VectorStore
	graph    ports.GraphStore
}

func NewIndexUseCase(
	repo ports.ProductRepository,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	graph ports.GraphStore,
) *IndexUseCase {
	return &IndexUseCase{
		repo:     repo,
		embedder: embedder,
		vectorDB: vectorDB,
		graph:    graph,
	}
}

func (uc *IndexUseCase) IndexByID(ctx context.Context, productID int64) error {
	p, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}

	vectors, err := uc.embedder.Embed(ctx, []string{productText(p)})
	if err != nil {
		return fmt.Errorf("embed product: %w", err)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("empty embedding result for product %d", productID)
	}

	if err := uc.vectorDB.UpsertProducts(ctx, []domain.Product{*p}, vectors[:1]); err != nil {
		return fmt.Errorf("upsert product vector: %w", err)
	}

	uc.syncGraph(ctx, p)
	return nil
}

// ReindexAllIfEmpty rebuilds the vector collection from the catalog when
// it holds no points, and returns the number of indexed products.
func (uc *IndexUseCase) ReindexAllIfEmpty(ctx context.Context) (int, error) {
	count, err := uc.vectorDB.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count vector points: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	products, err := uc.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return 0, nil
	}

	texts := make([]string, len(products))
	for i := range products {
		texts[i] = productText(&products[i])
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed products: %w", err)
	}
	if len(vectors) != len(products) {
		return 0, fmt.Errorf("embedding count mismatch: %d products, %d vectors", len(products), len(vectors))
	}

	if err := uc.vectorDB.UpsertProducts(ctx, products, vectors); err != nil {
		return 0, fmt.Errorf("upsert product vectors: %w", err)
	}

	for i := range products {
		uc.syncGraph(ctx, &products[i])
	}
	return len(products), nil
}

// syncGraph is best-effort: the graph is an auxiliary ranking signal and
// must not block vector indexing.
func (uc *IndexUseCase) syncGraph(ctx context.Context, p *domain.Product) {
	if err := uc.graph.SyncProduct(ctx, p); err != nil {
		slog.Warn("graph sync failed", "product_id", p.ID, "error", err)
	}
}

// productText composes the embedding input from product fields, skipping
// empties.
func productText(p *domain.Product) string {
	parts := make([]string, 0, 4)
	for _, part := range []string{p.Title, p.Category, p.Description, strings.Join(p.Features, ", ")} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n")
}
