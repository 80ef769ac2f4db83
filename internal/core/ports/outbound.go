package ports

import (
	"context"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

// ProductRepository persists and reads catalog products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductListFilter) ([]domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, id int64, upd domain.ProductUpdate) (*domain.Product, error)
}

// MessageQueue publishes/consumes product indexing events.
type MessageQueue interface {
	PublishProductIndex(ctx context.Context, productID int64) error
	SubscribeProductIndex(ctx context.Context, handler func(context.Context, int64) error) error
}

// Embedder builds vectors for product text and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore indexes products and performs semantic search.
type VectorStore interface {
	UpsertProducts(ctx context.Context, products []domain.Product, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.VectorHit, error)
	Count(ctx context.Context) (int, error)
}

// GraphStore is the knowledge-graph collaborator. ResolveCandidates and
// ContextFor are best-effort: the search pipeline degrades on error and
// must never fail because the graph is unavailable.
type GraphStore interface {
	ResolveCandidates(ctx context.Context, intent domain.IntentSignals) ([]int64, error)
	ContextFor(ctx context.Context, ids []int64) ([]string, error)
	SyncProduct(ctx context.Context, p *domain.Product) error
}

// AnswerGenerator creates the final user-facing recommendation text.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, chunks []string) (string, error)
}
