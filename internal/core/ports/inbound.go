package ports

import (
	"context"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

// ProductSearcher is the inbound contract for the hybrid search pipeline.
type ProductSearcher interface {
	Search(ctx context.Context, query string) (*domain.SearchResponse, error)
}

// ProductCatalog is the inbound contract for catalog CRUD.
type ProductCatalog interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductListFilter) ([]domain.Product, error)
	Update(ctx context.Context, id int64, upd domain.ProductUpdate) (*domain.Product, error)
}

// ProductIndexer is the inbound contract for asynchronous indexing.
type ProductIndexer interface {
	IndexByID(ctx context.Context, productID int64) error
	ReindexAllIfEmpty(ctx context.Context) (int, error)
}
