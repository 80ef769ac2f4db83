package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nparshin/product-discovery/internal/core/domain"
	"github.com/nparshin/product-discovery/internal/core/ports"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// CatalogUseCase owns product CRUD and emits indexing events so the
// worker keeps the vector store and knowledge graph in sync.
type CatalogUseCase struct {
	repo  ports.ProductRepository
	queue ports.MessageQueue
}

func NewCatalogUseCase(repo ports.ProductRepository, queue ports.MessageQueue) *CatalogUseCase {
	return &CatalogUseCase{repo: repo, queue: queue}
}

func (uc *CatalogUseCase) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create product", errors.New("title is required"))
	}
	if p.Price != nil && *p.Price < 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create product", errors.New("price must be non-negative"))
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.publishIndexEvent(ctx, p.ID)
	return p, nil
}

func (uc *CatalogUseCase) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *CatalogUseCase) List(ctx context.Context, filter domain.ProductListFilter) ([]domain.Product, error) {
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return uc.repo.List(ctx, filter)
}

func (uc *CatalogUseCase) Update(ctx context.Context, id int64, upd domain.ProductUpdate) (*domain.Product, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update product", errors.New("title must not be empty"))
	}
	if upd.Price != nil && *upd.Price < 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update product", errors.New("price must be non-negative"))
	}

	p, err := uc.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	uc.publishIndexEvent(ctx, id)
	return p, nil
}

// publishIndexEvent is best-effort: a queue outage must not lose the
// catalog write. The worker reindexes an empty collection at startup.
func (uc *CatalogUseCase) publishIndexEvent(ctx context.Context, productID int64) {
	if err := uc.queue.PublishProductIndex(ctx, productID); err != nil {
		slog.Warn("publish index event failed", "product_id", productID, "error", err)
	}
}
