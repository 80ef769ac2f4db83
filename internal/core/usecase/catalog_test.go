package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

type repoFake struct {
	products map[int64]domain.Product
	created  []domain.Product
	updates  []domain.ProductUpdate
	listArgs domain.ProductListFilter
	err      error
}

func newRepoFake() *repoFake {
	return &repoFake{products: make(map[int64]domain.Product)}
}

func (f *repoFake) Create(_ context.Context, p *domain.Product) error {
	if f.err != nil {
		return f.err
	}
	p.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *p)
	f.products[p.ID] = *p
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrProductNotFound, "get product", errors.New("no row"))
	}
	return &p, nil
}

func (f *repoFake) List(_ context.Context, filter domain.ProductListFilter) ([]domain.Product, error) {
	f.listArgs = filter
	return nil, f.err
}

func (f *repoFake) ListAll(context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, f.err
}

func (f *repoFake) Update(_ context.Context, id int64, upd domain.ProductUpdate) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updates = append(f.updates, upd)
	p, ok := f.products[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrProductNotFound, "update product", errors.New("no row"))
	}
	return &p, nil
}

type queueFake struct {
	published []int64
	err       error
}

func (f *queueFake) PublishProductIndex(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func (f *queueFake) SubscribeProductIndex(context.Context, func(context.Context, int64) error) error {
	return nil
}

func TestCatalogCreateValidatesTitle(t *testing.T) {
	uc := NewCatalogUseCase(newRepoFake(), &queueFake{})

	_, err := uc.Create(context.Background(), &domain.Product{Title: "   "})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCatalogCreateRejectsNegativePrice(t *testing.T) {
	uc := NewCatalogUseCase(newRepoFake(), &queueFake{})

	price := -10.0
	_, err := uc.Create(context.Background(), &domain.Product{Title: "Hoodie", Price: &price})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCatalogCreatePublishesIndexEvent(t *testing.T) {
	queue := &queueFake{}
	uc := NewCatalogUseCase(newRepoFake(), queue)

	p, err := uc.Create(context.Background(), &domain.Product{Title: "Hoodie"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(queue.published) != 1 || queue.published[0] != p.ID {
		t.Fatalf("expected index event for %d, got %v", p.ID, queue.published)
	}
}

func TestCatalogCreateSurvivesQueueOutage(t *testing.T) {
	uc := NewCatalogUseCase(newRepoFake(), &queueFake{err: errors.New("nats down")})

	p, err := uc.Create(context.Background(), &domain.Product{Title: "Hoodie"})
	if err != nil {
		t.Fatalf("expected create to survive queue outage, got %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("expected persisted product")
	}
}

func TestCatalogListNormalizesPagination(t *testing.T) {
	repo := newRepoFake()
	uc := NewCatalogUseCase(repo, &queueFake{})

	if _, err := uc.List(context.Background(), domain.ProductListFilter{Skip: -5, Limit: 0}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.listArgs.Skip != 0 || repo.listArgs.Limit != 20 {
		t.Fatalf("expected skip=0 limit=20, got %+v", repo.listArgs)
	}

	if _, err := uc.List(context.Background(), domain.ProductListFilter{Limit: 500}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.listArgs.Limit != 100 {
		t.Fatalf("expected limit capped at 100, got %d", repo.listArgs.Limit)
	}
}

func TestCatalogUpdatePublishesIndexEvent(t *testing.T) {
	repo := newRepoFake()
	queue := &queueFake{}
	uc := NewCatalogUseCase(repo, queue)

	created, err := uc.Create(context.Background(), &domain.Product{Title: "Hoodie"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	queue.published = nil

	title := "Zip Hoodie"
	if _, err := uc.Update(context.Background(), created.ID, domain.ProductUpdate{Title: &title}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(queue.published) != 1 || queue.published[0] != created.ID {
		t.Fatalf("expected index event for %d, got %v", created.ID, queue.published)
	}
}

func TestCatalogUpdateNotFound(t *testing.T) {
	uc := NewCatalogUseCase(newRepoFake(), &queueFake{})

	title := "Zip Hoodie"
	_, err := uc.Update(context.Background(), 42, domain.ProductUpdate{Title: &title})
	if !domain.IsKind(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
