package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

type indexEmbedderFake struct {
	texts []string
	err   error
}

func (f *indexEmbedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.texts = texts
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func (f *indexEmbedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

type indexVectorFake struct {
	count    int
	upserted []domain.Product
	err      error
}

func (f *indexVectorFake) UpsertProducts(_ context.Context, products []domain.Product, _ [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, products...)
	return nil
}

func (f *indexVectorFake) Search(context.Context, []float32, int) ([]domain.VectorHit, error) {
	return nil, nil
}

func (f *indexVectorFake) Count(context.Context) (int, error) { return f.count, nil }

type indexGraphFake struct {
	synced []int64
	err    error
}

func (f *indexGraphFake) ResolveCandidates(context.Context, domain.IntentSignals) ([]int64, error) {
	return nil, nil
}
func (f *indexGraphFake) ContextFor(context.Context, []int64) ([]string, error) { return nil, nil }
func (f *indexGraphFake) SyncProduct(_ context.Context, p *domain.Product) error {
	if f.err != nil {
		return f.err
	}
	f.synced = append(f.synced, p.ID)
	return nil
}

func seededRepo(t *testing.T, titles ...string) *repoFake {
	t.Helper()
	repo := newRepoFake()
	for i, title := range titles {
		repo.products[int64(i+1)] = domain.Product{
			ID:       int64(i + 1),
			Title:    title,
			Category: "hoodie",
			Features: []string{"cotton", "fleece"},
		}
	}
	return repo
}

func TestIndexByIDEmbedsComposedText(t *testing.T) {
	repo := seededRepo(t, "Zip Hoodie")
	embedder := &indexEmbedderFake{}
	vector := &indexVectorFake{}
	graph := &indexGraphFake{}
	uc := NewIndexUseCase(repo, embedder, vector, graph)

	if err := uc.IndexByID(context.Background(), 1); err != nil {
		t.Fatalf("IndexByID() error = %v", err)
	}
	if len(embedder.texts) != 1 {
		t.Fatalf("expected one embedding input, got %d", len(embedder.texts))
	}
	text := embedder.texts[0]
	for _, part := range []string{"Zip Hoodie", "hoodie", "cotton, fleece"} {
		if !strings.Contains(text, part) {
			t.Fatalf("expected %q in embedding text, got %q", part, text)
		}
	}
	if len(vector.upserted) != 1 || vector.upserted[0].ID != 1 {
		t.Fatalf("expected product 1 upserted, got %+v", vector.upserted)
	}
	if len(graph.synced) != 1 || graph.synced[0] != 1 {
		t.Fatalf("expected product 1 synced to graph, got %v", graph.synced)
	}
}

func TestIndexByIDUnknownProduct(t *testing.T) {
	uc := NewIndexUseCase(newRepoFake(), &indexEmbedderFake{}, &indexVectorFake{}, &indexGraphFake{})

	err := uc.IndexByID(context.Background(), 404)
	if !domain.IsKind(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestIndexByIDSurvivesGraphOutage(t *testing.T) {
	repo := seededRepo(t, "Zip Hoodie")
	uc := NewIndexUseCase(repo, &indexEmbedderFake{}, &indexVectorFake{}, &indexGraphFake{err: errors.New("neo4j down")})

	if err := uc.IndexByID(context.Background(), 1); err != nil {
		t.Fatalf("expected graph outage to be tolerated, got %v", err)
	}
}

func TestReindexAllIfEmptySkipsPopulatedCollection(t *testing.T) {
	repo := seededRepo(t, "Zip Hoodie")
	vector := &indexVectorFake{count: 12}
	uc := NewIndexUseCase(repo, &indexEmbedderFake{}, vector, &indexGraphFake{})

	n, err := uc.ReindexAllIfEmpty(context.Background())
	if err != nil {
		t.Fatalf("ReindexAllIfEmpty() error = %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no reindex for populated collection, got %d", n)
	}
	if len(vector.upserted) != 0 {
		t.Fatalf("expected no upserts, got %d", len(vector.upserted))
	}
}

func TestReindexAllIfEmptyIndexesCatalog(t *testing.T) {
	repo := seededRepo(t, "Zip Hoodie", "Running Shorts", "Crop Top")
	vector := &indexVectorFake{}
	graph := &indexGraphFake{}
	uc := NewIndexUseCase(repo, &indexEmbedderFake{}, vector, graph)

	n, err := uc.ReindexAllIfEmpty(context.Background())
	if err != nil {
		t.Fatalf("ReindexAllIfEmpty() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 indexed products, got %d", n)
	}
	if len(vector.upserted) != 3 {
		t.Fatalf("expected 3 upserts, got %d", len(vector.upserted))
	}
	if len(graph.synced) != 3 {
		t.Fatalf("expected 3 graph syncs, got %d", len(graph.synced))
	}
}

func TestReindexAllIfEmptyEmbedErrorPropagates(t *testing.T) {
	repo := seededRepo(t, "Zip Hoodie")
	uc := NewIndexUseCase(repo, &indexEmbedderFake{err: errors.New("ollama down")}, &indexVectorFake{}, &indexGraphFake{})

	if _, err := uc.ReindexAllIfEmpty(context.Background()); err == nil {
		t.Fatalf("expected embedding error to propagate")
	}
}
