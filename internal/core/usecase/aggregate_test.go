package usecase

import (
	"reflect"
	"testing"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

func hit(id int64, score float64, title string) domain.VectorHit {
	return domain.VectorHit{
		ProductID:  id,
		HasProduct: true,
		Score:      score,
		Payload:    domain.ProductPayload{Title: title},
	}
}

func TestAggregateHitsKeepsMaxScorePerProduct(t *testing.T) {
	hits := []domain.VectorHit{
		hit(1, 0.4, "first chunk"),
		hit(1, 0.9, "best chunk"),
		hit(1, 0.6, "middle chunk"),
	}

	candidates, ordered := aggregateHits(hits)
	if len(ordered) != 1 || ordered[0] != 1 {
		t.Fatalf("expected single product 1, got %v", ordered)
	}
	if candidates[1].score != 0.9 {
		t.Fatalf("expected max score 0.9, got %v", candidates[1].score)
	}
	if candidates[1].payload.Title != "best chunk" {
		t.Fatalf("expected payload of best point, got %q", candidates[1].payload.Title)
	}
}

func TestAggregateHitsOrdersByScoreDescending(t *testing.T) {
	hits := []domain.VectorHit{
		hit(1, 0.5, "a"),
		hit(2, 0.9, "b"),
		hit(3, 0.7, "c"),
	}

	_, ordered := aggregateHits(hits)
	if !reflect.DeepEqual(ordered, []int64{2, 3, 1}) {
		t.Fatalf("expected [2 3 1], got %v", ordered)
	}
}

func TestAggregateHitsTiesKeepFirstEncounterOrder(t *testing.T) {
	hits := []domain.VectorHit{
		hit(7, 0.8, "a"),
		hit(3, 0.8, "b"),
		hit(9, 0.8, "c"),
	}

	_, ordered := aggregateHits(hits)
	if !reflect.DeepEqual(ordered, []int64{7, 3, 9}) {
		t.Fatalf("expected encounter order on ties, got %v", ordered)
	}
}

func TestAggregateHitsSkipsPointsWithoutProductID(t *testing.T) {
	hits := []domain.VectorHit{
		{Score: 0.99, Payload: domain.ProductPayload{Title: "orphan"}},
		hit(4, 0.5, "kept"),
	}

	candidates, ordered := aggregateHits(hits)
	if len(ordered) != 1 || ordered[0] != 4 {
		t.Fatalf("expected only product 4, got %v", ordered)
	}
	if _, ok := candidates[0]; ok {
		t.Fatalf("orphan point must not become a candidate")
	}
}

func TestApplyGraphFilterIntersects(t *testing.T) {
	signal := domain.GraphSignal{Candidates: map[int64]struct{}{2: {}, 3: {}}}

	filtered, applied := applyGraphFilter([]int64{1, 2, 3, 4}, signal)
	if !applied {
		t.Fatalf("expected filter to apply")
	}
	if !reflect.DeepEqual(filtered, []int64{2, 3}) {
		t.Fatalf("expected [2 3], got %v", filtered)
	}
}

func TestApplyGraphFilterEmptySignalKeepsOrdering(t *testing.T) {
	filtered, applied := applyGraphFilter([]int64{1, 2}, domain.GraphSignal{})
	if applied {
		t.Fatalf("expected no filtering for empty signal")
	}
	if !reflect.DeepEqual(filtered, []int64{1, 2}) {
		t.Fatalf("expected untouched ordering, got %v", filtered)
	}
}

func TestApplyGraphFilterEmptyIntersectionKeepsOrdering(t *testing.T) {
	signal := domain.GraphSignal{Candidates: map[int64]struct{}{99: {}}}

	filtered, applied := applyGraphFilter([]int64{1, 2}, signal)
	if applied {
		t.Fatalf("expected filter to be skipped on empty intersection")
	}
	if !reflect.DeepEqual(filtered, []int64{1, 2}) {
		t.Fatalf("expected vector ordering to survive, got %v", filtered)
	}
}

func TestApplyGraphFilterDegradedSignalBehavesAsEmpty(t *testing.T) {
	filtered, applied := applyGraphFilter([]int64{5, 6}, domain.GraphSignal{Degraded: true})
	if applied {
		t.Fatalf("expected degraded signal to skip filtering")
	}
	if !reflect.DeepEqual(filtered, []int64{5, 6}) {
		t.Fatalf("expected untouched ordering, got %v", filtered)
	}
}
