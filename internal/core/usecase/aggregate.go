package usecase

import (
	"sort"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

type productCandidate struct {
	payload domain.ProductPayload
	score   float64
}

// aggregateHits folds raw vector hits into one candidate per product,
// keeping the best score seen, and returns product ids ordered by score
// descending. Ties keep the order in which ids were first encountered.
func aggregateHits(hits []domain.VectorHit) (map[int64]productCandidate, []int64) {
	candidates := make(map[int64]productCandidate, len(hits))
	ordered := make([]int64, 0, len(hits))

	for _, hit := range hits {
		if !hit.HasProduct {
			continue
		}
		current, seen := candidates[hit.ProductID]
		if !seen {
			ordered = append(ordered, hit.ProductID)
		}
		if !seen || hit.Score > current.score {
			candidates[hit.ProductID] = productCandidate{
				payload: hit.Payload,
				score:   hit.Score,
			}
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return candidates[ordered[i]].score > candidates[ordered[j]].score
	})
	return candidates, ordered
}

// applyGraphFilter intersects the vector ordering with the graph
// candidate set. The filter only takes effect when the intersection is
// non-empty; a complete miss keeps the vector ordering so a strict graph
// result cannot zero out otherwise valid matches.
func applyGraphFilter(ordered []int64, signal domain.GraphSignal) ([]int64, bool) {
	if signal.Empty() {
		return ordered, false
	}
	filtered := make([]int64, 0, len(ordered))
	for _, id := range ordered {
		if signal.Contains(id) {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		return ordered, false
	}
	return filtered, true
}
