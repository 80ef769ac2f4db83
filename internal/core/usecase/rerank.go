package usecase

import (
	"sort"
	"strings"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

// Mention bonus weights. A full title echo dominates; individual title
// tokens accumulate without a cap; a category echo adds a small nudge.
const (
	fullTitleBonus     = 0.7
	titleTokenBonus    = 0.15
	categoryBonus      = 0.1
	minMentionTokenLen = 4
)

// mentionBonus rewards products whose identifying text appears in the
// lower-cased generated answer. A verbatim title match short-circuits
// the per-token rule.
func mentionBonus(p domain.ProductPayload, answer string) float64 {
	if answer == "" {
		return 0
	}

	title := strings.ToLower(p.Title)
	category := strings.ToLower(p.Category)

	var bonus float64
	if title != "" && strings.Contains(answer, title) {
		bonus += fullTitleBonus
	} else {
		for _, tok := range titleTokens(title) {
			if len(tok) >= minMentionTokenLen && strings.Contains(answer, tok) {
				bonus += titleTokenBonus
			}
		}
	}

	if category != "" && strings.Contains(answer, category) {
		bonus += categoryBonus
	}
	return bonus
}

func titleTokens(title string) []string {
	return strings.Fields(strings.ReplaceAll(title, "-", " "))
}

// rerankByMentions applies the mention bonus on top of the base vector
// score and re-sorts. Equal final scores keep the hybrid-filtered order.
// The result is truncated to topN entries.
func rerankByMentions(
	candidates map[int64]productCandidate,
	ordered []int64,
	loweredAnswer string,
	topN int,
) []domain.RankedResult {
	results := make([]domain.RankedResult, 0, len(ordered))
	for _, id := range ordered {
		c := candidates[id]
		results = append(results, domain.RankedResult{
			ID:          id,
			Title:       c.payload.Title,
			Category:    c.payload.Category,
			Price:       c.payload.Price,
			Description: c.payload.Description,
			ImageURL:    c.payload.ImageURL,
			ProductURL:  c.payload.ProductURL,
			Score:       c.score + mentionBonus(c.payload, loweredAnswer),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results
}
