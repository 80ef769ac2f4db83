package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

var (
	pricePattern = regexp.MustCompile(`(?i)(under|below|upto|up to|<)\s*(\d+)`)
	wordPattern  = regexp.MustCompile(`[a-zA-Z]+`)
)

// Words that carry no tagging signal in shopping queries.
var stopwords = map[string]struct{}{
	"show":      {},
	"me":        {},
	"some":      {},
	"for":       {},
	"under":     {},
	"below":     {},
	"upto":      {},
	"up":        {},
	"to":        {},
	"please":    {},
	"want":      {},
	"need":      {},
	"something": {},
	"nice":      {},
	"good":      {},
	"budget":    {},
	"wear":      {},
	"outfit":    {},
	"and":       {},
	"also":      {},
}

const minTagLen = 4

// ExtractIntent derives category, price ceiling and free-text tags from a
// raw query. Deterministic: identical input yields identical output.
func ExtractIntent(table domain.SynonymTable, query string) domain.IntentSignals {
	category := table.Detect(query)
	return domain.IntentSignals{
		Category: category,
		MaxPrice: extractMaxPrice(query),
		Tags:     extractTags(table, query, category),
	}
}

// EnrichQuery appends the detected category's synonym phrases so the
// embedding gets a stronger signal for the intended category.
func EnrichQuery(table domain.SynonymTable, query string, category domain.Category) string {
	if category == domain.CategoryNone {
		return query
	}
	syns := table.Synonyms(category)
	if len(syns) == 0 {
		return query
	}
	return query + " " + strings.Join(syns, " ")
}

func extractMaxPrice(query string) *float64 {
	m := pricePattern.FindStringSubmatch(query)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil
	}
	return &v
}

func extractTags(table domain.SynonymTable, query string, category domain.Category) []string {
	words := wordPattern.FindAllString(strings.ToLower(query), -1)
	categoryTokens := table.TokenSet(category)

	seen := make(map[string]struct{}, len(words))
	tags := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < minTagLen {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		if _, ok := categoryTokens[w]; ok {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		tags = append(tags, w)
	}
	return tags
}
