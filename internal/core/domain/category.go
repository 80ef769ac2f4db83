package domain

import "strings"

// Category is the closed set of catalog categories the intent layer can
// detect. The knowledge graph holds the authoritative categories; this
// enumeration is only a hint extracted from query language.
type Category string

const (
	CategoryNone   Category = ""
	CategoryHoodie Category = "hoodie"
	CategoryTShirt Category = "tshirt"
	CategoryShorts Category = "shorts"
)

func (c Category) String() string { return string(c) }

// SynonymTable maps each category to an ordered list of query phrases.
// Entry order is significant: detection picks the first matching entry.
// The table is built once at startup and read-only afterwards.
type SynonymTable struct {
	entries []SynonymEntry
}

type SynonymEntry struct {
	Category Category
	Synonyms []string
}

func NewSynonymTable(entries []SynonymEntry) SynonymTable {
	return SynonymTable{entries: entries}
}

// DefaultSynonymTable returns the built-in category vocabulary.
func DefaultSynonymTable() SynonymTable {
	return NewSynonymTable([]SynonymEntry{
		{
			Category: CategoryHoodie,
			Synonyms: []string{
				"hoodie",
				"hoodies",
				"hooded sweatshirt",
				"hooded jacket",
				"zip hoodie",
				"oversized hoodie",
			},
		},
		{
			Category: CategoryTShirt,
			Synonyms: []string{
				"tshirt",
				"t-shirt",
				"tee",
				"tees",
				"top",
				"crop top",
				"tank top",
				"training top",
				"gym top",
			},
		},
		{
			Category: CategoryShorts,
			Synonyms: []string{
				"shorts",
				"running shorts",
				"biker shorts",
				"gym shorts",
				"workout shorts",
			},
		},
	})
}

// Detect returns the first category whose synonym appears as a substring
// of the lower-cased query, or CategoryNone.
func (t SynonymTable) Detect(query string) Category {
	q := strings.ToLower(query)
	for _, entry := range t.entries {
		for _, syn := range entry.Synonyms {
			if strings.Contains(q, syn) {
				return entry.Category
			}
		}
	}
	return CategoryNone
}

// Synonyms returns the phrase list for a category, nil when unknown.
func (t SynonymTable) Synonyms(c Category) []string {
	for _, entry := range t.entries {
		if entry.Category == c {
			return entry.Synonyms
		}
	}
	return nil
}

// TokenSet returns every lower-cased word appearing in the category's
// synonym phrases. Tag extraction removes these so tags stay focused on
// style and use-case words.
func (t SynonymTable) TokenSet(c Category) map[string]struct{} {
	syns := t.Synonyms(c)
	if len(syns) == 0 {
		return nil
	}
	out := make(map[string]struct{})
	for _, syn := range syns {
		for _, tok := range strings.Fields(syn) {
			out[strings.ToLower(tok)] = struct{}{}
		}
	}
	return out
}
