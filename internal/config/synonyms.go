package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

// synonymFile is the YAML shape of an external category vocabulary:
//
//	categories:
//	  - category: hoodie
//	    synonyms: [hoodie, hoodies, "hooded sweatshirt"]
//
// Entry order is preserved because detection is first-match-wins.
type synonymFile struct {
	Categories []struct {
		Category string   `yaml:"category"`
		Synonyms []string `yaml:"synonyms"`
	} `yaml:"categories"`
}

// LoadSynonymTable reads the category vocabulary from path. An empty
// path yields the built-in table.
func LoadSynonymTable(path string) (domain.SynonymTable, error) {
	if path == "" {
		return domain.DefaultSynonymTable(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.SynonymTable{}, fmt.Errorf("read synonyms file: %w", err)
	}

	var file synonymFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return domain.SynonymTable{}, fmt.Errorf("parse synonyms file: %w", err)
	}
	if len(file.Categories) == 0 {
		return domain.SynonymTable{}, fmt.Errorf("synonyms file %s has no categories", path)
	}

	entries := make([]domain.SynonymEntry, 0, len(file.Categories))
	for i, c := range file.Categories {
		name := strings.TrimSpace(strings.ToLower(c.Category))
		if name == "" {
			return domain.SynonymTable{}, fmt.Errorf("synonyms file %s: entry %d has empty category", path, i)
		}
		synonyms := make([]string, 0, len(c.Synonyms))
		for _, syn := range c.Synonyms {
			syn = strings.TrimSpace(strings.ToLower(syn))
			if syn != "" {
				synonyms = append(synonyms, syn)
			}
		}
		if len(synonyms) == 0 {
			return domain.SynonymTable{}, fmt.Errorf("synonyms file %s: category %q has no synonyms", path, name)
		}
		entries = append(entries, domain.SynonymEntry{
			Category: domain.Category(name),
			Synonyms: synonyms,
		})
	}
	return domain.NewSynonymTable(entries), nil
}
