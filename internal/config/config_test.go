package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

func TestLoadIncludesSearchDefaults(t *testing.T) {
	t.Setenv("SEARCH_VECTOR_LIMIT", "")
	t.Setenv("SEARCH_TOP_N", "")
	t.Setenv("SEARCH_CHUNK_CAP", "")
	t.Setenv("NEO4J_ENABLED", "")

	cfg := Load()
	if cfg.SearchVectorLimit != 20 {
		t.Fatalf("expected default vector limit 20, got %d", cfg.SearchVectorLimit)
	}
	if cfg.SearchTopN != 6 {
		t.Fatalf("expected default top n 6, got %d", cfg.SearchTopN)
	}
	if cfg.SearchChunkCap != 40 {
		t.Fatalf("expected default chunk cap 40, got %d", cfg.SearchChunkCap)
	}
	if !cfg.Neo4jEnabled {
		t.Fatalf("expected knowledge graph enabled by default")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("SEARCH_VECTOR_LIMIT", "50")
	t.Setenv("NEO4J_ENABLED", "false")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("NATS_SUBJECT", "products.reindex")

	cfg := Load()
	if cfg.SearchVectorLimit != 50 {
		t.Fatalf("expected vector limit 50, got %d", cfg.SearchVectorLimit)
	}
	if cfg.Neo4jEnabled {
		t.Fatalf("expected knowledge graph disabled")
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.NATSSubject != "products.reindex" {
		t.Fatalf("expected subject override, got %q", cfg.NATSSubject)
	}
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("SEARCH_TOP_N", "six")
	t.Setenv("NEO4J_ENABLED", "yep")

	cfg := Load()
	if cfg.SearchTopN != 6 {
		t.Fatalf("expected fallback top n 6, got %d", cfg.SearchTopN)
	}
	if !cfg.Neo4jEnabled {
		t.Fatalf("expected fallback to enabled graph")
	}
}

func TestLoadSynonymTableEmptyPathUsesBuiltIn(t *testing.T) {
	table, err := LoadSynonymTable("")
	if err != nil {
		t.Fatalf("LoadSynonymTable() error = %v", err)
	}
	if got := table.Detect("oversized hoodies for gym"); got != domain.CategoryHoodie {
		t.Fatalf("Detect() = %q, want hoodie", got)
	}
}

func TestLoadSynonymTableFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	content := `categories:
  - category: sneakers
    synonyms: [sneakers, trainers, "running shoes"]
  - category: hoodie
    synonyms: [hoodie]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadSynonymTable(path)
	if err != nil {
		t.Fatalf("LoadSynonymTable() error = %v", err)
	}
	if got := table.Detect("comfy running shoes please"); got != domain.Category("sneakers") {
		t.Fatalf("Detect() = %q, want sneakers", got)
	}
	if got := table.Detect("zip hoodie"); got != domain.CategoryHoodie {
		t.Fatalf("Detect() = %q, want hoodie", got)
	}
}

func TestLoadSynonymTableRejectsEmptyVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	if err := os.WriteFile(path, []byte("categories: []\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadSynonymTable(path); err == nil {
		t.Fatalf("expected error for empty vocabulary")
	}
}
