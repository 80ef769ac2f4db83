package neo4jdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

// Store exposes the knowledge graph as a candidate resolver and a
// conceptual context source. The driver is a long-lived handle safe for
// concurrent use; sessions are opened per call.
type Store struct {
	driver neo4j.DriverWithContext
}

func New(uri, user, password string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Store{driver: driver}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// ResolveCandidates returns product ids admissible under the intent
// hints. Callers treat any error as an empty result.
func (s *Store) ResolveCandidates(ctx context.Context, intent domain.IntentSignals) ([]int64, error) {
	cypher, params := candidateQuery(intent)

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		var ids []int64
		for result.Next(ctx) {
			if v, ok := result.Record().Get("id"); ok {
				if id, ok := v.(int64); ok {
					ids = append(ids, id)
				}
			}
		}
		return ids, result.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("resolve graph candidates: %w", err)
	}
	ids, _ := out.([]int64)
	return ids, nil
}

// ContextFor renders conceptual text chunks describing the graph
// neighborhood of the given products. Best-effort.
func (s *Store) ContextFor(ctx context.Context, ids []int64) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const cypher = `
MATCH (p:Product) WHERE p.id IN $ids
OPTIONAL MATCH (p)-[:HAS_TAG]->(t:Tag)
RETURN p.title AS title, p.category AS category, collect(t.name) AS tags`

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"ids": toAnySlice(ids)})
		if err != nil {
			return nil, err
		}
		var chunks []string
		for result.Next(ctx) {
			record := result.Record()
			chunks = append(chunks, conceptChunk(
				stringValue(record, "title"),
				stringValue(record, "category"),
				stringListValue(record, "tags"),
			))
		}
		return chunks, result.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph context: %w", err)
	}
	chunks, _ := out.([]string)
	return chunks, nil
}

// SyncProduct upserts the product node and rebuilds its tag edges.
func (s *Store) SyncProduct(ctx context.Context, p *domain.Product) error {
	const cypher = `
MERGE (p:Product {id: $id})
SET p.title = $title, p.category = $category, p.price = $price
WITH p
OPTIONAL MATCH (p)-[r:HAS_TAG]->(:Tag)
DELETE r
WITH DISTINCT p
UNWIND $tags AS tag
MERGE (t:Tag {name: tag})
MERGE (p)-[:HAS_TAG]->(t)`

	params := map[string]any{
		"id":       p.ID,
		"title":    p.Title,
		"category": p.Category,
		"price":    nil,
		"tags":     toAnySlice(productTags(p)),
	}
	if p.Price != nil {
		params["price"] = *p.Price
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return nil, result.Err()
	})
	if err != nil {
		return fmt.Errorf("sync product %d: %w", p.ID, err)
	}
	return nil
}

// candidateQuery builds the admissibility query from whichever hints are
// present. At least one hint is expected; with none it matches all
// products, which callers avoid.
func candidateQuery(intent domain.IntentSignals) (string, map[string]any) {
	var b strings.Builder
	params := make(map[string]any)

	b.WriteString("MATCH (p:Product)")
	if len(intent.Tags) > 0 {
		b.WriteString("\nMATCH (p)-[:HAS_TAG]->(t:Tag)")
	}

	var conds []string
	if intent.Category != domain.CategoryNone {
		conds = append(conds, "p.category = $category")
		params["category"] = intent.Category.String()
	}
	if intent.MaxPrice != nil {
		conds = append(conds, "p.price <= $maxPrice")
		params["maxPrice"] = *intent.MaxPrice
	}
	if len(intent.Tags) > 0 {
		conds = append(conds, "t.name IN $tags")
		tags := make([]any, len(intent.Tags))
		for i, tag := range intent.Tags {
			tags[i] = tag
		}
		params["tags"] = tags
	}
	if len(conds) > 0 {
		b.WriteString("\nWHERE " + strings.Join(conds, " AND "))
	}
	b.WriteString("\nRETURN DISTINCT p.id AS id")

	return b.String(), params
}

func conceptChunk(title, category string, tags []string) string {
	kind := category
	if kind == "" {
		kind = "product"
	}
	if len(tags) == 0 {
		return fmt.Sprintf("%q is a %s.", title, kind)
	}
	return fmt.Sprintf("%q is a %s related to: %s.", title, kind, strings.Join(tags, ", "))
}

// productTags derives graph tags from the product's feature list.
func productTags(p *domain.Product) []string {
	tags := make([]string, 0, len(p.Features))
	seen := make(map[string]struct{}, len(p.Features))
	for _, f := range p.Features {
		tag := strings.ToLower(strings.TrimSpace(f))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func stringValue(record *neo4j.Record, key string) string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func stringListValue(record *neo4j.Record, key string) []string {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return nil
	}
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
