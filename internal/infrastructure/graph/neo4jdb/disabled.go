package neo4jdb

import (
	"context"

	"github.com/nparshin/product-discovery/internal/core/domain"
)

// Disabled is a no-op graph store used when the knowledge graph is
// switched off. Resolution yields no candidates, so search runs on
// vector results alone.
type Disabled struct{}

func NewDisabled() *Disabled { return &Disabled{} }

func (*Disabled) ResolveCandidates(context.Context, domain.IntentSignals) ([]int64, error) {
	return nil, nil
}

func (*Disabled) ContextFor(context.Context, []int64) ([]string, error) { return nil, nil }

func (*Disabled) SyncProduct(context.Context, *domain.Product) error { return nil }

func (*Disabled) Close(context.Context) error { return nil }
