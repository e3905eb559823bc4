package domain

import (
	"context"

	"github.com/kailas-cloud/manara/internal/domain/filter"
)

// VenueQuery is a similarity query against the venue index.
type VenueQuery struct {
	Text   string
	K      int
	Filter filter.Expression
}

// VenueIndex is the semantic search capability over venue documents.
// Hits are ordered from most to least similar.
type VenueIndex interface {
	Query(ctx context.Context, q VenueQuery) ([]VenueHit, error)
}
