package venue

import (
	"github.com/kailas-cloud/manara/internal/db"
)

// HNSWConfig holds optional HNSW build parameters. Zero means server default.
type HNSWConfig struct {
	M              int
	EFConstruction int
}

// buildIndex describes the venue FT index: tag fields for exact pre-filters,
// rating as NUMERIC for lower bounds, and a cosine HNSW vector.
func buildIndex(name, prefix string, dim int, hnsw HNSWConfig) *db.IndexDefinition {
	return db.NewIndex(name, prefix).
		Tag(fieldCategory, fieldPriceRange, fieldLocation).
		Numeric(fieldRating).
		Vector(db.FieldVector, dim, hnsw.M, hnsw.EFConstruction)
}
