package db

import "github.com/kailas-cloud/manara/internal/domain/filter"

// Reserved hash fields of an indexed venue document.
const (
	FieldDocument    = "__document"
	FieldVector      = "__vector"
	FieldVectorScore = "__vector_score"
)

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit. Distance is the raw cosine distance in [0,2].
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
