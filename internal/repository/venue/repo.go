// Package venue implements domain.VenueIndex over a Valkey FT index of venue hashes.
package venue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/manara/internal/db"
	"github.com/kailas-cloud/manara/internal/domain"
)

// store is the consumer interface for venue storage (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexDocCount(ctx context.Context, name string) (int64, error)
}

// Compile-time check: Repo implements domain.VenueIndex.
var _ domain.VenueIndex = (*Repo)(nil)

// Repo embeds query text and runs KNN over the venue index.
type Repo struct {
	store     store
	embedder  domain.Embedder
	indexName string
	keyPrefix string
}

// New creates a venue repository. keyPrefix is the global storage prefix (e.g. "manara:").
func New(s store, embedder domain.Embedder, indexName, keyPrefix string) *Repo {
	return &Repo{
		store:     s,
		embedder:  embedder,
		indexName: indexName,
		keyPrefix: keyPrefix + "venue:",
	}
}

// IndexName returns the FT index this repository queries.
func (r *Repo) IndexName() string { return r.indexName }

// Query returns hits ordered by ascending cosine distance.
func (r *Repo) Query(ctx context.Context, q domain.VenueQuery) ([]domain.VenueHit, error) {
	if q.K <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidRequest)
	}

	emb, err := r.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("embed venue query: %w", err)
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: r.indexName,
		Filters:   q.Filter,
		Vector:    emb.Embedding,
		K:         q.K,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %w", domain.ErrIndexUnavailable, r.indexName, err)
	}

	hits := make([]domain.VenueHit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		doc, md := parseHashFields(e.Fields)
		hits = append(hits, domain.VenueHit{
			ID:       strings.TrimPrefix(e.Key, r.keyPrefix),
			Document: doc,
			Metadata: md,
			Distance: e.Distance,
		})
	}
	return hits, nil
}

// EnsureIndex creates the venue index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, dim int, hnsw HNSWConfig) error {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.indexName, err)
	}
	if exists {
		return nil
	}
	err = r.store.CreateIndex(ctx, buildIndex(r.indexName, r.keyPrefix, dim, hnsw))
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", r.indexName, err)
	}
	return nil
}

// PutMany stores venues with precomputed vectors; vectors[i] belongs to venues[i].
func (r *Repo) PutMany(ctx context.Context, venues []domain.VenueRecord, vectors [][]float32) error {
	if len(venues) != len(vectors) {
		return fmt.Errorf("%w: %d venues but %d vectors", domain.ErrInvalidRequest, len(venues), len(vectors))
	}
	items := make([]db.HashSetItem, len(venues))
	for i, v := range venues {
		if v.ID == "" {
			return fmt.Errorf("%w: venue at position %d has no id", domain.ErrInvalidRequest, i)
		}
		items[i] = db.HashSetItem{Key: r.keyPrefix + v.ID, Fields: buildHashFields(v, vectors[i])}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store venues: %w", err)
	}
	return nil
}

// Count returns the number of indexed venues.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	n, err := r.store.IndexDocCount(ctx, r.indexName)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("count venues: %w", err)
	}
	return n, nil
}

// Exists reports whether the venue index has been created.
func (r *Repo) Exists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.indexName, err)
	}
	return ok, nil
}
