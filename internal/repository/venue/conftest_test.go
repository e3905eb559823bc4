package venue

import (
	"context"

	"github.com/kailas-cloud/manara/internal/db"
	"github.com/kailas-cloud/manara/internal/domain"
)

type mockStore struct {
	searchFn  func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	hsetItems []db.HashSetItem
	hsetErr   error
	created   *db.IndexDefinition
	createErr error
	exists    bool
	existsErr error
	docCount  int64
	countErr  error
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	m.hsetItems = append(m.hsetItems, items...)
	return m.hsetErr
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.created = def
	return m.createErr
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockStore) IndexDocCount(_ context.Context, _ string) (int64, error) {
	return m.docCount, m.countErr
}

type mockEmbedder struct {
	vec   []float32
	err   error
	texts []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

func newTestRepo(s *mockStore, e *mockEmbedder) *Repo {
	return New(s, e, "manara:venues:idx", "manara:")
}
