package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockProvider struct {
	model string
	err   error
}

func (m *mockProvider) HealthCheck(_ context.Context) error { return m.err }
func (m *mockProvider) Model() string                       { return m.model }

type mockIndex struct {
	exists   bool
	count    int64
	err      error
	countErr error
}

func (m *mockIndex) IndexName() string                      { return "venues_idx" }
func (m *mockIndex) Exists(_ context.Context) (bool, error) { return m.exists, m.err }
func (m *mockIndex) Count(_ context.Context) (int64, error) { return m.count, m.countErr }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockProvider{model: "Fanar"}, &mockProvider{}, &mockIndex{exists: true})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, c := range []string{ComponentDatabase, ComponentCompletion, ComponentEmbedding, ComponentIndex} {
		if r.Checks[c] != CheckOK {
			t.Errorf("expected %s %q, got %q", c, CheckOK, r.Checks[c])
		}
	}
}

func TestCheck_Degraded(t *testing.T) {
	tests := []struct {
		name       string
		db         error
		completion error
		index      *mockIndex
		component  string
		want       CheckResult
	}{
		{"db down", errors.New("conn refused"), nil, &mockIndex{exists: true}, ComponentDatabase, CheckError},
		{"completion down", nil, errors.New("timeout"), &mockIndex{exists: true}, ComponentCompletion, CheckError},
		{"index missing", nil, nil, &mockIndex{}, ComponentIndex, CheckMissing},
		{"index error", nil, nil, &mockIndex{err: errors.New("boom")}, ComponentIndex, CheckError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockDBPinger{err: tt.db}, &mockProvider{err: tt.completion}, nil, tt.index)
			r := svc.Check(context.Background())
			if r.Status != Degraded {
				t.Errorf("expected %q, got %q", Degraded, r.Status)
			}
			if r.Checks[tt.component] != tt.want {
				t.Errorf("expected %s %q, got %q", tt.component, tt.want, r.Checks[tt.component])
			}
		})
	}
}

func TestCheck_NilCheckersSkipped(t *testing.T) {
	svc := New(&mockDBPinger{}, nil, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 1 {
		t.Errorf("expected only database check, got %v", r.Checks)
	}
}

func TestIndex(t *testing.T) {
	svc := New(&mockDBPinger{}, nil, &mockProvider{model: "text-embedding-3-small"}, &mockIndex{exists: true, count: 42})
	rep := svc.Index(context.Background())

	if rep.Status != CheckOK || rep.Documents != 42 || rep.Name != "venues_idx" {
		t.Errorf("unexpected report: %+v", rep)
	}
	if rep.Embedding != "text-embedding-3-small" {
		t.Errorf("expected embedding model, got %q", rep.Embedding)
	}
}

func TestIndex_CountError(t *testing.T) {
	svc := New(&mockDBPinger{}, nil, nil, &mockIndex{exists: true, countErr: errors.New("boom")})
	if rep := svc.Index(context.Background()); rep.Status != CheckError {
		t.Errorf("expected %q, got %q", CheckError, rep.Status)
	}
}

func TestCompletion(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockProvider{model: "Fanar", err: errors.New("401")}, nil, nil)
	rep := svc.Completion(context.Background())
	if rep.Status != CheckError || rep.Model != "Fanar" {
		t.Errorf("unexpected report: %+v", rep)
	}

	if rep := New(&mockDBPinger{}, nil, nil, nil).Completion(context.Background()); rep.Status != CheckMissing {
		t.Errorf("expected %q, got %q", CheckMissing, rep.Status)
	}
}
