package domain

import (
	"context"
	"fmt"
)

// Embedder turns text into a vector for the venue index.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes several texts in one provider call (used by the loader).
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries a vector and its token usage.
type EmbeddingResult struct {
	Embedding   []float32
	TotalTokens int
	Cached      bool
}

// PrefixEmbedder prepends a fixed instruction to every query before embedding.
type PrefixEmbedder struct {
	inner  Embedder
	prefix string
}

// NewPrefixEmbedder wraps inner. An empty prefix returns inner unchanged.
func NewPrefixEmbedder(inner Embedder, prefix string) Embedder {
	if prefix == "" {
		return inner
	}
	return &PrefixEmbedder{inner: inner, prefix: prefix}
}

// Embed prepends the prefix and delegates.
func (e *PrefixEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	res, err := e.inner.Embed(ctx, e.prefix+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("prefixed embed: %w", err)
	}
	return res, nil
}
