package batch

import (
	"context"

	"github.com/kailas-cloud/manara/internal/domain"
)

// BatchEmbedder vectorizes many documents in one provider call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
}

// VenueWriter stores venues with their vectors.
type VenueWriter interface {
	PutMany(ctx context.Context, venues []domain.VenueRecord, vectors [][]float32) error
}
