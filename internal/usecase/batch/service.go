// Package batch loads venue records into the vector index.
package batch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/manara/internal/domain"
)

// Defaults for chunking and parallelism.
const (
	DefaultBatchSize = 32
	DefaultWorkers   = 4
)

// Result is the outcome of loading one venue.
type Result struct {
	ID  string
	Err error
}

// OK reports whether the venue was stored.
func (r Result) OK() bool { return r.Err == nil }

// Service embeds and stores venues in chunks with a bounded worker pool.
type Service struct {
	embed       BatchEmbedder
	writer      VenueWriter
	batchSize   int
	workers     int
	instruction string
	logger      *zap.Logger
}

// New creates a batch loader.
func New(embed BatchEmbedder, writer VenueWriter, l *zap.Logger) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		embed: embed, writer: writer,
		batchSize: DefaultBatchSize, workers: DefaultWorkers,
		logger: l,
	}
}

// WithBatchSize sets how many documents go into one embedding call.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithWorkers sets how many chunks are processed concurrently.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithInstruction prefixes every document before embedding. The stored document text is unchanged.
func (s *Service) WithInstruction(prefix string) *Service {
	s.instruction = prefix
	return s
}

// ErrSkipped marks venues whose chunk never ran because the context was cancelled.
var ErrSkipped = errors.New("skipped")

// Upsert embeds and stores venues. A failed chunk marks only its own items; results keep input order.
// The returned error is non-nil only when ctx was cancelled.
func (s *Service) Upsert(ctx context.Context, venues []domain.VenueRecord) ([]Result, error) {
	results := make([]Result, len(venues))
	for i, v := range venues {
		results[i] = Result{ID: v.ID, Err: ErrSkipped}
	}

	var g errgroup.Group
	g.SetLimit(s.workers)

	for start := 0; start < len(venues) && ctx.Err() == nil; start += s.batchSize {
		end := min(start+s.batchSize, len(venues))
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			err := s.upsertChunk(ctx, venues[start:end])
			if err != nil {
				s.logger.Warn("Venue chunk failed",
					zap.Int("from", start), zap.Int("to", end), zap.Error(err))
			}
			for i := start; i < end; i++ {
				results[i].Err = err
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("load venues: %w", err)
	}
	return results, nil
}

func (s *Service) upsertChunk(ctx context.Context, chunk []domain.VenueRecord) error {
	texts := make([]string, len(chunk))
	for i, v := range chunk {
		texts[i] = s.instruction + v.Document
	}
	vectors, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if err := s.writer.PutMany(ctx, chunk, vectors); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
