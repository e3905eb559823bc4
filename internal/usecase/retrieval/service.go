// Package retrieval turns a user query plus profile into a filtered, similarity-scored venue context.
package retrieval

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/manara/internal/domain"
	"github.com/kailas-cloud/manara/internal/domain/filter"
	"github.com/kailas-cloud/manara/internal/logger"
	"github.com/kailas-cloud/manara/internal/metrics"
)

// Defaults used when Config leaves a field at zero.
const (
	DefaultResults         = 10
	DefaultOverFetchFactor = 4
	DefaultTimeout         = 30 * time.Second
)

// Config tunes retrieval.
type Config struct {
	DefaultResults  int
	OverFetchFactor int
	// BudgetTolerance is how many tiers above the user's budget a venue may be.
	BudgetTolerance int
	Timeout         time.Duration
}

// Service retrieves venue context for generation. It is stateless and safe for concurrent use.
type Service struct {
	index  domain.VenueIndex
	cfg    Config
	logger *zap.Logger
}

// New creates a retrieval service.
func New(index domain.VenueIndex, cfg Config, l *zap.Logger) *Service {
	if cfg.DefaultResults <= 0 {
		cfg.DefaultResults = DefaultResults
	}
	if cfg.OverFetchFactor <= 0 {
		cfg.OverFetchFactor = DefaultOverFetchFactor
	}
	if cfg.BudgetTolerance < 0 {
		cfg.BudgetTolerance = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{index: index, cfg: cfg, logger: l}
}

// Retrieve returns up to n venues ordered by similarity. Index failures yield an empty slice.
func (s *Service) Retrieve(ctx context.Context, query string, profile domain.UserProfile, n int) []domain.VenueRecord {
	return s.RetrieveWhere(ctx, query, profile, n, filter.Expression{})
}

// RetrieveWhere is Retrieve with a metadata pre-filter applied inside the index query.
func (s *Service) RetrieveWhere(
	ctx context.Context, query string, profile domain.UserProfile, n int, f filter.Expression,
) []domain.VenueRecord {
	if n <= 0 {
		n = s.cfg.DefaultResults
	}
	log := logger.FromContextOr(ctx, s.logger)

	qctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	hits, err := s.index.Query(qctx, domain.VenueQuery{
		Text:   EnhancedQuery(query, profile),
		K:      n * s.cfg.OverFetchFactor,
		Filter: f,
	})
	if err != nil {
		reason := failureReason(err)
		metrics.RetrievalFailuresTotal.WithLabelValues(reason).Inc()
		log.Warn("Venue retrieval failed, continuing without context",
			zap.String("reason", reason), zap.Error(err))
		metrics.RetrievalResults.Observe(0)
		return []domain.VenueRecord{}
	}

	out := s.postFilter(hits, profile, n)
	metrics.RetrievalResults.Observe(float64(len(out)))
	log.Debug("Venues retrieved",
		zap.Int("candidates", len(hits)), zap.Int("returned", len(out)), zap.Int("requested", n))
	return out
}

// postFilter orders hits nearest first, ties keeping index order, then filters and truncates to n.
func (s *Service) postFilter(hits []domain.VenueHit, profile domain.UserProfile, n int) []domain.VenueRecord {
	hits = slices.Clone(hits)
	slices.SortStableFunc(hits, func(a, b domain.VenueHit) int { return cmp.Compare(a.Distance, b.Distance) })

	out := make([]domain.VenueRecord, 0, n)
	userLevel, userOK := profile.BudgetRange.Level()

	for _, h := range hits {
		if len(out) >= n {
			break
		}
		if userOK {
			if itemLevel, ok := h.Metadata.Tier().Level(); ok && itemLevel > userLevel+s.cfg.BudgetTolerance {
				continue
			}
		}
		// A venue without a rating counts as 0.
		if h.Metadata.RatingOr(0) < profile.MinRating {
			continue
		}
		out = append(out, domain.VenueRecord{
			ID:         h.ID,
			Document:   h.Document,
			Metadata:   h.Metadata,
			Similarity: domain.SimilarityFromDistance(h.Distance),
		})
	}
	return out
}

// EnhancedQuery joins the query with the profile's food, activity and budget cues.
func EnhancedQuery(query string, p domain.UserProfile) string {
	parts := []string{query}
	if len(p.FoodPreferences) > 0 {
		parts = append(parts, strings.Join(p.FoodPreferences, ". "))
	}
	if len(p.ActivityTypes) > 0 {
		parts = append(parts, strings.Join(p.ActivityTypes, ". "))
	}
	if p.BudgetRange != "" {
		parts = append(parts, string(p.BudgetRange))
	}
	return strings.Join(parts, ". ")
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return "embedding"
	default:
		return "index"
	}
}
