// Package recommend produces personalized venue recommendations from retrieved context.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/manara/internal/domain"
	"github.com/kailas-cloud/manara/internal/logger"
	"github.com/kailas-cloud/manara/internal/metrics"
	"github.com/kailas-cloud/manara/internal/usecase/completion"
)

// Route is the fallbacks_total{route} label of this synthesizer.
const Route = "recommendations"

const (
	contextResults = 5
	fallbackItems  = 4
	maxTokens      = 1500
)

// Item bounds.
const (
	DefaultMinItems = 3
	DefaultMaxItems = 4
	lowerItemBound  = 3
	upperItemBound  = 8
)

// retriever is the subset of retrieval.Service used here.
type retriever interface {
	Retrieve(ctx context.Context, query string, profile domain.UserProfile, n int) []domain.VenueRecord
}

// Config tunes the synthesizer.
type Config struct {
	MinItems int
	MaxItems int
	Timeout  time.Duration
}

func (c Config) normalized() Config {
	if c.MinItems == 0 {
		c.MinItems = DefaultMinItems
	}
	if c.MaxItems == 0 {
		c.MaxItems = DefaultMaxItems
	}
	c.MinItems = clamp(c.MinItems, lowerItemBound, upperItemBound)
	c.MaxItems = clamp(c.MaxItems, lowerItemBound, upperItemBound)
	if c.MaxItems < c.MinItems {
		c.MaxItems = c.MinItems
	}
	return c
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Synthesizer generates a RecommendationSet. Stateless and safe for concurrent use.
type Synthesizer struct {
	retriever retriever
	engine    domain.CompletionEngine
	cfg       Config
	logger    *zap.Logger
}

// New creates a recommendation synthesizer.
func New(r retriever, engine domain.CompletionEngine, cfg Config, l *zap.Logger) *Synthesizer {
	if l == nil {
		l = zap.NewNop()
	}
	return &Synthesizer{retriever: r, engine: engine, cfg: cfg.normalized(), logger: l}
}

// Generate always returns a valid set; the reason is FallbackNone when the LLM output was used.
func (s *Synthesizer) Generate(
	ctx context.Context, input string, profile domain.UserProfile,
) (domain.RecommendationSet, domain.FallbackReason) {
	log := logger.FromContextOr(ctx, s.logger)
	venues := s.retriever.Retrieve(ctx, input, profile, contextResults)

	req := domain.UserPrompt(s.prompt(input, profile, venues), maxTokens)
	set, reason, err := completion.Structured[domain.RecommendationSet](ctx, s.engine, req, s.cfg.Timeout)
	if err == nil {
		if len(set.Recommendations) > s.cfg.MaxItems {
			set.Recommendations = set.Recommendations[:s.cfg.MaxItems]
		}
		return set, domain.FallbackNone
	}

	metrics.FallbacksTotal.WithLabelValues(Route, reason.String()).Inc()
	log.Warn("Recommendation generation fell back to retrieved context",
		zap.String("reason", reason.String()), zap.Int("venues", len(venues)), zap.Error(err))
	return FromContext(venues, profile), reason
}

// FromContext maps retrieved venues onto the recommendation shape.
// An empty context yields the curated default so the result is never empty.
func FromContext(venues []domain.VenueRecord, profile domain.UserProfile) domain.RecommendationSet {
	recs := make([]domain.Recommendation, 0, fallbackItems)
	for _, v := range venues {
		if len(recs) == fallbackItems {
			break
		}
		m := v.Metadata
		recs = append(recs, domain.Recommendation{
			Name:              or(m.Name, "Qatar Experience"),
			Type:              or(m.Category, "attraction"),
			Description:       fmt.Sprintf("Recommended based on your preferences with %s relevance", Percent(v.Similarity)),
			Location:          or(m.Location, "Qatar"),
			PriceRange:        or(m.PriceOrFee(), "N/A"),
			Rating:            m.RatingOr(4.0),
			EstimatedDuration: "2 hours",
			WhyRecommended:    "Found in our database as highly relevant to your interests",
			BookingAvailable:  m.Category == domain.CategoryRestaurants,
			BestTimeToVisit:   "Anytime",
		})
	}
	if len(recs) == 0 {
		return Default()
	}
	return domain.RecommendationSet{
		Recommendations: recs,
		Summary: fmt.Sprintf("Personalized recommendations based on your %s budget and %s interests",
			profile.BudgetRange, strings.Join(profile.ActivityTypes, ", ")),
	}
}

// Default is the curated single-item set served when nothing else is available.
func Default() domain.RecommendationSet {
	return domain.RecommendationSet{
		Recommendations: []domain.Recommendation{{
			Name:              "Museum of Islamic Art",
			Type:              "attraction",
			Description:       "World-class Islamic art museum perfect for cultural exploration",
			Location:          "Corniche, Doha",
			PriceRange:        "Free",
			Rating:            4.8,
			EstimatedDuration: "2-3 hours",
			WhyRecommended:    "Matches your cultural interests and budget",
			BookingAvailable:  false,
			BestTimeToVisit:   "Morning",
		}},
		Summary: "Curated recommendations based on your preferences",
	}
}

// Percent formats a [0,1] fraction with one decimal, e.g. 0.873 -> "87.3%".
func Percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// ContextLines renders venues as prompt context.
func ContextLines(venues []domain.VenueRecord) string {
	lines := make([]string, 0, len(venues))
	for _, v := range venues {
		m := v.Metadata
		lines = append(lines, fmt.Sprintf("- %s (%s): %s, Price: %s, Rating: %s",
			m.Name, m.Category, m.Location, or(m.PriceOrFee(), "N/A"), m.RatingText()))
	}
	return strings.Join(lines, "\n")
}

func (s *Synthesizer) prompt(input string, p domain.UserProfile, venues []domain.VenueRecord) string {
	return fmt.Sprintf(`You are a Qatar tourism expert. Based on the user's preferences and available places, provide personalized recommendations.

User Profile:
- Food preferences: %s
- Budget range: %s
- Preferred activities: %s
- Group size: %d
- Minimum rating: %.1f

Available places in Qatar:
%s

User request: "%s"

Provide %d-%d personalized recommendations in this EXACT JSON format:
{
    "recommendations": [
        {
            "name": "Place Name",
            "type": "restaurant/attraction/cafe/activity",
            "description": "Brief description why this is perfect for the user",
            "location": "Area name",
            "price_range": "Free or $ or $$ or $$$",
            "rating": 4.5,
            "estimated_duration": "n hours",
            "why_recommended": "Specific reason based on user preferences",
            "booking_available": true,
            "best_time_to_visit": "Morning/Afternoon/Evening"
        }
    ],
    "summary": "Brief explanation of why these recommendations fit the user's profile"
}

Ensure all recommendations match the user's budget and preferences. Respond with valid JSON only.`,
		strings.Join(p.FoodPreferences, ", "), p.BudgetRange, strings.Join(p.ActivityTypes, ", "),
		p.GroupSize, p.MinRating, ContextLines(venues), input, s.cfg.MinItems, s.cfg.MaxItems)
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
