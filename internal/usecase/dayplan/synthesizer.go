// Package dayplan builds single-day itineraries from retrieved venues.
package dayplan

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
const Route = "day_plan"

// Defaults for unspecified plan parameters.
const (
	DefaultDuration  = 8
	DefaultStartTime = "09:00"
	DefaultBudget    = 150
)

const (
	contextResults = 15
	maxTokens      = 2000
)

type retriever interface {
	Retrieve(ctx context.Context, query string, profile domain.UserProfile, n int) []domain.VenueRecord
}

// Config tunes the synthesizer.
type Config struct {
	// LLMEnabled asks the completion engine for a plan before the rule-based generator.
	LLMEnabled       bool
	DefaultDuration  int
	DefaultStartTime string
	DefaultBudget    int
	Timeout          time.Duration
}

// Synthesizer produces a DayPlanEnvelope. Safe for concurrent use.
type Synthesizer struct {
	retriever retriever
	engine    domain.CompletionEngine
	gen       *Generator
	cfg       Config
	logger    *zap.Logger
}

// New creates a day-plan synthesizer. engine may be nil when cfg.LLMEnabled is false.
func New(r retriever, engine domain.CompletionEngine, gen *Generator, cfg Config, l *zap.Logger) *Synthesizer {
	if gen == nil {
		gen = NewGenerator(nil)
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = DefaultDuration
	}
	if !domain.IsClock(cfg.DefaultStartTime) {
		cfg.DefaultStartTime = DefaultStartTime
	}
	if cfg.DefaultBudget <= 0 {
		cfg.DefaultBudget = DefaultBudget
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Synthesizer{retriever: r, engine: engine, gen: gen, cfg: cfg, logger: l}
}

// Resolve fills plan parameters from parsed cues, the profile and configured defaults.
func (s *Synthesizer) Resolve(profile domain.UserProfile, parsed *domain.ParsedQueryPreferences) Request {
	var p domain.ParsedQueryPreferences
	if parsed != nil {
		p = *parsed
	}
	req := Request{
		Duration:          p.Duration,
		DurationText:      p.DurationText,
		StartTime:         p.StartTime,
		Budget:            p.BudgetAmount,
		ActivityTypes:     p.ActivityTypes,
		IncludeSouqs:      p.IncludeSouqs,
		PrioritizeCulture: p.PrioritizeCulture,
	}
	if req.Duration <= 0 {
		req.Duration = s.cfg.DefaultDuration
	}
	if !domain.IsClock(req.StartTime) {
		req.StartTime = s.cfg.DefaultStartTime
	}
	if req.Budget <= 0 {
		req.Budget = s.cfg.DefaultBudget
	}
	if len(req.ActivityTypes) == 0 {
		req.ActivityTypes = profile.ActivityTypes
	}
	return req
}

// Generate always returns a plan. The reason tells which path produced it.
func (s *Synthesizer) Generate(
	ctx context.Context, query string, profile domain.UserProfile, parsed *domain.ParsedQueryPreferences,
) (domain.DayPlanEnvelope, domain.FallbackReason) {
	log := logger.FromContextOr(ctx, s.logger)
	if parsed != nil {
		profile = parsed.Overlay(profile)
	}
	req := s.Resolve(profile, parsed)
	venues := s.retriever.Retrieve(ctx, query, profile, contextResults)

	reason := domain.FallbackDisabled
	if s.cfg.LLMEnabled && s.engine != nil {
		r := domain.UserPrompt(s.prompt(query, profile, venues), maxTokens)
		plan, why, err := completion.Structured[domain.DayPlanEnvelope](ctx, s.engine, r, s.cfg.Timeout)
		if err == nil {
			return plan, domain.FallbackNone
		}
		reason = why
		metrics.FallbacksTotal.WithLabelValues(Route, reason.String()).Inc()
		log.Warn("Day plan generation fell back to rule-based planner",
			zap.String("reason", reason.String()), zap.Error(err))
	}

	plan, err := s.build(venues, req)
	if err != nil {
		metrics.FallbacksTotal.WithLabelValues(Route, domain.FallbackEmergency.String()).Inc()
		log.Error("Rule-based planner failed, serving emergency plan", zap.Error(err))
		return s.gen.Emergency(req), domain.FallbackEmergency
	}
	log.Debug("Day plan built",
		zap.Int("venues", len(venues)), zap.Int("activities", len(plan.DayPlan.Activities)),
		zap.Int("duration", req.Duration), zap.Int("budget", req.Budget))
	return plan, reason
}

func (s *Synthesizer) build(venues []domain.VenueRecord, req Request) (plan domain.DayPlanEnvelope, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rule-based planner panic: %v", r)
		}
	}()
	plan = s.gen.Build(venues, req)
	if err := plan.Validate(); err != nil {
		return domain.DayPlanEnvelope{}, fmt.Errorf("rule-based plan: %w", err)
	}
	return plan, nil
}

func (s *Synthesizer) prompt(query string, p domain.UserProfile, venues []domain.VenueRecord) string {
	var restaurants, attractions, cafes []string
	for _, v := range venues {
		m := v.Metadata
		switch m.Category {
		case domain.CategoryRestaurants:
			if len(restaurants) < 3 {
				restaurants = append(restaurants, fmt.Sprintf("- %s: %s, %s", m.Name, m.Location, orDefault(m.PriceRange, "N/A")))
			}
		case domain.CategoryAttractions:
			if len(attractions) < 3 {
				attractions = append(attractions, fmt.Sprintf("- %s: %s, %s", m.Name, m.Location, orDefault(m.EntryFee, "Free")))
			}
		case domain.CategoryCafes:
			if len(cafes) < 2 {
				cafes = append(cafes, fmt.Sprintf("- %s: %s, %s", m.Name, m.Location, orDefault(m.PriceRange, "N/A")))
			}
		}
	}

	return fmt.Sprintf(`Create a detailed day itinerary for Qatar based on the user's request and preferences.

User Profile:
- Food preferences: %s
- Budget: %s
- Preferred activities: %s
- Group size: %d

Available options:

RESTAURANTS:
%s

ATTRACTIONS:
%s

CAFES:
%s

User request: "%s"

Create a realistic day plan in this EXACT JSON format:
{
    "day_plan": {
        "title": "Your Perfect Day in Qatar",
        "date": "%s",
        "total_estimated_cost": "$50-80",
        "total_duration": "8 hours",
        "activities": [
            {
                "time": "09:00",
                "activity": "Breakfast at Restaurant Name",
                "location": "Specific area",
                "duration": "1 hour",
                "estimated_cost": "$15",
                "description": "Why this fits the plan and user preferences",
                "transportation": "10-minute walk from previous location",
                "booking_required": false,
                "tips": "Arrive early to avoid crowds"
            }
        ],
        "transportation_notes": "Best ways to get around for this itinerary",
        "total_walking_distance": "3 km",
        "weather_tips": "Bring sunscreen and water",
        "budget_breakdown": {
            "food": "$40",
            "attractions": "$30",
            "transportation": "$20"
        }
    }
}

Include 4-5 activities covering breakfast, main attractions, lunch/cafe, and dinner. Make sure activities are in chronological order and transportation between locations is realistic. Respond with valid JSON only.`,
		strings.Join(p.FoodPreferences, ", "), p.BudgetRange, strings.Join(p.ActivityTypes, ", "), p.GroupSize,
		strings.Join(restaurants, "\n"), strings.Join(attractions, "\n"), strings.Join(cafes, "\n"),
		query, s.gen.today())
}
