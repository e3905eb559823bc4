// Package booking extracts booking details from free text and records reservations.
package booking

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
const Route = "booking"

const maxTokens = 800

// Synthesizer turns a booking request into a BookingResult.
type Synthesizer struct {
	engine  domain.CompletionEngine
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewSynthesizer creates a booking synthesizer. A nil clock uses time.Now.
func NewSynthesizer(engine domain.CompletionEngine, timeout time.Duration, now func() time.Time, l *zap.Logger) *Synthesizer {
	if now == nil {
		now = time.Now
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Synthesizer{engine: engine, timeout: timeout, now: now, logger: l}
}

// Generate always returns a valid result; on any LLM problem the fixed restaurant default is used.
func (s *Synthesizer) Generate(
	ctx context.Context, text string, profile domain.UserProfile,
) (domain.BookingResult, domain.FallbackReason) {
	req := domain.UserPrompt(Prompt(text, profile), maxTokens)
	res, reason, err := completion.Structured[domain.BookingResult](ctx, s.engine, req, s.timeout)
	if err == nil {
		if res.MissingInfo == nil {
			res.MissingInfo = []string{}
		}
		return res, domain.FallbackNone
	}

	metrics.FallbacksTotal.WithLabelValues(Route, reason.String()).Inc()
	logger.FromContextOr(ctx, s.logger).Warn("Booking extraction fell back to default details",
		zap.String("reason", reason.String()), zap.Error(err))
	return s.Fallback(profile), reason
}

// Fallback is the default booking result for the profile's group size.
func (s *Synthesizer) Fallback(profile domain.UserProfile) domain.BookingResult {
	party := profile.GroupSize
	if party <= 0 {
		party = domain.DefaultGroupSize
	}
	return domain.BookingResult{
		BookingDetails: domain.BookingDetails{
			Type:               "restaurant",
			VenueName:          "Qatar Restaurant",
			Date:               s.now().Format("2006-01-02"),
			Time:               "19:00",
			PartySize:          party,
			EstimatedCost:      DefaultEstimatedCost,
			ConfirmationNeeded: true,
		},
		BookingSummary: "Restaurant booking request processed",
		NextSteps:      "Please confirm the booking details and we'll proceed with the reservation",
		MissingInfo:    []string{},
	}
}

// Prompt renders the booking extraction prompt.
func Prompt(text string, p domain.UserProfile) string {
	return fmt.Sprintf(`You are a Qatar tourism booking assistant. Process this booking request and provide booking details.

User Profile:
- Budget: %s
- Group size: %d
- Food preferences: %s

Booking request: "%s"

Analyze the booking request and provide details in this EXACT JSON format:
{
    "booking_details": {
        "type": "restaurant/activity/accommodation",
        "venue_name": "Venue name from request",
        "date": "YYYY-MM-DD",
        "time": "HH:MM",
        "party_size": %d,
        "estimated_cost": "$XX",
        "confirmation_needed": true
    },
    "booking_summary": "Brief summary of what's being booked",
    "next_steps": "What needs to be done to complete the booking",
    "missing_info": ["Any missing information needed"]
}

Respond with valid JSON only.`,
		p.BudgetRange, p.GroupSize, strings.Join(p.FoodPreferences, ", "), text, p.GroupSize)
}
