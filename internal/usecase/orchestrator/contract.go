package orchestrator

import (
	"context"

	"github.com/kailas-cloud/manara/internal/domain"
)

// IntentClassifier resolves the request kind. It never fails.
type IntentClassifier interface {
	Classify(ctx context.Context, input string, profile domain.UserProfile) domain.Intent
}

// Recommender produces recommendation sets.
type Recommender interface {
	Generate(ctx context.Context, input string, profile domain.UserProfile) (domain.RecommendationSet, domain.FallbackReason)
}

// Planner produces day plans.
type Planner interface {
	Generate(
		ctx context.Context, query string, profile domain.UserProfile, parsed *domain.ParsedQueryPreferences,
	) (domain.DayPlanEnvelope, domain.FallbackReason)
}

// Booker extracts booking details.
type Booker interface {
	Generate(ctx context.Context, text string, profile domain.UserProfile) (domain.BookingResult, domain.FallbackReason)
}

// Retriever fetches venue context for chat answers.
type Retriever interface {
	Retrieve(ctx context.Context, query string, profile domain.UserProfile, n int) []domain.VenueRecord
}
