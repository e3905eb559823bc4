package chi

import (
	"context"

	"github.com/kailas-cloud/manara/internal/domain"
	bookinguc "github.com/kailas-cloud/manara/internal/usecase/booking"
	conversationuc "github.com/kailas-cloud/manara/internal/usecase/conversation"
	healthuc "github.com/kailas-cloud/manara/internal/usecase/health"
	searchuc "github.com/kailas-cloud/manara/internal/usecase/search"
)

// Orchestrator answers free-form chat input.
type Orchestrator interface {
	Process(ctx context.Context, input string, profile domain.UserProfile, contextLabel string) domain.Response
}

// Conversations runs the multi-turn assistant chat.
type Conversations interface {
	Reply(ctx context.Context, conversationID, message string) (conversationuc.Reply, error)
	Clear(ctx context.Context, conversationID string) error
	Status(ctx context.Context, conversationID string) (conversationuc.Status, error)
}

// Recommender produces venue recommendations.
type Recommender interface {
	Generate(ctx context.Context, input string, profile domain.UserProfile) (domain.RecommendationSet, domain.FallbackReason)
}

// Planner produces day plans.
type Planner interface {
	Generate(
		ctx context.Context, query string, profile domain.UserProfile, parsed *domain.ParsedQueryPreferences,
	) (domain.DayPlanEnvelope, domain.FallbackReason)
}

// Reservations records and lists bookings.
type Reservations interface {
	Reserve(ctx context.Context, req bookinguc.ReserveRequest) (domain.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error)
}

// Profiles stores user preferences.
type Profiles interface {
	Get(ctx context.Context, userID string) (domain.UserProfile, error)
	Save(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error)
}

// Searcher runs quick searches.
type Searcher interface {
	Search(ctx context.Context, q searchuc.Query) (searchuc.Response, error)
}

// HealthReporter reports on dependencies.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
	Index(ctx context.Context) healthuc.IndexReport
	Completion(ctx context.Context) healthuc.ProviderReport
}
