package chi

import (
	"fmt"

	"github.com/kailas-cloud/manara/internal/domain"
	bookinguc "github.com/kailas-cloud/manara/internal/usecase/booking"
	searchuc "github.com/kailas-cloud/manara/internal/usecase/search"
)

// defaultRequestBudget applies to request bodies that omit budget_range.
const defaultRequestBudget = domain.BudgetModerate

const (
	defaultChatContext         = "dashboard"
	defaultRecommendationLimit = 5
)

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Context string `json:"context"`
	// Accepted for compatibility; the orchestrator is stateless. Multi-turn chat lives on POST /chat.
	ConversationHistory []map[string]any `json:"conversation_history,omitempty"`
}

type conversationRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type clearChatRequest struct {
	ConversationID string `json:"conversation_id"`
}

type clearChatData struct {
	ConversationID string `json:"conversation_id"`
}

type preferencesRequest struct {
	FoodPreferences []string `json:"food_preferences"`
	BudgetRange     string   `json:"budget_range"`
	ActivityTypes   []string `json:"activity_types"`
	Language        string   `json:"language"`
	GroupSize       int      `json:"group_size"`
	MinRating       *float64 `json:"min_rating"`
}

// toProfile applies request defaults: budget $$, min rating 4.0, group of one.
func (p preferencesRequest) toProfile(userID string) (domain.UserProfile, error) {
	budget := domain.BudgetTier(p.BudgetRange)
	if budget == "" {
		budget = defaultRequestBudget
	}
	if _, ok := budget.Level(); !ok {
		return domain.UserProfile{}, fmt.Errorf("%w: unknown budget_range %q", domain.ErrInvalidRequest, p.BudgetRange)
	}
	minRating := domain.DefaultMinRating
	if p.MinRating != nil {
		minRating = *p.MinRating
	}
	return domain.UserProfile{
		UserID:          userID,
		FoodPreferences: p.FoodPreferences,
		BudgetRange:     budget,
		ActivityTypes:   p.ActivityTypes,
		Language:        p.Language,
		GroupSize:       p.GroupSize,
		MinRating:       minRating,
	}.Normalize(), nil
}

type recommendationRequest struct {
	Query       string             `json:"query"`
	UserID      string             `json:"user_id"`
	Preferences preferencesRequest `json:"preferences"`
	Limit       int                `json:"limit"`
}

type planRequest struct {
	Query       string             `json:"query"`
	UserID      string             `json:"user_id"`
	Preferences preferencesRequest `json:"preferences"`
	Date        string             `json:"date,omitempty"`
}

type bookingRequest struct {
	VenueName           string `json:"venue_name"`
	Date                string `json:"date"`
	Time                string `json:"time"`
	PartySize           int    `json:"party_size"`
	UserID              string `json:"user_id"`
	SpecialRequirements string `json:"special_requirements,omitempty"`
}

func (b bookingRequest) toReserve() bookinguc.ReserveRequest {
	return bookinguc.ReserveRequest{
		UserID:              b.UserID,
		VenueName:           b.VenueName,
		Date:                b.Date,
		Time:                b.Time,
		PartySize:           b.PartySize,
		SpecialRequirements: b.SpecialRequirements,
	}
}

type searchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	Budget   string `json:"budget,omitempty"`
	Location string `json:"location,omitempty"`
}

func (s searchRequest) toQuery() searchuc.Query {
	return searchuc.Query{
		Text:     s.Query,
		Category: s.Category,
		Budget:   domain.BudgetTier(s.Budget),
		Location: s.Location,
	}
}

// envelope is the response body shared by every /api/v1 endpoint.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

type bookingData struct {
	Booking domain.Reservation `json:"booking"`
}

type bookingsData struct {
	UserID   string               `json:"user_id"`
	Bookings []domain.Reservation `json:"bookings"`
}

type ragStatus struct {
	Status         string `json:"status"`
	Index          string `json:"index"`
	VectorDBItems  int64  `json:"vector_db_items"`
	EmbeddingModel string `json:"embedding_model"`
}

type llmStatus struct {
	Status          string `json:"status"`
	Model           string `json:"model"`
	FallbackEnabled bool   `json:"fallback_enabled"`
}

type healthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}
