package recommend

import (
	"context"
	"strings"
	"testing"

	"github.com/kailas-cloud/manara/internal/domain"
)

// --- Mocks ---

type mockRetriever struct {
	venues []domain.VenueRecord
	gotN   int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, _ domain.UserProfile, n int) []domain.VenueRecord {
	m.gotN = n
	return m.venues
}

type mockEngine struct {
	reply string
	err   error
	last  domain.CompletionRequest
}

func (m *mockEngine) Complete(_ context.Context, req domain.CompletionRequest) (string, error) {
	m.last = req
	return m.reply, m.err
}

func venue(name, category, price string, rating float64, sim float64) domain.VenueRecord {
	return domain.VenueRecord{
		ID:         strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Document:   name + " in Doha",
		Similarity: sim,
		Metadata: domain.VenueMetadata{
			Name: name, Category: category, Location: "Doha",
			PriceRange: price, Rating: rating, HasRating: rating > 0,
		},
	}
}

var profile = domain.UserProfile{
	UserID:          "u1",
	FoodPreferences: []string{"Seafood"},
	BudgetRange:     domain.BudgetModerate,
	ActivityTypes:   []string{"Cultural", "Food"},
	GroupSize:       2,
	MinRating:       4.0,
}

const validReply = "```json\n" + `{"recommendations":[{"name":"Souq Waqif","type":"attraction","description":"d","location":"Doha","price_range":"Free","rating":4.6,"estimated_duration":"2 hours","why_recommended":"w","booking_available":false,"best_time_to_visit":"Evening"}],"summary":"Great picks"}` + "\n```"

// --- Tests ---

func TestGenerate_LLMPath(t *testing.T) {
	r := &mockRetriever{venues: []domain.VenueRecord{venue("Parisa", "restaurants", "$$", 4.6, 0.9)}}
	e := &mockEngine{reply: validReply}

	set, reason := New(r, e, Config{}, nil).Generate(context.Background(), "seafood dinner", profile)
	if reason != domain.FallbackNone {
		t.Fatalf("reason = %q, want none", reason)
	}
	if set.Summary != "Great picks" || set.Recommendations[0].Name != "Souq Waqif" {
		t.Errorf("unexpected set: %+v", set)
	}
	if r.gotN != 5 {
		t.Errorf("retrieved n = %d, want 5", r.gotN)
	}
	if e.last.MaxTokens != 1500 {
		t.Errorf("max tokens = %d", e.last.MaxTokens)
	}
	p := e.last.Messages[0].Content
	for _, want := range []string{
		"- Parisa (restaurants): Doha, Price: $$, Rating: 4.6",
		`User request: "seafood dinner"`,
		"- Group size: 2",
		"- Minimum rating: 4.0",
		"Provide 3-4 personalized recommendations",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerate_TruncatesToMaxItems(t *testing.T) {
	item := `{"name":"X","type":"cafe","description":"d","location":"Doha","price_range":"$","rating":4,` +
		`"estimated_duration":"1 hour","why_recommended":"w","booking_available":false,"best_time_to_visit":"Anytime"}`
	reply := `{"recommendations":[` + strings.Repeat(item+",", 5) + item + `],"summary":"s"}`

	set, reason := New(&mockRetriever{}, &mockEngine{reply: reply}, Config{}, nil).
		Generate(context.Background(), "q", profile)
	if reason != domain.FallbackNone {
		t.Fatalf("reason = %q", reason)
	}
	if len(set.Recommendations) != DefaultMaxItems {
		t.Errorf("got %d items, want %d", len(set.Recommendations), DefaultMaxItems)
	}
}

func TestGenerate_FallbackReasons(t *testing.T) {
	venues := []domain.VenueRecord{venue("Parisa", "restaurants", "$$", 4.6, 0.873)}
	tests := []struct {
		name   string
		engine *mockEngine
		want   domain.FallbackReason
	}{
		{"engine error", &mockEngine{err: domain.ErrCompletionFailed}, domain.FallbackCompletionFailure},
		{"not json", &mockEngine{reply: "Here are some ideas!"}, domain.FallbackMalformedOutput},
		{"missing summary", &mockEngine{reply: `{"recommendations":[{"name":"X","rating":4}]}`}, domain.FallbackInvalidSchema},
		{"missing item keys", &mockEngine{reply: `{"recommendations":[{"name":"X"}],"summary":"s"}`}, domain.FallbackInvalidSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, reason := New(&mockRetriever{venues: venues}, tt.engine, Config{}, nil).
				Generate(context.Background(), "q", profile)
			if reason != tt.want {
				t.Errorf("reason = %q, want %q", reason, tt.want)
			}
			if err := set.Validate(); err != nil {
				t.Fatalf("fallback does not validate: %v", err)
			}
			r := set.Recommendations[0]
			if r.Name != "Parisa" || !r.BookingAvailable {
				t.Errorf("unexpected item %+v", r)
			}
			if r.Description != "Recommended based on your preferences with 87.3% relevance" {
				t.Errorf("description = %q", r.Description)
			}
		})
	}
}

func TestGenerate_NonEmptyUnderFailingEngineAndEmptyIndex(t *testing.T) {
	set, _ := New(&mockRetriever{}, &mockEngine{err: domain.ErrCompletionFailed}, Config{}, nil).
		Generate(context.Background(), "anything", profile)
	if len(set.Recommendations) == 0 || set.Summary == "" {
		t.Fatalf("expected non-empty set, got %+v", set)
	}
	if set.Recommendations[0].Name != "Museum of Islamic Art" {
		t.Errorf("expected curated default, got %q", set.Recommendations[0].Name)
	}
}

func TestFromContext(t *testing.T) {
	venues := []domain.VenueRecord{
		venue("A", "attractions", "", 0, 0.5),
		{Metadata: domain.VenueMetadata{EntryFee: "Free"}},
		venue("C", "cafes", "$", 4.2, 0.4),
		venue("D", "museums", "$", 4.9, 0.3),
		venue("E", "malls", "$$", 4.1, 0.2),
	}
	set := FromContext(venues, profile)

	if len(set.Recommendations) != 4 {
		t.Fatalf("expected 4 items, got %d", len(set.Recommendations))
	}
	blank := set.Recommendations[1]
	if blank.Name != "Qatar Experience" || blank.Type != "attraction" || blank.Location != "Qatar" {
		t.Errorf("defaults not applied: %+v", blank)
	}
	if blank.PriceRange != "Free" || blank.Rating != 4.0 {
		t.Errorf("price/rating defaults: %+v", blank)
	}
	if set.Recommendations[0].PriceRange != "N/A" {
		t.Errorf("price default = %q", set.Recommendations[0].PriceRange)
	}
	if want := "Personalized recommendations based on your $$ budget and Cultural, Food interests"; set.Summary != want {
		t.Errorf("summary = %q", set.Summary)
	}
	if err := set.Validate(); err != nil {
		t.Errorf("fallback must validate: %v", err)
	}
}

func TestSchemaEquivalence(t *testing.T) {
	// Both paths produce values accepted by the same validator.
	for _, set := range []domain.RecommendationSet{
		Default(),
		FromContext([]domain.VenueRecord{venue("A", "cafes", "$", 4.5, 1)}, profile),
	} {
		if err := set.Validate(); err != nil {
			t.Errorf("invalid fallback %+v: %v", set, err)
		}
	}
}

func TestConfig_Bounds(t *testing.T) {
	tests := []struct {
		in       Config
		min, max int
	}{
		{Config{}, 3, 4},
		{Config{MinItems: 1, MaxItems: 20}, 3, 8},
		{Config{MinItems: 6, MaxItems: 4}, 6, 6},
	}
	for _, tt := range tests {
		got := tt.in.normalized()
		if got.MinItems != tt.min || got.MaxItems != tt.max {
			t.Errorf("normalized(%+v) = %d-%d, want %d-%d", tt.in, got.MinItems, got.MaxItems, tt.min, tt.max)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.8734); got != "87.3%" {
		t.Errorf("Percent = %q", got)
	}
	if got := Percent(1); got != "100.0%" {
		t.Errorf("Percent = %q", got)
	}
}
