package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/manara/internal/domain"
	bookinguc "github.com/kailas-cloud/manara/internal/usecase/booking"
	conversationuc "github.com/kailas-cloud/manara/internal/usecase/conversation"
	healthuc "github.com/kailas-cloud/manara/internal/usecase/health"
	searchuc "github.com/kailas-cloud/manara/internal/usecase/search"
)

// --- Mocks ---

type mockOrchestrator struct {
	gotInput   string
	gotProfile domain.UserProfile
	gotContext string
	resp       domain.Response
	panicWith  any
}

func (m *mockOrchestrator) Process(
	_ context.Context, input string, p domain.UserProfile, label string,
) domain.Response {
	if m.panicWith != nil {
		panic(m.panicWith)
	}
	m.gotInput, m.gotProfile, m.gotContext = input, p, label
	return m.resp
}

type mockRecommender struct {
	gotProfile domain.UserProfile
	set        domain.RecommendationSet
}

func (m *mockRecommender) Generate(
	_ context.Context, _ string, p domain.UserProfile,
) (domain.RecommendationSet, domain.FallbackReason) {
	m.gotProfile = p
	return m.set, domain.FallbackNone
}

type mockPlanner struct {
	gotParsed *domain.ParsedQueryPreferences
	plan      domain.DayPlanEnvelope
}

func (m *mockPlanner) Generate(
	_ context.Context, _ string, _ domain.UserProfile, parsed *domain.ParsedQueryPreferences,
) (domain.DayPlanEnvelope, domain.FallbackReason) {
	m.gotParsed = parsed
	return m.plan, domain.FallbackDisabled
}

type mockReservations struct {
	res  domain.Reservation
	err  error
	list []domain.Reservation
}

func (m *mockReservations) Reserve(_ context.Context, req bookinguc.ReserveRequest) (domain.Reservation, error) {
	if m.err != nil {
		return domain.Reservation{}, m.err
	}
	r := m.res
	r.VenueName = req.VenueName
	return r, nil
}

func (m *mockReservations) ListByUser(_ context.Context, _ string) ([]domain.Reservation, error) {
	return m.list, m.err
}

type mockProfiles struct {
	stored map[string]domain.UserProfile
	err    error
}

func (m *mockProfiles) Get(_ context.Context, id string) (domain.UserProfile, error) {
	if m.err != nil {
		return domain.UserProfile{}, m.err
	}
	if p, ok := m.stored[id]; ok {
		return p, nil
	}
	return domain.DefaultProfile(id), nil
}

func (m *mockProfiles) Save(_ context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	if m.err != nil {
		return domain.UserProfile{}, m.err
	}
	if m.stored == nil {
		m.stored = map[string]domain.UserProfile{}
	}
	m.stored[p.UserID] = p
	return p, nil
}

type mockConversations struct {
	gotID, gotMessage string
	cleared           []string
	turns             int
	err               error
}

func (m *mockConversations) Reply(_ context.Context, id, message string) (conversationuc.Reply, error) {
	m.gotID, m.gotMessage = id, message
	if m.err != nil {
		return conversationuc.Reply{}, m.err
	}
	if id == "" {
		id = conversationuc.DefaultID
	}
	return conversationuc.Reply{ConversationID: id, Response: "Marhaba!"}, nil
}

func (m *mockConversations) Clear(_ context.Context, id string) error {
	m.cleared = append(m.cleared, id)
	return m.err
}

func (m *mockConversations) Status(_ context.Context, id string) (conversationuc.Status, error) {
	m.gotID = id
	return conversationuc.Status{ConversationID: id, MessageCount: m.turns, HasHistory: m.turns > 0}, m.err
}

type mockSearcher struct {
	resp searchuc.Response
	err  error
}

func (m *mockSearcher) Search(_ context.Context, _ searchuc.Query) (searchuc.Response, error) {
	return m.resp, m.err
}

type mockHealth struct {
	report     healthuc.Report
	index      healthuc.IndexReport
	completion healthuc.ProviderReport
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report               { return m.report }
func (m *mockHealth) Index(_ context.Context) healthuc.IndexReport          { return m.index }
func (m *mockHealth) Completion(_ context.Context) healthuc.ProviderReport { return m.completion }

type fixture struct {
	orch    *mockOrchestrator
	conv    *mockConversations
	rec     *mockRecommender
	plan    *mockPlanner
	res     *mockReservations
	prof    *mockProfiles
	search  *mockSearcher
	health  *mockHealth
	handler http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		orch:   &mockOrchestrator{resp: domain.Response{Type: domain.ResponseChat, Data: domain.ChatReply{Message: "hi"}}},
		conv:   &mockConversations{},
		rec:    &mockRecommender{},
		plan:   &mockPlanner{},
		res:    &mockReservations{},
		prof:   &mockProfiles{},
		search: &mockSearcher{},
		health: &mockHealth{},
	}
	s := NewServer(Services{
		Orchestrator:  f.orch,
		Conversations: f.conv,
		Recommender:   f.rec,
		Planner:       f.plan,
		Reservations:  f.res,
		Profiles:      f.prof,
		Searcher:      f.search,
		Health:        f.health,
	}, nil)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	s.newID = func() string { return "req-1" }
	f.handler = s.Routes([]string{"*"})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

type rawEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Timestamp string          `json:"timestamp"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) rawEnvelope {
	t.Helper()
	var env rawEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rr.Body.String())
	}
	return env
}

// --- Tests ---

func TestConverse(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/chat", `{"message":"Best karak in Doha?","conversation_id":"c1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var reply conversationuc.Reply
	if err := json.Unmarshal(decodeEnvelope(t, rr).Data, &reply); err != nil {
		t.Fatal(err)
	}
	if reply.ConversationID != "c1" || reply.Response != "Marhaba!" {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if f.conv.gotMessage != "Best karak in Doha?" {
		t.Errorf("message = %q", f.conv.gotMessage)
	}

	if rr := f.do(t, http.MethodPost, "/chat", `{"message":" "}`); rr.Code != http.StatusBadRequest {
		t.Errorf("empty message: expected 400, got %d", rr.Code)
	}

	f.conv.err = fmt.Errorf("conversation c1: %w", domain.ErrCompletionFailed)
	if rr := f.do(t, http.MethodPost, "/chat", `{"message":"hi"}`); rr.Code != http.StatusBadGateway {
		t.Errorf("engine failure: expected 502, got %d", rr.Code)
	}
}

func TestClearChat(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/clear_chat", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("empty body: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	if env.Message != "Conversation history cleared" || !strings.Contains(string(env.Data), `"default"`) {
		t.Errorf("unexpected envelope: %+v", env)
	}

	f.do(t, http.MethodPost, "/clear_chat", `{"conversation_id":"c1"}`)
	if len(f.conv.cleared) != 2 || f.conv.cleared[1] != "c1" {
		t.Errorf("cleared = %v", f.conv.cleared)
	}

	if rr := f.do(t, http.MethodPost, "/clear_chat", `{`); rr.Code != http.StatusBadRequest {
		t.Errorf("bad json: expected 400, got %d", rr.Code)
	}
}

func TestConversationStatus(t *testing.T) {
	f := newFixture()
	f.conv.turns = 4

	rr := f.do(t, http.MethodGet, "/conversation_status?conversation_id=c1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var st struct {
		ConversationID string `json:"conversation_id"`
		MessageCount   int    `json:"message_count"`
		HasHistory     bool   `json:"has_history"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rr).Data, &st); err != nil {
		t.Fatal(err)
	}
	if st.ConversationID != "c1" || st.MessageCount != 4 || !st.HasHistory {
		t.Errorf("unexpected status: %+v", st)
	}

	f.conv.err = fmt.Errorf("%w: conversation_id too long", domain.ErrInvalidRequest)
	if rr := f.do(t, http.MethodGet, "/conversation_status?conversation_id=x", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestChat(t *testing.T) {
	f := newFixture()
	f.prof.stored = map[string]domain.UserProfile{"u1": {UserID: "u1", BudgetRange: domain.BudgetHigh}}

	rr := f.do(t, http.MethodPost, "/api/v1/chat", `{"message":"hello","user_id":"u1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	if !env.Success || env.RequestID != "req-1" || env.Timestamp != "2026-03-01T09:00:00Z" {
		t.Errorf("unexpected envelope: %+v", env)
	}
	var resp struct {
		Type string `json:"type"`
		Data struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Type != "chat" || resp.Data.Message != "hi" {
		t.Errorf("unexpected data: %+v", resp)
	}
	if f.orch.gotContext != "dashboard" {
		t.Errorf("expected default context, got %q", f.orch.gotContext)
	}
	if f.orch.gotProfile.BudgetRange != domain.BudgetHigh {
		t.Errorf("expected stored profile, got %+v", f.orch.gotProfile)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestChat_ProfileErrorUsesDefault(t *testing.T) {
	f := newFixture()
	f.prof.err = errors.New("valkey down")

	rr := f.do(t, http.MethodPost, "/api/v1/chat", `{"message":"hello","user_id":"u1","context":"map"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if f.orch.gotProfile.BudgetRange != domain.BudgetLow || f.orch.gotContext != "map" {
		t.Errorf("unexpected call: profile %+v context %q", f.orch.gotProfile, f.orch.gotContext)
	}
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name, path, body, wantMsg string
	}{
		{"bad json", "/api/v1/chat", `{`, "Invalid request body"},
		{"empty message", "/api/v1/chat", `{"message":"  "}`, "message is required"},
		{"empty query", "/api/v1/recommendations", `{"query":""}`, "query is required"},
		{"unknown budget", "/api/v1/plan", `{"query":"day","preferences":{"budget_range":"cheap"}}`, "budget_range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			rr := f.do(t, http.MethodPost, tt.path, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			env := decodeEnvelope(t, rr)
			if env.Success || !strings.Contains(env.Message, tt.wantMsg) {
				t.Errorf("unexpected envelope: %+v", env)
			}
		})
	}
}

func TestRecommendations_DefaultsAndLimit(t *testing.T) {
	f := newFixture()
	for i := range 6 {
		f.rec.set.Recommendations = append(f.rec.set.Recommendations, domain.Recommendation{Name: fmt.Sprintf("v%d", i)})
	}
	f.rec.set.Summary = "s"

	rr := f.do(t, http.MethodPost, "/api/v1/recommendations", `{"query":"food","user_id":"u1","preferences":{}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var set domain.RecommendationSet
	if err := json.Unmarshal(decodeEnvelope(t, rr).Data, &set); err != nil {
		t.Fatal(err)
	}
	if len(set.Recommendations) != defaultRecommendationLimit {
		t.Errorf("expected %d recommendations, got %d", defaultRecommendationLimit, len(set.Recommendations))
	}
	p := f.rec.gotProfile
	if p.BudgetRange != domain.BudgetModerate || p.MinRating != 4.0 || p.GroupSize != 1 || p.UserID != "u1" {
		t.Errorf("unexpected profile defaults: %+v", p)
	}

	f.do(t, http.MethodPost, "/api/v1/recommendations", `{"query":"food","preferences":{"min_rating":0}}`)
	if f.rec.gotProfile.MinRating != 0 {
		t.Errorf("explicit min_rating 0 must be kept, got %v", f.rec.gotProfile.MinRating)
	}
}

func TestPlan_ParsesCuesAndOverridesDate(t *testing.T) {
	f := newFixture()
	f.plan.plan = domain.DayPlanEnvelope{DayPlan: domain.DayPlan{
		Date: "2026-03-01", TotalDuration: "4 hours", TotalEstimatedCost: "$35",
		Activities: []domain.Activity{{Time: "09:00"}},
	}}

	rr := f.do(t, http.MethodPost, "/api/v1/plan",
		`{"query":"half day budget cultural trip","user_id":"u1","preferences":{},"date":"2026-04-02"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	var plan domain.DayPlanEnvelope
	if err := json.Unmarshal(env.Data, &plan); err != nil {
		t.Fatal(err)
	}
	if plan.DayPlan.Date != "2026-04-02" {
		t.Errorf("expected requested date, got %q", plan.DayPlan.Date)
	}
	if env.Message != "Day plan created: 1 activities, 4 hours, cost $35" {
		t.Errorf("unexpected message %q", env.Message)
	}
	got := f.plan.gotParsed
	if got == nil || got.Duration != 4 || got.BudgetRange != domain.BudgetLow || got.BudgetAmount != 75 {
		t.Errorf("unexpected parsed cues: %+v", got)
	}
}

func TestBook(t *testing.T) {
	f := newFixture()
	f.res.res = domain.Reservation{BookingID: "MNR1", ConfirmationNumber: "CONF-MNR1"}

	rr := f.do(t, http.MethodPost, "/api/v1/book",
		`{"venue_name":"Parisa","date":"2026-03-02","time":"19:00","party_size":2,"user_id":"u1"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	var data bookingData
	if err := json.Unmarshal(decodeEnvelope(t, rr).Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Booking.VenueName != "Parisa" || data.Booking.ConfirmationNumber != "CONF-MNR1" {
		t.Errorf("unexpected booking: %+v", data.Booking)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		wantMsg string
	}{
		{"invalid", fmt.Errorf("%w: party_size must be positive", domain.ErrInvalidRequest),
			http.StatusBadRequest, "party_size must be positive"},
		{"not found", fmt.Errorf("booking: %w", domain.ErrNotFound), http.StatusNotFound, domain.ErrNotFound.Error()},
		{"index", fmt.Errorf("query: %w", domain.ErrIndexUnavailable),
			http.StatusServiceUnavailable, domain.ErrIndexUnavailable.Error()},
		{"internal", errors.New("secret detail"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.res.err = tt.err
			rr := f.do(t, http.MethodPost, "/api/v1/book", `{"venue_name":"x"}`)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
			env := decodeEnvelope(t, rr)
			if env.Success || !strings.Contains(env.Message, tt.wantMsg) {
				t.Errorf("unexpected envelope: %+v", env)
			}
		})
	}
}

func TestUserBookings_EmptyList(t *testing.T) {
	f := newFixture()
	rr := f.do(t, http.MethodGet, "/api/v1/user/u9/bookings", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(string(decodeEnvelope(t, rr).Data), `"bookings":[]`) {
		t.Errorf("expected empty bookings array, got %s", rr.Body.String())
	}
}

func TestProfile_SaveThenGet(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/api/v1/user/u1/profile",
		`{"food_preferences":["Seafood"],"budget_range":"$$$","group_size":3}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = f.do(t, http.MethodGet, "/api/v1/user/u1/profile", "")
	var p domain.UserProfile
	if err := json.Unmarshal(decodeEnvelope(t, rr).Data, &p); err != nil {
		t.Fatal(err)
	}
	if p.UserID != "u1" || p.BudgetRange != domain.BudgetHigh || p.GroupSize != 3 || p.MinRating != 4.0 {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture()
	f.search.resp = searchuc.Response{TotalCount: 2, Query: "souq"}

	rr := f.do(t, http.MethodPost, "/api/v1/search", `{"query":"souq","category":"shopping"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Message != "Found 2 results" {
		t.Errorf("unexpected message %q", env.Message)
	}
}

func TestHealthCheck(t *testing.T) {
	f := newFixture()
	f.health.report = healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK, "index": healthuc.CheckMissing},
	}

	rr := f.do(t, http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "degraded" || body.Checks["index"] != "missing" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestStatusEndpoints(t *testing.T) {
	f := newFixture()
	f.health.index = healthuc.IndexReport{Status: healthuc.CheckOK, Name: "manara_venues", Documents: 120, Embedding: "e5"}
	f.health.completion = healthuc.ProviderReport{Status: healthuc.CheckError, Model: "Fanar"}

	var rag ragStatus
	if err := json.Unmarshal(decodeEnvelope(t, f.do(t, http.MethodGet, "/api/v1/rag/status", "")).Data, &rag); err != nil {
		t.Fatal(err)
	}
	if rag.Status != "healthy" || rag.VectorDBItems != 120 || rag.EmbeddingModel != "e5" {
		t.Errorf("unexpected rag status: %+v", rag)
	}

	var llm llmStatus
	if err := json.Unmarshal(decodeEnvelope(t, f.do(t, http.MethodGet, "/api/v1/llm/status", "")).Data, &llm); err != nil {
		t.Fatal(err)
	}
	if llm.Status != "fallback_mode" || llm.Model != "Fanar" || !llm.FallbackEnabled {
		t.Errorf("unexpected llm status: %+v", llm)
	}
}

func TestPanicRecovered(t *testing.T) {
	f := newFixture()
	f.orch.panicWith = "boom"

	rr := f.do(t, http.MethodPost, "/api/v1/chat", `{"message":"hello"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Success || env.Message != "internal error" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("expected Access-Control-Allow-Origin header")
	}
}
