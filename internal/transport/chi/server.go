// Package chi exposes the assistant over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/manara/internal/domain"
	"github.com/kailas-cloud/manara/internal/logger"
	"github.com/kailas-cloud/manara/internal/metrics"
	conversationuc "github.com/kailas-cloud/manara/internal/usecase/conversation"
	"github.com/kailas-cloud/manara/internal/usecase/dayplan"
	healthuc "github.com/kailas-cloud/manara/internal/usecase/health"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Services bundles the use cases served over HTTP.
type Services struct {
	Orchestrator  Orchestrator
	Conversations Conversations
	Recommender   Recommender
	Planner       Planner
	Reservations  Reservations
	Profiles      Profiles
	Searcher      Searcher
	Health        HealthReporter
}

// Server serves the /api/v1 endpoints.
type Server struct {
	svc           Services
	logger        *zap.Logger
	now           func() time.Time
	newID         func() string
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, l *zap.Logger) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	s := &Server{svc: svc, logger: l, now: time.Now, newID: uuid.NewString}
	s.errorHandlers = []errorHandler{
		s.sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest),
		s.sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest),
		s.sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		s.sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable),
		s.sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway),
		s.sentinelHandler(domain.ErrCompletionFailed, http.StatusBadGateway),
	}
	return s
}

// Routes builds the HTTP handler with middleware. corsOrigins may contain "*".
func (s *Server) Routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/chat", s.Converse)
	r.Post("/clear_chat", s.ClearChat)
	r.Get("/conversation_status", s.ConversationStatus)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", s.Chat)
		r.Post("/recommendations", s.Recommendations)
		r.Post("/plan", s.Plan)
		r.Post("/book", s.Book)
		r.Post("/search", s.Search)
		r.Get("/user/{id}/bookings", s.UserBookings)
		r.Get("/user/{id}/profile", s.GetProfile)
		r.Post("/user/{id}/profile", s.SaveProfile)
		r.Get("/rag/status", s.RAGStatus)
		r.Get("/llm/status", s.LLMStatus)
	})
	return r
}

// Chat handles POST /api/v1/chat. The orchestrator never fails, so neither does this.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeFailure(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.Context == "" {
		req.Context = defaultChatContext
	}

	profile := domain.DefaultProfile(req.UserID)
	if req.UserID != "" {
		p, err := s.svc.Profiles.Get(r.Context(), req.UserID)
		if err != nil {
			logger.FromContextOr(r.Context(), s.logger).Warn("Profile lookup failed, using default", zap.Error(err))
		} else {
			profile = p
		}
	}

	resp := s.svc.Orchestrator.Process(r.Context(), req.Message, profile, req.Context)
	s.writeSuccess(w, http.StatusOK, resp, fmt.Sprintf("Response generated (%s)", resp.Type))
}

// Converse handles POST /chat, the multi-turn assistant.
func (s *Server) Converse(w http.ResponseWriter, r *http.Request) {
	var req conversationRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeFailure(w, http.StatusBadRequest, "message is required")
		return
	}
	reply, err := s.svc.Conversations.Reply(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, reply, "")
}

// ClearChat handles POST /clear_chat. An empty body clears the default conversation.
func (s *Server) ClearChat(w http.ResponseWriter, r *http.Request) {
	var req clearChatRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		s.writeFailure(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.svc.Conversations.Clear(r.Context(), req.ConversationID); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	id := req.ConversationID
	if strings.TrimSpace(id) == "" {
		id = conversationuc.DefaultID
	}
	s.writeSuccess(w, http.StatusOK, clearChatData{ConversationID: id}, "Conversation history cleared")
}

// ConversationStatus handles GET /conversation_status?conversation_id=.
func (s *Server) ConversationStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Conversations.Status(r.Context(), r.URL.Query().Get("conversation_id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, st, "")
}

// Recommendations handles POST /api/v1/recommendations.
func (s *Server) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeFailure(w, http.StatusBadRequest, "query is required")
		return
	}
	profile, err := req.Preferences.toProfile(req.UserID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	set, _ := s.svc.Recommender.Generate(r.Context(), req.Query, profile)
	limit := req.Limit
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}
	if len(set.Recommendations) > limit {
		set.Recommendations = set.Recommendations[:limit]
	}
	s.writeSuccess(w, http.StatusOK, set, fmt.Sprintf("Found %d recommendations", len(set.Recommendations)))
}

// Plan handles POST /api/v1/plan. Cues parsed from the query override the request preferences.
func (s *Server) Plan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeFailure(w, http.StatusBadRequest, "query is required")
		return
	}
	profile, err := req.Preferences.toProfile(req.UserID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	parsed := dayplan.ParsePlanningQuery(req.Query)
	plan, _ := s.svc.Planner.Generate(r.Context(), req.Query, profile, &parsed)
	if req.Date != "" {
		plan.DayPlan.Date = req.Date
	}
	d := plan.DayPlan
	s.writeSuccess(w, http.StatusOK, plan, fmt.Sprintf("Day plan created: %d activities, %s, cost %s",
		len(d.Activities), d.TotalDuration, d.TotalEstimatedCost))
}

// Book handles POST /api/v1/book.
func (s *Server) Book(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.svc.Reservations.Reserve(r.Context(), req.toReserve())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeSuccess(w, http.StatusCreated, bookingData{Booking: res}, "Booking processed: "+res.ConfirmationNumber)
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.svc.Searcher.Search(r.Context(), req.toQuery())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, resp, fmt.Sprintf("Found %d results", resp.TotalCount))
}

// UserBookings handles GET /api/v1/user/{id}/bookings.
func (s *Server) UserBookings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	list, err := s.svc.Reservations.ListByUser(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Reservation{}
	}
	s.writeSuccess(w, http.StatusOK, bookingsData{UserID: userID, Bookings: list},
		fmt.Sprintf("Found %d bookings", len(list)))
}

// GetProfile handles GET /api/v1/user/{id}/profile.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profiles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, p, "")
}

// SaveProfile handles POST /api/v1/user/{id}/profile.
func (s *Server) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := req.toProfile(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	saved, err := s.svc.Profiles.Save(r.Context(), p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, saved, "Profile updated successfully")
}

// RAGStatus handles GET /api/v1/rag/status.
func (s *Server) RAGStatus(w http.ResponseWriter, r *http.Request) {
	rep := s.svc.Health.Index(r.Context())
	s.writeSuccess(w, http.StatusOK, ragStatus{
		Status:         statusWord(rep.Status),
		Index:          rep.Name,
		VectorDBItems:  rep.Documents,
		EmbeddingModel: rep.Embedding,
	}, "")
}

// LLMStatus handles GET /api/v1/llm/status. Every route has a rule-based fallback.
func (s *Server) LLMStatus(w http.ResponseWriter, r *http.Request) {
	rep := s.svc.Health.Completion(r.Context())
	status := statusWord(rep.Status)
	if rep.Status != healthuc.CheckOK {
		status = "fallback_mode"
	}
	s.writeSuccess(w, http.StatusOK, llmStatus{Status: status, Model: rep.Model, FallbackEnabled: true}, "")
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Timestamp: s.now().Format(time.RFC3339),
	})
}

func statusWord(c healthuc.CheckResult) string {
	if c == healthuc.CheckOK {
		return "healthy"
	}
	return string(c)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{
		Success:   true,
		Data:      data,
		Message:   message,
		RequestID: s.newID(),
		Timestamp: s.now().Format(time.RFC3339),
	})
}

func (s *Server) writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{
		Success:   false,
		Data:      map[string]any{},
		Message:   message,
		RequestID: s.newID(),
		Timestamp: s.now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Validation errors carry their detail; other sentinels render only their own text.
func (s *Server) sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if status == http.StatusBadRequest {
			msg = err.Error()
		}
		s.writeFailure(w, status, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	s.writeFailure(w, http.StatusInternalServerError, "internal error")
}
