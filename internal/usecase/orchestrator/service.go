// Package orchestrator routes a user message to the matching synthesizer.
package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/manara/internal/domain"
	"github.com/kailas-cloud/manara/internal/logger"
	"github.com/kailas-cloud/manara/internal/metrics"
	"github.com/kailas-cloud/manara/internal/usecase/completion"
	"github.com/kailas-cloud/manara/internal/usecase/dayplan"
)

// User-facing fixed messages.
const (
	ErrorMessage        = "I'm sorry, I couldn't process your request right now. Please try again."
	ChatFallbackMessage = "I'm here to help you explore Qatar! What would you like to know?"
)

const (
	chatRoute       = "chat"
	chatResults     = 3
	chatContextUsed = 2
	chatSnippet     = 100
	chatMaxTokens   = 500
)

// Service implements process_user_request. Stateless and safe for concurrent use.
type Service struct {
	classifier  IntentClassifier
	recommender Recommender
	planner     Planner
	booker      Booker
	retriever   Retriever
	engine      domain.CompletionEngine
	chatTimeout time.Duration
	logger      *zap.Logger
}

// New creates the orchestrator.
func New(
	classifier IntentClassifier, recommender Recommender, planner Planner, booker Booker,
	retriever Retriever, engine domain.CompletionEngine, chatTimeout time.Duration, l *zap.Logger,
) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		classifier: classifier, recommender: recommender, planner: planner, booker: booker,
		retriever: retriever, engine: engine, chatTimeout: chatTimeout, logger: l,
	}
}

type outcome struct {
	intent domain.Intent
	reason domain.FallbackReason
}

// Process classifies the message and returns a tagged response. It never panics and never fails;
// unexpected faults become a response of type "error".
func (s *Service) Process(ctx context.Context, input string, profile domain.UserProfile, contextLabel string) (resp domain.Response) {
	start := time.Now()
	log := logger.FromContextOr(ctx, s.logger)
	var out outcome

	defer func() {
		if r := recover(); r != nil {
			log.Error("Request processing panicked",
				zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			resp = domain.Response{
				Type: domain.ResponseError,
				Data: domain.ErrorReply{Message: ErrorMessage, Error: fmt.Sprint(r)},
			}
		}
		typ := string(resp.Type)
		metrics.OrchestratorRequestsTotal.WithLabelValues(typ).Inc()
		metrics.OrchestratorDuration.WithLabelValues(typ).Observe(time.Since(start).Seconds())
		log.Info("User request processed",
			zap.String("intent", string(out.intent)),
			zap.String("type", typ),
			zap.String("fallback_reason", out.reason.String()),
			zap.String("context", contextLabel),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	profile = profile.Normalize()
	out.intent = s.classifier.Classify(ctx, input, profile)
	resp, out.reason = s.route(ctx, out.intent, input, profile)
	return resp
}

func (s *Service) route(
	ctx context.Context, intent domain.Intent, input string, profile domain.UserProfile,
) (domain.Response, domain.FallbackReason) {
	switch intent {
	case domain.IntentRecommendation:
		set, reason := s.recommender.Generate(ctx, input, profile)
		return domain.Response{Type: domain.ResponseRecommendations, Data: set}, reason
	case domain.IntentPlanning:
		parsed := dayplan.ParsePlanningQuery(input)
		plan, reason := s.planner.Generate(ctx, input, profile, &parsed)
		return domain.Response{Type: domain.ResponseDayPlan, Data: plan}, reason
	case domain.IntentBooking:
		res, reason := s.booker.Generate(ctx, input, profile)
		return domain.Response{Type: domain.ResponseBooking, Data: res}, reason
	default:
		reply, reason := s.chat(ctx, input, profile)
		return domain.Response{Type: domain.ResponseChat, Data: reply}, reason
	}
}

func (s *Service) chat(ctx context.Context, input string, profile domain.UserProfile) (domain.ChatReply, domain.FallbackReason) {
	venues := s.retriever.Retrieve(ctx, input, profile, chatResults)
	used := len(venues) > 0

	msg, err := completion.Text(ctx, s.engine, domain.UserPrompt(ChatPrompt(input, venues), chatMaxTokens), s.chatTimeout)
	if err != nil {
		metrics.FallbacksTotal.WithLabelValues(chatRoute, domain.FallbackCompletionFailure.String()).Inc()
		logger.FromContextOr(ctx, s.logger).Warn("Chat completion failed", zap.Error(err))
		return domain.ChatReply{Message: ChatFallbackMessage, ContextUsed: used}, domain.FallbackCompletionFailure
	}
	return domain.ChatReply{Message: strings.TrimSpace(msg), ContextUsed: used}, domain.FallbackNone
}

// ChatPrompt renders the conversational prompt with up to two context snippets.
func ChatPrompt(input string, venues []domain.VenueRecord) string {
	lines := make([]string, 0, chatContextUsed)
	for i, v := range venues {
		if i == chatContextUsed {
			break
		}
		lines = append(lines, fmt.Sprintf("- %s: %s...", v.Metadata.Name, domain.Truncate(v.Document, chatSnippet)))
	}
	return fmt.Sprintf(`You are a friendly Qatar tourism assistant. Answer the user's question using your knowledge and the context provided.

Context from Qatar database:
%s

User question: "%s"

Provide a helpful, conversational response about Qatar tourism.`, strings.Join(lines, "\n"), input)
}
