// Package intent classifies a user message into one of the four request kinds.
package intent

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

const maxTokens = 10

// Label values for intent_classifications_total{source}.
const (
	SourceLLM     = "llm"
	SourceKeyword = "keyword"
)

// Classifier asks the completion engine for an intent and falls back to keyword rules.
type Classifier struct {
	engine  domain.CompletionEngine
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a classifier. timeout <= 0 uses completion.DefaultTimeout.
func New(engine domain.CompletionEngine, timeout time.Duration, l *zap.Logger) *Classifier {
	if l == nil {
		l = zap.NewNop()
	}
	return &Classifier{engine: engine, timeout: timeout, logger: l}
}

// Classify never fails: any engine problem or unknown token resolves through FromKeywords.
func (c *Classifier) Classify(ctx context.Context, input string, profile domain.UserProfile) domain.Intent {
	got, source := c.classify(ctx, input, profile)
	metrics.IntentClassificationsTotal.WithLabelValues(string(got), source).Inc()
	return got
}

func (c *Classifier) classify(ctx context.Context, input string, profile domain.UserProfile) (domain.Intent, string) {
	log := logger.FromContextOr(ctx, c.logger)

	raw, err := completion.Text(ctx, c.engine, domain.UserPrompt(Prompt(input, profile), maxTokens), c.timeout)
	if err != nil {
		log.Warn("Intent classification failed, using keyword rules", zap.Error(err))
		return FromKeywords(input), SourceKeyword
	}

	if got, ok := domain.ParseIntent(strings.ToLower(strings.TrimSpace(raw))); ok {
		return got, SourceLLM
	}
	log.Info("Unrecognized intent token, using keyword rules", zap.String("reply", raw))
	return FromKeywords(input), SourceKeyword
}

type keywordRule struct {
	intent   domain.Intent
	keywords []string
}

// Rules are evaluated in order; the first rule with a matching keyword wins.
var keywordRules = []keywordRule{
	{domain.IntentRecommendation, []string{"recommend", "suggest", "show me", "find me"}},
	{domain.IntentPlanning, []string{"plan", "itinerary", "day", "schedule"}},
	{domain.IntentBooking, []string{"book", "reserve", "table", "ticket"}},
}

// FromKeywords is the deterministic fallback classifier.
func FromKeywords(input string) domain.Intent {
	lower := strings.ToLower(input)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return domain.IntentChat
}

// Prompt renders the single-turn classification prompt.
func Prompt(input string, p domain.UserProfile) string {
	return fmt.Sprintf(`You are an AI assistant for a Qatar tourism app. Classify the user's request into one of these categories:

1. "recommendation" - User wants suggestions for restaurants, attractions, cafes, or activities
2. "planning" - User wants to plan a day trip, itinerary, or schedule
3. "booking" - User wants to make reservations, buy tickets, or order something
4. "chat" - General questions about Qatar, conversation, or information requests

Examples:
- "Show me good restaurants" → recommendation
- "Plan my day in Doha" → planning
- "Book a table for tonight" → booking
- "What's the weather like?" → chat

User input: "%s"
User preferences: Food - %s, Budget - %s

Respond with ONLY the category name (recommendation/planning/booking/chat).`,
		input, strings.Join(p.FoodPreferences, ", "), p.BudgetRange)
}
