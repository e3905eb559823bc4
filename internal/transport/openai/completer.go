package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/manara/internal/domain"
	"github.com/kailas-cloud/manara/internal/metrics"
)

// Compile-time checks.
var (
	_ domain.CompletionEngine = (*Completer)(nil)
	_ domain.HealthChecker    = (*Completer)(nil)
)

// Completer is a chat completion engine over an OpenAI-compatible API.
// Each Complete is a single attempt; the limiter only delays calls.
type Completer struct {
	client      *openai.Client
	model       string
	temperature float32
	user        string
	provider    string
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// CompleterOption customizes a Completer.
type CompleterOption func(*Completer)

// WithRateLimit caps outgoing calls at rps with the given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) CompleterOption {
	return func(c *Completer) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithDefaultTemperature sets the temperature used when a request leaves it at zero.
func WithDefaultTemperature(t float32) CompleterOption {
	return func(c *Completer) { c.temperature = t }
}

// NewCompleter creates a chat completion engine.
func NewCompleter(cfg *Config, opts ...CompleterOption) *Completer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Completer{
		client:   newClient(cfg),
		model:    cfg.Model,
		user:     cfg.User,
		provider: cfg.Provider,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Completer) Model() string { return c.model }

// Complete implements domain.CompletionEngine.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
			metrics.CompletionErrorsTotal.WithLabelValues(c.provider, c.model, "rate_limited").Inc()
			return "", fmt.Errorf("completion rate limiter: %v: %w", err, domain.ErrCompletionFailed)
		}
		metrics.CompletionRateLimitWait.Observe(time.Since(waitStart).Seconds())
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	msgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
		User:        c.user,
	})
	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, c.model, errorType(err)).Inc()
		c.logger.Warn("Completion request failed", zap.Duration("duration", duration), zap.Error(err))
		return "", parseAPIError(err, "completion", domain.ErrCompletionFailed)
	}

	metrics.CompletionRequestDuration.WithLabelValues(c.provider, c.model).Observe(duration.Seconds())
	if resp.Usage.PromptTokens > 0 {
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
	}
	if resp.Usage.CompletionTokens > 0 {
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, c.model, "completion").
			Add(float64(resp.Usage.CompletionTokens))
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "empty").Inc()
		return "", fmt.Errorf("completion returned no content: %w", domain.ErrEmptyCompletion)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels.
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
