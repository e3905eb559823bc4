// Package conversation runs the multi-turn Qatar assistant chat with stored per-conversation history.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/manara/internal/domain"
	"github.com/kailas-cloud/manara/internal/logger"
	"github.com/kailas-cloud/manara/internal/usecase/completion"
)

// Conversation defaults.
const (
	DefaultID       = "default"
	DefaultMaxTurns = 20
	MaxIDLength     = 128
	maxTokens       = 800
)

// SystemPrompt opens every conversation. It is never stored.
const SystemPrompt = `You are a helpful AI assistant specialized in Qatar tourism, culture, and local information.
You help visitors and residents discover the best of Qatar including:
- Restaurants and local cuisine
- Cultural attractions and museums
- Shopping destinations
- Family-friendly activities
- Budget-friendly options
- Traditional experiences
- Transportation guidance
- Weather and seasonal information

Provide helpful, accurate, and engaging responses about Qatar.
Use emojis appropriately and format responses in a clear, readable way.
Always be respectful of Qatari culture and Islamic values.
If you don't know something specific about Qatar, suggest reliable local sources or official websites.`

// Repository stores the user and assistant turns of a conversation, oldest first.
// Implementations keep at most their configured number of most recent turns.
// Load returns an empty history for unknown conversations.
type Repository interface {
	Load(ctx context.Context, id string) ([]domain.Message, error)
	Append(ctx context.Context, id string, turns ...domain.Message) error
	Clear(ctx context.Context, id string) error
}

// Reply is one assistant answer.
type Reply struct {
	ConversationID string `json:"conversation_id"`
	Response       string `json:"response"`
}

// Status summarizes a stored conversation.
type Status struct {
	ConversationID string `json:"conversation_id"`
	MessageCount   int    `json:"message_count"`
	HasHistory     bool   `json:"has_history"`
}

// Service answers chat messages in the context of their conversation.
type Service struct {
	engine  domain.CompletionEngine
	repo    Repository
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a conversation service. timeout of zero uses the completion default.
func New(engine domain.CompletionEngine, repo Repository, timeout time.Duration, l *zap.Logger) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{engine: engine, repo: repo, timeout: timeout, logger: l}
}

// Reply sends the system prompt, the stored history and the new message to the engine.
// Both turns are stored only when the engine answers; a failed call leaves the history unchanged.
func (s *Service) Reply(ctx context.Context, conversationID, message string) (Reply, error) {
	id, err := normalizeID(conversationID)
	if err != nil {
		return Reply{}, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, fmt.Errorf("%w: message is required", domain.ErrInvalidRequest)
	}

	history, err := s.repo.Load(ctx, id)
	if err != nil {
		return Reply{}, fmt.Errorf("load conversation %s: %w", id, err)
	}

	user := domain.Message{Role: domain.RoleUser, Content: message}
	msgs := make([]domain.Message, 0, len(history)+2)
	msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: SystemPrompt})
	msgs = append(msgs, history...)
	msgs = append(msgs, user)

	out, err := completion.Text(ctx, s.engine, domain.CompletionRequest{Messages: msgs, MaxTokens: maxTokens}, s.timeout)
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Conversation reply failed",
			zap.String("conversation_id", id), zap.Int("history", len(history)), zap.Error(err))
		if !errors.Is(err, domain.ErrCompletionFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrCompletionFailed, err)
		}
		return Reply{}, fmt.Errorf("conversation %s: %w", id, err)
	}

	out = strings.TrimSpace(out)
	if err := s.repo.Append(ctx, id, user, domain.Message{Role: domain.RoleAssistant, Content: out}); err != nil {
		return Reply{}, fmt.Errorf("store conversation %s: %w", id, err)
	}
	return Reply{ConversationID: id, Response: out}, nil
}

// Clear forgets a conversation. Clearing an unknown conversation is not an error.
func (s *Service) Clear(ctx context.Context, conversationID string) error {
	id, err := normalizeID(conversationID)
	if err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, id); err != nil {
		return fmt.Errorf("clear conversation %s: %w", id, err)
	}
	return nil
}

// Status reports how many turns are stored, not counting the system prompt.
func (s *Service) Status(ctx context.Context, conversationID string) (Status, error) {
	id, err := normalizeID(conversationID)
	if err != nil {
		return Status{}, err
	}
	history, err := s.repo.Load(ctx, id)
	if err != nil {
		return Status{}, fmt.Errorf("load conversation %s: %w", id, err)
	}
	return Status{ConversationID: id, MessageCount: len(history), HasHistory: len(history) > 0}, nil
}

func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultID, nil
	}
	if len(id) > MaxIDLength {
		return "", fmt.Errorf("%w: conversation_id longer than %d bytes", domain.ErrInvalidRequest, MaxIDLength)
	}
	return id, nil
}
