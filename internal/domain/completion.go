package domain

import "context"

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role/content turn of a chat completion.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest is a chat completion call.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// UserPrompt builds a single-turn request.
func UserPrompt(prompt string, maxTokens int) CompletionRequest {
	return CompletionRequest{
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens: maxTokens,
	}
}

// CompletionEngine generates text for a list of turns.
// Failures and timeouts are returned as errors, never as an empty string.
type CompletionEngine interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
