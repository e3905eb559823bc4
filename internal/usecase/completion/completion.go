// Package completion runs a single bounded LLM call and decodes its reply into a validated artifact.
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/manara/internal/domain"
)

// DefaultTimeout bounds a completion call when the caller passes zero.
const DefaultTimeout = 30 * time.Second

// Artifact is a decoded LLM output that knows its own required keys and fields.
type Artifact interface {
	RequireKeys(raw []byte) error
	Validate() error
}

// Text performs one completion bounded by timeout. Empty replies are errors.
func Text(
	ctx context.Context, engine domain.CompletionEngine, req domain.CompletionRequest, timeout time.Duration,
) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := engine.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("complete: %w", domain.ErrEmptyCompletion)
	}
	return out, nil
}

// Structured performs one completion and strictly decodes it as T.
// On failure the zero T is returned together with the fallback reason and the cause.
func Structured[T Artifact](
	ctx context.Context, engine domain.CompletionEngine, req domain.CompletionRequest, timeout time.Duration,
) (T, domain.FallbackReason, error) {
	var zero T

	raw, err := Text(ctx, engine, req, timeout)
	if err != nil {
		return zero, domain.FallbackCompletionFailure, err
	}

	out, err := Decode[T](raw)
	if err != nil {
		return zero, domain.ReasonFor(err), err
	}
	return out, domain.FallbackNone, nil
}

// Decode parses raw as a JSON T (code fences tolerated) and validates it.
// Keys missing from the reply are a schema failure, not zero values.
func Decode[T Artifact](raw string) (T, error) {
	var out T
	body := []byte(StripCodeFence(raw))
	if err := json.Unmarshal(body, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	if err := out.RequireKeys(body); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", domain.ErrInvalidSchema, err)
	}
	if err := out.Validate(); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", domain.ErrInvalidSchema, err)
	}
	return out, nil
}

// StripCodeFence removes a surrounding ``` or ```json fence and outer whitespace.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop an info string such as "json".
		if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
