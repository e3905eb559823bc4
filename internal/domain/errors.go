package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrCompletionFailed signals a completion provider failure (network, non-2xx, timeout).
	ErrCompletionFailed = errors.New("completion provider error")
	// ErrEmptyCompletion signals a successful call that returned no text.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrMalformedOutput signals a completion that is not parseable JSON.
	ErrMalformedOutput = errors.New("malformed completion output")
	// ErrInvalidSchema signals parseable JSON that misses required fields.
	ErrInvalidSchema = errors.New("invalid output schema")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexUnavailable signals a venue index failure.
	ErrIndexUnavailable = errors.New("venue index unavailable")
)
