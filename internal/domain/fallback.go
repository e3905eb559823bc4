package domain

import "errors"

// FallbackReason records why a generation step left the LLM path.
// The user-facing behavior is identical for every reason.
type FallbackReason string

// Fallback reasons. FallbackNone means the LLM output was accepted.
const (
	FallbackNone              FallbackReason = ""
	FallbackCompletionFailure FallbackReason = "completion_failure"
	FallbackMalformedOutput   FallbackReason = "malformed_output"
	FallbackInvalidSchema     FallbackReason = "invalid_schema"
	FallbackEmergency         FallbackReason = "emergency"
	FallbackDisabled          FallbackReason = "llm_disabled"
)

// ReasonFor classifies a completion-and-parse error.
func ReasonFor(err error) FallbackReason {
	switch {
	case err == nil:
		return FallbackNone
	case errors.Is(err, ErrInvalidSchema):
		return FallbackInvalidSchema
	case errors.Is(err, ErrMalformedOutput):
		return FallbackMalformedOutput
	default:
		return FallbackCompletionFailure
	}
}

// String returns a metrics-friendly label.
func (r FallbackReason) String() string {
	if r == FallbackNone {
		return "none"
	}
	return string(r)
}
