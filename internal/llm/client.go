package llm

import (
	"context"
	"errors"
	"strings"
)

// Client is the single interface the rest of the codebase programs
// against. Provider SDK churn stays inside this package.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IsTransient reports whether a generation error is worth retrying:
// rate limits, quota exhaustion, timeouts, and temporary unavailability.
// Everything else (bad request, auth failure, unknown model) is treated
// as permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"429",
		"rate limit",
		"quota",
		"resource exhausted",
		"resource_exhausted",
		"timeout",
		"deadline exceeded",
		"overloaded",
		"503",
		"unavailable",
		"connection reset",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
