package cloudbeds

import (
	"fmt"
	"time"
)

// RemoteError is a terminal failure talking to the remote API: network
// failure, non-2xx response, or rate limiting that outlasted the retry
// budget.
type RemoteError struct {
	Operation string
	Status    int
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: remote API returned %d: %s", e.Operation, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// RateLimitError signals HTTP 429 from the remote API. RetryAfter is zero
// when the response carried no hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}
