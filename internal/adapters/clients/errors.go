// Package clients provides the instrumented HTTP client used to reach the
// remote quote collection.
package clients

import (
	"errors"
	"fmt"
)

// Client errors are infrastructure failures. The ACL layer translates them
// into domain errors.
var (
	// ErrCircuitOpen is returned while the circuit breaker rejects requests.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is spent.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError records a 5xx response that exhausted the retry budget.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d", e.StatusCode)
}
