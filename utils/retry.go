package utils

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/lib/pq"
)

// Postgres error classes that are worth retrying: connection failures,
// insufficient resources, operator intervention (e.g. failover).
var retryablePqClasses = map[string]bool{
	"08": true,
	"53": true,
	"57": true,
}

// IsRetryable reports whether an operation that failed with err may succeed
// on a later attempt. Validation and permission failures never qualify.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return retryablePqClasses[string(pqErr.Code.Class())]
	}

	return false
}

// RetryWithBackoff retries fn with exponential backoff while it returns a
// retryable error. Non-retryable errors abort immediately.
func RetryWithBackoff(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	var err error
	delay := base

	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return err
}
