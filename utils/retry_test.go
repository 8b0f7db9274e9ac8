package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("validation failed")))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(fmt.Errorf("query: %w", context.DeadlineExceeded)))

	// Connection failures retry, constraint violations do not.
	assert.True(t, IsRetryable(&pq.Error{Code: "08006"}))
	assert.True(t, IsRetryable(&pq.Error{Code: "53300"}))
	assert.True(t, IsRetryable(&pq.Error{Code: "57P01"}))
	assert.False(t, IsRetryable(&pq.Error{Code: "23505"}))
}

func TestRetryWithBackoffStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("bad request")

	err := RetryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoffRetriesThenSucceeds(t *testing.T) {
	calls := 0

	err := RetryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return context.DeadlineExceeded
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffExhaustsAttempts(t *testing.T) {
	calls := 0

	err := RetryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return context.DeadlineExceeded
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, 5, time.Minute, func() error {
		return context.DeadlineExceeded
	})

	assert.ErrorIs(t, err, context.Canceled)
}
