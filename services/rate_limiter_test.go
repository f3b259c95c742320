package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLimiter(start time.Time) (*RateLimiter, *time.Time) {
	current := start
	rl := NewRateLimiter()
	rl.now = func() time.Time { return current }
	return rl, &current
}

func TestRateLimiterAllowUpToLimit(t *testing.T) {
	rl, _ := newTestLimiter(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 60; i++ {
		require.True(t, rl.Allow("other"), "request %d should be allowed", i)
	}
	assert.False(t, rl.Allow("other"))
	assert.Equal(t, 0, rl.Remaining("other"))
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl, current := newTestLimiter(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 60; i++ {
		require.True(t, rl.Allow("other"))
	}
	assert.False(t, rl.Allow("other"))

	*current = current.Add(61 * time.Second)
	assert.True(t, rl.Allow("other"))
}

func TestRateLimiterPerServiceIsolation(t *testing.T) {
	rl, _ := newTestLimiter(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 60; i++ {
		require.True(t, rl.Allow("other"))
	}
	assert.False(t, rl.Allow("other"))
	assert.True(t, rl.Allow("usda"))
}

func TestRateLimiterKnownServiceLimits(t *testing.T) {
	rl, _ := newTestLimiter(time.Now())

	assert.Equal(t, 150, rl.Remaining("spoonacular"))
	assert.Equal(t, 1000, rl.Remaining("usda"))
	assert.Equal(t, 60, rl.Remaining("anything-else"))
}

func TestRateLimiterReset(t *testing.T) {
	rl, _ := newTestLimiter(time.Now())

	for i := 0; i < 60; i++ {
		rl.Allow("other")
	}
	assert.Equal(t, 0, rl.Remaining("other"))

	rl.Reset("other")
	assert.Equal(t, 60, rl.Remaining("other"))
}

func TestWaitForSlotRespectsContext(t *testing.T) {
	rl := NewRateLimiter()
	for i := 0; i < 60; i++ {
		rl.Allow("other")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rl.WaitForSlot(ctx, "other")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryPolicyDoesNotRetryPermanentErrors(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Factor: 1}

	calls := 0
	err := policy.Do(context.Background(), zap.NewNop(), "test", func() error {
		calls++
		return &upstreamError{service: "test", status: 404, body: "not found"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyRetriesTransientErrors(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Factor: 1}

	calls := 0
	err := policy.Do(context.Background(), zap.NewNop(), "test", func() error {
		calls++
		if calls < 3 {
			return &upstreamError{service: "test", status: 503, body: "unavailable"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyExhaustsRetries(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Factor: 1}

	calls := 0
	err := policy.Do(context.Background(), zap.NewNop(), "test", func() error {
		calls++
		return &upstreamError{service: "test", status: 429, body: "too many requests"}
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(&upstreamError{status: 429}))
	assert.True(t, isTransient(&upstreamError{status: 500}))
	assert.True(t, isTransient(&url.Error{Op: "Get", URL: "http://x", Err: errors.New("timeout")}))
	assert.False(t, isTransient(&upstreamError{status: 404}))
	assert.False(t, isTransient(errors.New("plain")))
}
