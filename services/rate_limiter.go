package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrRateLimited is returned when a caller waited the full bounded period
// for a rate-limit slot without one opening up.
var ErrRateLimited = errors.New("rate limit wait timed out")

const (
	rateLimitWindow  = time.Minute
	rateLimitMaxWait = 5 * time.Minute
	rateLimitMaxPoll = 10 * time.Second
)

// defaultRateLimits are requests per one-minute sliding window. The grocery
// source is kept conservative because of its external credit constraints;
// the government source has a much higher ceiling.
var defaultRateLimits = map[string]int{
	"spoonacular": 150,
	"usda":        1000,
	"default":     60,
}

// RateLimiter enforces a sliding one-minute window per external service.
type RateLimiter struct {
	mu       sync.Mutex
	limits   map[string]int
	requests map[string][]time.Time
	now      func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limits:   defaultRateLimits,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (rl *RateLimiter) limitFor(service string) int {
	if limit, ok := rl.limits[service]; ok {
		return limit
	}
	return rl.limits["default"]
}

// Allow records and permits a request if the window has capacity.
func (rl *RateLimiter) Allow(service string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.prune(service, now)

	if len(rl.requests[service]) >= rl.limitFor(service) {
		return false
	}
	rl.requests[service] = append(rl.requests[service], now)
	return true
}

// prune drops request timestamps that fell out of the window. Caller holds
// the lock.
func (rl *RateLimiter) prune(service string, now time.Time) {
	windowStart := now.Add(-rateLimitWindow)
	times := rl.requests[service]
	i := 0
	for i < len(times) && times[i].Before(windowStart) {
		i++
	}
	rl.requests[service] = times[i:]
}

// WaitForSlot blocks until a window slot is available, polling at short
// intervals, for at most rateLimitMaxWait.
func (rl *RateLimiter) WaitForSlot(ctx context.Context, service string) error {
	deadline := rl.now().Add(rateLimitMaxWait)

	for {
		if rl.Allow(service) {
			return nil
		}
		if !rl.now().Before(deadline) {
			return ErrRateLimited
		}

		wait := rl.nextSlotIn(service)
		if wait > rateLimitMaxPoll {
			wait = rateLimitMaxPoll
		}
		if wait < time.Second {
			wait = time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (rl *RateLimiter) nextSlotIn(service string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	times := rl.requests[service]
	if len(times) == 0 {
		return time.Second
	}
	return time.Until(times[0].Add(rateLimitWindow))
}

// Remaining reports how many requests are left in the current window.
func (rl *RateLimiter) Remaining(service string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.prune(service, rl.now())
	remaining := rl.limitFor(service) - len(rl.requests[service])
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears the window for a service.
func (rl *RateLimiter) Reset(service string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.requests, service)
}

// RetryPolicy retries transient failures with exponential backoff plus
// jitter. Non-transient errors abort immediately.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Factor     float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   time.Minute,
		Factor:     2.0,
	}
}

// Do runs fn, retrying transient errors up to MaxRetries times.
func (p RetryPolicy) Do(ctx context.Context, logger *zap.Logger, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}
		if attempt == p.MaxRetries {
			break
		}

		delay := p.BaseDelay
		for i := 0; i < attempt; i++ {
			delay = time.Duration(float64(delay) * p.Factor)
		}
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
		// Jitter avoids a thundering herd when several requests retry
		// the same upstream at once.
		delay += time.Duration(rand.Int63n(int64(delay)/10 + 1))

		logger.Warn("retrying after transient upstream failure",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(lastErr))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
