package api

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Default backoff schedule. The base and cap mirror the original SDK's
// 0.5s doubling schedule with a 10s ceiling.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 500 * time.Millisecond
	DefaultMaxDelay   = 10 * time.Second
	DefaultMultiplier = 2.0
	DefaultJitter     = 0.5
)

// RetryConfig configures retry behavior for failed requests.
type RetryConfig struct {
	// MaxRetries is the retry budget: the number of additional attempts
	// after the first. Zero disables retries entirely.
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the computed delay.
	MaxDelay time.Duration
	// Multiplier is the factor applied per attempt.
	Multiplier float64
	// Jitter is the randomization fraction (0.0 to 1.0) applied to
	// delays to desynchronize concurrent clients.
	Jitter float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
		Multiplier: DefaultMultiplier,
		Jitter:     DefaultJitter,
	}
}

// ShouldRetry reports whether another attempt may follow the given
// failure. attempt is 0-based, so the loop performs at most
// MaxRetries+1 attempts in total.
func (r *RetryConfig) ShouldRetry(err *RequestError, attempt int) bool {
	if attempt >= r.MaxRetries {
		return false
	}
	return err.Retryable()
}

// Delay computes the exponential backoff delay for the given 0-based
// attempt, with jitter and the MaxDelay cap applied.
func (r *RetryConfig) Delay(attempt int) time.Duration {
	delay := float64(r.BaseDelay) * math.Pow(r.Multiplier, float64(attempt))
	if delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}

	if r.Jitter > 0 {
		jitterAmount := delay * r.Jitter
		delay = delay - jitterAmount + (rand.Float64() * 2 * jitterAmount)
	}

	return time.Duration(delay)
}

// DelayFor computes the delay before the next attempt. A positive
// rate-limit hint from the server is authoritative and overrides the
// exponential schedule; a hint of zero falls through to it.
func (r *RetryConfig) DelayFor(err *RequestError, attempt int) time.Duration {
	if err != nil && err.Kind == KindRateLimit && err.RetryAfter > 0 {
		return err.RetryAfter
	}
	return r.Delay(attempt)
}

// Wait sleeps for the given delay or until the context is canceled.
func (r *RetryConfig) Wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
