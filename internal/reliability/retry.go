package reliability

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy defines the interface for retry policies
type RetryPolicy interface {
	// ShouldRetry determines if another attempt should follow the given
	// completed attempt (1-based)
	ShouldRetry(attempt int, err error) (bool, time.Duration)
	// MaxAttempts returns the total number of attempts allowed
	MaxAttempts() int
	// NextDelay calculates the delay after the given attempt
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff implements exponential backoff with optional jitter.
// The delay after attempt k is min(BaseDelay * Multiplier^(k-1), MaxDelay),
// perturbed by up to ±10% when Jitter is enabled.
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Attempts   int
	Jitter     bool
}

// NewExponentialBackoff creates a new exponential backoff policy with jitter
// enabled
func NewExponentialBackoff(base, max time.Duration, multiplier float64, attempts int) *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:  base,
		MaxDelay:   max,
		Multiplier: multiplier,
		Attempts:   attempts,
		Jitter:     true,
	}
}

// DefaultBackoff returns the policy used when a component has no explicit
// configuration: 3 attempts, 1s base delay doubling up to 30s, with jitter.
func DefaultBackoff() *ExponentialBackoff {
	return NewExponentialBackoff(time.Second, 30*time.Second, 2.0, 3)
}

// ShouldRetry implements RetryPolicy
func (e *ExponentialBackoff) ShouldRetry(attempt int, err error) (bool, time.Duration) {
	if attempt >= e.Attempts {
		return false, 0
	}

	if !IsRetryableError(err) {
		return false, 0
	}

	return true, e.NextDelay(attempt)
}

// MaxAttempts implements RetryPolicy
func (e *ExponentialBackoff) MaxAttempts() int {
	return e.Attempts
}

// NextDelay implements RetryPolicy
func (e *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(e.BaseDelay) * math.Pow(e.Multiplier, float64(attempt-1))

	// Cap before jitter so the configured ceiling holds
	if delay > float64(e.MaxDelay) {
		delay = float64(e.MaxDelay)
	}

	if e.Jitter {
		delay += (rand.Float64()*2 - 1) * 0.1 * delay
		if delay < 0 {
			delay = 0
		}
	}

	return time.Duration(delay)
}

// FixedDelay implements a fixed delay retry policy
type FixedDelay struct {
	Delay    time.Duration
	Attempts int
}

// NewFixedDelay creates a new fixed delay policy
func NewFixedDelay(delay time.Duration, attempts int) *FixedDelay {
	return &FixedDelay{
		Delay:    delay,
		Attempts: attempts,
	}
}

// ShouldRetry implements RetryPolicy
func (f *FixedDelay) ShouldRetry(attempt int, err error) (bool, time.Duration) {
	if attempt >= f.Attempts {
		return false, 0
	}

	if !IsRetryableError(err) {
		return false, 0
	}

	return true, f.Delay
}

// MaxAttempts implements RetryPolicy
func (f *FixedDelay) MaxAttempts() int {
	return f.Attempts
}

// NextDelay implements RetryPolicy
func (f *FixedDelay) NextDelay(attempt int) time.Duration {
	return f.Delay
}

// Retry executes fn until it succeeds, the policy gives up, or the context
// is cancelled. The policy's attempt budget counts total invocations, so a
// policy with MaxAttempts 3 invokes fn at most 3 times. The final attempt's
// error is returned unchanged.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	var lastErr error

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		shouldRetry, delay := policy.ShouldRetry(attempt, err)
		if !shouldRetry {
			return lastErr
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
