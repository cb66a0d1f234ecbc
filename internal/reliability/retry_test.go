package reliability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff(t *testing.T) {
	t.Run("creates with correct defaults", func(t *testing.T) {
		eb := NewExponentialBackoff(
			100*time.Millisecond,
			5*time.Second,
			2.0,
			3,
		)

		assert.Equal(t, 100*time.Millisecond, eb.BaseDelay)
		assert.Equal(t, 5*time.Second, eb.MaxDelay)
		assert.Equal(t, 2.0, eb.Multiplier)
		assert.Equal(t, 3, eb.Attempts)
		assert.True(t, eb.Jitter)
	})

	t.Run("DefaultBackoff matches component defaults", func(t *testing.T) {
		eb := DefaultBackoff()

		assert.Equal(t, time.Second, eb.BaseDelay)
		assert.Equal(t, 30*time.Second, eb.MaxDelay)
		assert.Equal(t, 2.0, eb.Multiplier)
		assert.Equal(t, 3, eb.Attempts)
		assert.True(t, eb.Jitter)
	})

	t.Run("ShouldRetry counts total attempts", func(t *testing.T) {
		eb := NewExponentialBackoff(time.Millisecond, time.Second, 2.0, 3)

		// Attempts 1 and 2 allow another try
		for attempt := 1; attempt < 3; attempt++ {
			shouldRetry, delay := eb.ShouldRetry(attempt, errors.New("test"))
			assert.True(t, shouldRetry)
			assert.GreaterOrEqual(t, delay, time.Duration(0))
		}

		// The third (final) attempt does not
		shouldRetry, delay := eb.ShouldRetry(3, errors.New("test"))
		assert.False(t, shouldRetry)
		assert.Equal(t, time.Duration(0), delay)
	})

	t.Run("NextDelay doubles per attempt", func(t *testing.T) {
		eb := NewExponentialBackoff(100*time.Millisecond, 10*time.Second, 2.0, 5)
		eb.Jitter = false

		tests := []struct {
			attempt  int
			expected time.Duration
		}{
			{1, 100 * time.Millisecond},
			{2, 200 * time.Millisecond},
			{3, 400 * time.Millisecond},
			{4, 800 * time.Millisecond},
			{5, 1600 * time.Millisecond},
			{10, 10 * time.Second}, // Should cap at max
		}

		for _, tt := range tests {
			delay := eb.NextDelay(tt.attempt)
			assert.Equal(t, tt.expected, delay)
		}
	})

	t.Run("delay never exceeds MaxDelay", func(t *testing.T) {
		eb := NewExponentialBackoff(time.Second, 30*time.Second, 2.0, 50)
		eb.Jitter = false

		for attempt := 1; attempt <= 50; attempt++ {
			assert.LessOrEqual(t, eb.NextDelay(attempt), 30*time.Second)
		}
	})

	t.Run("jitter stays within ten percent", func(t *testing.T) {
		eb := NewExponentialBackoff(1*time.Second, 10*time.Second, 2.0, 5)
		eb.Jitter = true

		varied := false
		for i := 0; i < 50; i++ {
			delay := eb.NextDelay(1)
			assert.GreaterOrEqual(t, delay, 900*time.Millisecond)
			assert.LessOrEqual(t, delay, 1100*time.Millisecond)
			if delay != time.Second {
				varied = true
			}
		}
		assert.True(t, varied, "jitter should perturb the delay")
	})

	t.Run("does not retry non-retryable errors", func(t *testing.T) {
		eb := NewExponentialBackoff(time.Millisecond, time.Second, 2.0, 5)

		shouldRetry, _ := eb.ShouldRetry(1, ErrNonRetryable)
		assert.False(t, shouldRetry)
	})
}

func TestFixedDelay(t *testing.T) {
	t.Run("returns constant delay", func(t *testing.T) {
		fd := NewFixedDelay(250*time.Millisecond, 4)

		assert.Equal(t, 250*time.Millisecond, fd.NextDelay(1))
		assert.Equal(t, 250*time.Millisecond, fd.NextDelay(3))
		assert.Equal(t, 4, fd.MaxAttempts())
	})

	t.Run("stops at attempt budget", func(t *testing.T) {
		fd := NewFixedDelay(time.Millisecond, 2)

		shouldRetry, _ := fd.ShouldRetry(1, errors.New("test"))
		assert.True(t, shouldRetry)

		shouldRetry, _ = fd.ShouldRetry(2, errors.New("test"))
		assert.False(t, shouldRetry)
	})
}

func TestRetry(t *testing.T) {
	t.Run("returns nil on first success", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), NewFixedDelay(time.Millisecond, 3), func() error {
			calls++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("invokes an always-failing operation exactly MaxAttempts times", func(t *testing.T) {
		boom := errors.New("persistent failure")
		calls := 0

		err := Retry(context.Background(), NewFixedDelay(time.Millisecond, 3), func() error {
			calls++
			return boom
		})

		assert.Equal(t, 3, calls)
		assert.Equal(t, boom, err)
	})

	t.Run("returns the last error unchanged", func(t *testing.T) {
		attempts := 0
		errs := []error{
			errors.New("first"),
			errors.New("second"),
			errors.New("third"),
		}

		err := Retry(context.Background(), NewFixedDelay(time.Millisecond, 3), func() error {
			err := errs[attempts]
			attempts++
			return err
		})

		assert.Equal(t, errs[2], err)
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), NewFixedDelay(time.Millisecond, 5), func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops early on non-retryable error", func(t *testing.T) {
		calls := 0
		tagged := taggedError{retryable: false}

		err := Retry(context.Background(), NewFixedDelay(time.Millisecond, 5), func() error {
			calls++
			return tagged
		})

		assert.Equal(t, 1, calls)
		assert.Equal(t, tagged, err)
	})

	t.Run("respects context cancellation during delay", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		calls := 0
		done := make(chan error, 1)
		go func() {
			done <- Retry(ctx, NewFixedDelay(time.Minute, 3), func() error {
				calls++
				return errors.New("failing")
			})
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		err := <-done
		assert.Equal(t, context.Canceled, err)
		assert.Equal(t, 1, calls)
	})
}

func TestIsRetryableError(t *testing.T) {
	t.Run("nil is not retryable", func(t *testing.T) {
		assert.False(t, IsRetryableError(nil))
	})

	t.Run("sentinels are not retryable", func(t *testing.T) {
		assert.False(t, IsRetryableError(ErrNonRetryable))
		assert.False(t, IsRetryableError(ErrMaxAttemptsExceeded))
	})

	t.Run("tagged errors carry their own verdict", func(t *testing.T) {
		assert.True(t, IsRetryableError(taggedError{retryable: true}))
		assert.False(t, IsRetryableError(taggedError{retryable: false}))
	})

	t.Run("open breaker before next attempt is not retryable", func(t *testing.T) {
		cbErr := &CircuitBreakerError{
			State:       StateOpen,
			NextAttempt: time.Now().Add(time.Minute),
		}
		assert.False(t, IsRetryableError(cbErr))
	})

	t.Run("open breaker past next attempt is retryable", func(t *testing.T) {
		cbErr := &CircuitBreakerError{
			State:       StateOpen,
			NextAttempt: time.Now().Add(-time.Second),
		}
		assert.True(t, IsRetryableError(cbErr))
	})

	t.Run("unknown errors default to retryable", func(t *testing.T) {
		assert.True(t, IsRetryableError(errors.New("anything")))
	})
}

type taggedError struct {
	retryable bool
}

func (e taggedError) Error() string {
	return "tagged error"
}

func (e taggedError) IsRetryable() bool {
	return e.retryable
}
