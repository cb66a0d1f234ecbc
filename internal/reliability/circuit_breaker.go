package reliability

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// StateChangeListener receives circuit breaker state change notifications
type StateChangeListener interface {
	OnStateChange(from, to State, reason string)
}

// CircuitBreaker implements the circuit breaker pattern. The breaker opens
// after failureThreshold consecutive failures, fast-fails until the reset
// timeout elapses, then lets exactly one probe through. A successful probe
// closes the breaker and clears the failure count; a failed probe reopens it.
type CircuitBreaker struct {
	mu              sync.Mutex
	state           State
	failures        int
	lastFailureTime time.Time
	nextAttempt     time.Time
	probing         bool
	totalRequests   int64
	totalFailures   int64
	totalSuccesses  int64

	// Configuration
	failureThreshold int
	resetTimeout     time.Duration
	name             string

	// Listeners
	listeners []StateChangeListener
}

// CircuitBreakerOption configures the circuit breaker
type CircuitBreakerOption func(*CircuitBreaker)

// WithFailureThreshold sets the consecutive-failure count that opens the breaker
func WithFailureThreshold(threshold int) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.failureThreshold = threshold
	}
}

// WithResetTimeout sets how long the breaker stays open before allowing a probe
func WithResetTimeout(timeout time.Duration) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.resetTimeout = timeout
	}
}

// WithName sets the circuit breaker name for identification
func WithName(name string) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.name = name
	}
}

// WithStateChangeListener registers a state change listener at construction
func WithStateChangeListener(listener StateChangeListener) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.listeners = append(cb.listeners, listener)
	}
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(options ...CircuitBreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: 5,
		resetTimeout:     30 * time.Second,
		name:             "default",
		listeners:        make([]StateChangeListener, 0),
	}

	for _, opt := range options {
		opt(cb)
	}

	return cb
}

// Execute runs a function with circuit breaker protection. The function's
// own error is always returned unchanged; the breaker only decides whether
// the function runs at all.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	cb.mu.Lock()
	cb.totalRequests++
	cb.mu.Unlock()

	wasProbe, err := cb.canExecute()
	if err != nil {
		return err
	}

	// Check context before execution
	select {
	case <-ctx.Done():
		if wasProbe {
			cb.releaseProbe()
		}
		return ctx.Err()
	default:
	}

	err = fn()
	cb.recordResult(err)
	return err
}

// GetState returns the current state
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// GetStats returns the current failure count, last failure time and the
// earliest time the next probe will be allowed
func (cb *CircuitBreaker) GetStats() (failures int, lastFailure, nextAttempt time.Time) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures, cb.lastFailureTime, cb.nextAttempt
}

// Reset forces the breaker back to closed and clears counters
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failures = 0
	cb.probing = false
	cb.nextAttempt = time.Time{}
}

// canExecute checks if execution is allowed, transitioning open -> half-open
// when the reset timeout has elapsed. It reports whether this call holds the
// single half-open probe slot.
func (cb *CircuitBreaker) canExecute() (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return false, nil

	case StateOpen:
		if time.Now().Before(cb.nextAttempt) {
			return false, &CircuitBreakerError{
				State:            cb.state,
				Op:               cb.name,
				Failures:         cb.failures,
				FailureThreshold: cb.failureThreshold,
				LastFailure:      cb.lastFailureTime,
				NextAttempt:      cb.nextAttempt,
			}
		}
		oldState := cb.state
		cb.state = StateHalfOpen
		cb.probing = true
		cb.notifyStateChange(oldState, cb.state, "reset timeout expired")
		return true, nil

	case StateHalfOpen:
		if cb.probing {
			return false, &CircuitBreakerError{
				State:            cb.state,
				Op:               cb.name,
				Failures:         cb.failures,
				FailureThreshold: cb.failureThreshold,
				LastFailure:      cb.lastFailureTime,
				NextAttempt:      cb.nextAttempt,
			}
		}
		cb.probing = true
		return true, nil

	default:
		return false, ErrUnknownState
	}
}

// releaseProbe frees the half-open probe slot without recording a result
func (cb *CircuitBreaker) releaseProbe() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probing = false
}

// recordResult records the result of an execution
func (cb *CircuitBreaker) recordResult(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.totalFailures++
		cb.lastFailureTime = time.Now()
		oldState := cb.state

		switch cb.state {
		case StateClosed:
			if cb.failures >= cb.failureThreshold {
				cb.state = StateOpen
				cb.nextAttempt = time.Now().Add(cb.resetTimeout)
				cb.notifyStateChange(oldState, cb.state,
					fmt.Sprintf("failure threshold reached (%d/%d)", cb.failures, cb.failureThreshold))
			}

		case StateHalfOpen:
			// Failed probe reopens the circuit and re-arms the timeout
			cb.state = StateOpen
			cb.probing = false
			cb.nextAttempt = time.Now().Add(cb.resetTimeout)
			cb.notifyStateChange(oldState, cb.state, "probe failed")
		}

	} else {
		cb.totalSuccesses++
		oldState := cb.state

		switch cb.state {
		case StateHalfOpen:
			cb.state = StateClosed
			cb.failures = 0
			cb.probing = false
			cb.nextAttempt = time.Time{}
			cb.notifyStateChange(oldState, cb.state, "probe succeeded")

		case StateClosed:
			if cb.failures > 0 {
				cb.failures = 0
			}
		}
	}
}

// AddListener adds a state change listener
func (cb *CircuitBreaker) AddListener(listener StateChangeListener) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.listeners = append(cb.listeners, listener)
}

// notifyStateChange notifies all listeners of state change. Called with the
// breaker lock held, so listeners run on separate goroutines.
func (cb *CircuitBreaker) notifyStateChange(from, to State, reason string) {
	listeners := make([]StateChangeListener, len(cb.listeners))
	copy(listeners, cb.listeners)

	for _, listener := range listeners {
		go listener.OnStateChange(from, to, reason)
	}
}

// GetMetrics returns circuit breaker metrics
func (cb *CircuitBreaker) GetMetrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerMetrics{
		Name:            cb.name,
		State:           cb.state,
		TotalRequests:   cb.totalRequests,
		TotalFailures:   cb.totalFailures,
		TotalSuccesses:  cb.totalSuccesses,
		CurrentFailures: cb.failures,
		LastFailureTime: cb.lastFailureTime,
		NextAttempt:     cb.nextAttempt,
		Timestamp:       time.Now(),
	}
}

// CircuitBreakerMetrics represents circuit breaker metrics
type CircuitBreakerMetrics struct {
	Name            string
	State           State
	TotalRequests   int64
	TotalFailures   int64
	TotalSuccesses  int64
	CurrentFailures int
	LastFailureTime time.Time
	NextAttempt     time.Time
	Timestamp       time.Time
}
