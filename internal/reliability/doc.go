// Package reliability provides the recovery state machines used by the
// faultgate error boundary.
//
// This package implements two patterns:
//   - Circuit Breaker: stops invoking a repeatedly failing dependency for a
//     cooldown period, then probes it with exactly one call
//   - Retry Policies: bounded retries with exponential backoff and jitter
//
// Key properties:
//   - Thread-safe implementations suitable for concurrent use
//   - Configurable thresholds and timeouts
//   - Support for custom error classification (retryable vs non-retryable)
//   - The breaker gates invocation but never swallows results; the wrapped
//     operation's own error is always returned unchanged
//
// Example usage:
//
//	// Create a circuit breaker
//	cb := NewCircuitBreaker(
//	    WithFailureThreshold(5),
//	    WithResetTimeout(30 * time.Second),
//	)
//
//	// Use it to protect a function
//	err := cb.Execute(ctx, func() error {
//	    return riskyOperation()
//	})
package reliability
