package interceptors

import (
	"context"
	"sync"
	"time"

	"github.com/faultgate/faultgate-go/contracts"
	"github.com/faultgate/faultgate-go/internal/reliability"
)

// RetryInterceptor re-invokes the rest of the chain when it fails, governed
// by a retry policy. Place it inside the circuit breaker so that rejected
// calls do not burn the attempt budget.
type RetryInterceptor struct {
	policy reliability.RetryPolicy
}

// NewRetryInterceptor creates a new retry interceptor. A nil policy uses
// the default backoff.
func NewRetryInterceptor(policy reliability.RetryPolicy) *RetryInterceptor {
	if policy == nil {
		policy = reliability.DefaultBackoff()
	}

	return &RetryInterceptor{policy: policy}
}

// Intercept implements Interceptor
func (i *RetryInterceptor) Intercept(ctx context.Context, call contracts.ErrorContext, next OperationHandler) (interface{}, error) {
	var result interface{}

	err := reliability.Retry(ctx, i.policy, func() error {
		res, err := next.Handle(ctx, call)
		if err == nil {
			result = res
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Name implements Interceptor
func (i *RetryInterceptor) Name() string {
	return "RetryInterceptor"
}

// CircuitBreakerInterceptor fast-fails invocations for components whose
// recent calls keep failing. Breakers are created per component on first
// use.
type CircuitBreakerInterceptor struct {
	mu               sync.Mutex
	breakers         map[string]*reliability.CircuitBreaker
	failureThreshold int
	resetTimeout     time.Duration
}

// NewCircuitBreakerInterceptor creates a new circuit breaker interceptor
func NewCircuitBreakerInterceptor(failureThreshold int, resetTimeout time.Duration) *CircuitBreakerInterceptor {
	return &CircuitBreakerInterceptor{
		breakers:         make(map[string]*reliability.CircuitBreaker),
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
	}
}

// Intercept implements Interceptor
func (i *CircuitBreakerInterceptor) Intercept(ctx context.Context, call contracts.ErrorContext, next OperationHandler) (interface{}, error) {
	breaker := i.breaker(call.Component)

	var result interface{}
	err := breaker.Execute(ctx, func() error {
		res, err := next.Handle(ctx, call)
		if err == nil {
			result = res
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Name implements Interceptor
func (i *CircuitBreakerInterceptor) Name() string {
	return "CircuitBreakerInterceptor"
}

// Breaker returns the component's breaker, creating it on first use
func (i *CircuitBreakerInterceptor) Breaker(component string) *reliability.CircuitBreaker {
	return i.breaker(component)
}

func (i *CircuitBreakerInterceptor) breaker(component string) *reliability.CircuitBreaker {
	i.mu.Lock()
	defer i.mu.Unlock()

	if cb, ok := i.breakers[component]; ok {
		return cb
	}

	cb := reliability.NewCircuitBreaker(
		reliability.WithName(component),
		reliability.WithFailureThreshold(i.failureThreshold),
		reliability.WithResetTimeout(i.resetTimeout),
	)
	i.breakers[component] = cb
	return cb
}
