// Package interceptors provides composable middleware for fallible
// operations.
//
// An interceptor wraps the invocation of an operation and can act before
// and after it runs, without the operation knowing. Interceptors compose
// into a chain that executes in registration order:
//   - LoggingInterceptor: logs invocations with timing
//   - RecoveryInterceptor: converts panics into runtime errors
//   - TimeoutInterceptor: bounds invocation time through the context
//   - RetryInterceptor: re-invokes failed operations per a retry policy
//   - CircuitBreakerInterceptor: fast-fails components with repeated failures
//   - BoundaryInterceptor: routes failures into an error boundary
//
// Example:
//
//	chain := interceptors.NewChain(logger).
//		Add(interceptors.NewRecoveryInterceptor(logger)).
//		Add(interceptors.NewLoggingInterceptor(logger)).
//		Add(interceptors.NewCircuitBreakerInterceptor(5, 30*time.Second)).
//		Add(interceptors.NewRetryInterceptor(reliability.DefaultBackoff()))
//
//	result, err := chain.Execute(ctx, call, handler)
//
// Custom interceptors implement the Interceptor interface or use
// NewInterceptorFunc.
package interceptors
