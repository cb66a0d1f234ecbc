package interceptors

import (
	"context"
	"log/slog"
	"time"

	"github.com/faultgate/faultgate-go/contracts"
)

// OperationHandler is the terminal invocation in an interceptor chain
type OperationHandler interface {
	Handle(ctx context.Context, call contracts.ErrorContext) (interface{}, error)
}

// OperationHandlerFunc is a function adapter for OperationHandler
type OperationHandlerFunc func(ctx context.Context, call contracts.ErrorContext) (interface{}, error)

// Handle implements OperationHandler
func (f OperationHandlerFunc) Handle(ctx context.Context, call contracts.ErrorContext) (interface{}, error) {
	return f(ctx, call)
}

// Interceptor wraps an operation invocation and calls the next handler in
// the chain
type Interceptor interface {
	Intercept(ctx context.Context, call contracts.ErrorContext, next OperationHandler) (interface{}, error)

	// Name returns the interceptor name for logging and debugging
	Name() string
}

// InterceptorFunc is a function adapter for Interceptor
type InterceptorFunc struct {
	name string
	fn   func(ctx context.Context, call contracts.ErrorContext, next OperationHandler) (interface{}, error)
}

// NewInterceptorFunc creates a new function-based interceptor
func NewInterceptorFunc(name string, fn func(ctx context.Context, call contracts.ErrorContext, next OperationHandler) (interface{}, error)) *InterceptorFunc {
	return &InterceptorFunc{name: name, fn: fn}
}

// Intercept implements Interceptor
func (i *InterceptorFunc) Intercept(ctx context.Context, call contracts.ErrorContext, next OperationHandler) (interface{}, error) {
	return i.fn(ctx, call, next)
}

// Name implements Interceptor
func (i *InterceptorFunc) Name() string {
	return i.name
}

// Chain manages an ordered list of interceptors
type Chain struct {
	interceptors []Interceptor
	logger       *slog.Logger
}

// NewChain creates a new interceptor chain
func NewChain(logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}

	return &Chain{
		interceptors: make([]Interceptor, 0),
		logger:       logger,
	}
}

// Add appends an interceptor to the chain
func (c *Chain) Add(interceptor Interceptor) *Chain {
	c.interceptors = append(c.interceptors, interceptor)
	return c
}

// Execute runs the chain around the final handler. Interceptors run in
// registration order, the first added being outermost.
func (c *Chain) Execute(ctx context.Context, call contracts.ErrorContext, finalHandler OperationHandler) (interface{}, error) {
	if len(c.interceptors) == 0 {
		return finalHandler.Handle(ctx, call)
	}

	// Build the chain in reverse order
	handler := finalHandler
	for i := len(c.interceptors) - 1; i >= 0; i-- {
		interceptor := c.interceptors[i]
		currentHandler := handler
		handler = OperationHandlerFunc(func(ctx context.Context, call contracts.ErrorContext) (interface{}, error) {
			return interceptor.Intercept(ctx, call, currentHandler)
		})
	}

	return handler.Handle(ctx, call)
}

// LoggingInterceptor logs operation invocations with timing
type LoggingInterceptor struct {
	logger *slog.Logger
}

// NewLoggingInterceptor creates a new logging interceptor
func NewLoggingInterceptor(logger *slog.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingInterceptor{logger: logger}
}

// Intercept implements Interceptor
func (i *LoggingInterceptor) Intercept(ctx context.Context, call contracts.ErrorContext, next OperationHandler) (interface{}, error) {
	start := time.Now()

	i.logger.Debug("invoking operation",
		"component", call.Component,
		"operation", call.Operation,
	)

	result, err := next.Handle(ctx, call)
	duration := time.Since(start)

	if err != nil {
		i.logger.Warn("operation failed",
			"component", call.Component,
			"operation", call.Operation,
			"duration", duration,
			"error", err,
		)
		return nil, err
	}

	i.logger.Debug("operation succeeded",
		"component", call.Component,
		"operation", call.Operation,
		"duration", duration,
	)
	return result, nil
}

// Name implements Interceptor
func (i *LoggingInterceptor) Name() string {
	return "LoggingInterceptor"
}

// TimeoutInterceptor bounds the invocation time of the rest of the chain
type TimeoutInterceptor struct {
	timeout time.Duration
}

// NewTimeoutInterceptor creates a new timeout interceptor
func NewTimeoutInterceptor(timeout time.Duration) *TimeoutInterceptor {
	return &TimeoutInterceptor{timeout: timeout}
}

// Intercept implements Interceptor
func (i *TimeoutInterceptor) Intercept(ctx context.Context, call contracts.ErrorContext, next OperationHandler) (interface{}, error) {
	if i.timeout <= 0 {
		return next.Handle(ctx, call)
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	return next.Handle(ctx, call)
}

// Name implements Interceptor
func (i *TimeoutInterceptor) Name() string {
	return "TimeoutInterceptor"
}
