package interceptors

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/faultgate/faultgate-go/contracts"
)

// RecoveryInterceptor converts a panic in the rest of the chain into a
// runtime error. Place it outermost so nothing above it can crash the
// caller.
type RecoveryInterceptor struct {
	logger *slog.Logger
}

// NewRecoveryInterceptor creates a new recovery interceptor
func NewRecoveryInterceptor(logger *slog.Logger) *RecoveryInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &RecoveryInterceptor{logger: logger}
}

// Intercept implements Interceptor
func (i *RecoveryInterceptor) Intercept(ctx context.Context, call contracts.ErrorContext, next OperationHandler) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("recovered panic in operation",
				"component", call.Component,
				"operation", call.Operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			result = nil
			err = contracts.NewRuntimeError(fmt.Sprintf("recovered panic: %v", r), nil)
		}
	}()

	return next.Handle(ctx, call)
}

// Name implements Interceptor
func (i *RecoveryInterceptor) Name() string {
	return "RecoveryInterceptor"
}
