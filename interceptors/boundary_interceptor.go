package interceptors

import (
	"context"
	"time"

	faultgate "github.com/faultgate/faultgate-go"
	"github.com/faultgate/faultgate-go/contracts"
)

// BoundaryInterceptor routes failures from the rest of the chain into an
// error boundary. The boundary classifies the failure and may recover it by
// re-invoking the chain, serving a fallback, or degrading, so callers see a
// result or the boundary's verdict rather than the raw error.
type BoundaryInterceptor struct {
	boundary *faultgate.Boundary
}

// NewBoundaryInterceptor creates a new boundary interceptor
func NewBoundaryInterceptor(boundary *faultgate.Boundary) *BoundaryInterceptor {
	return &BoundaryInterceptor{boundary: boundary}
}

// Intercept implements Interceptor
func (i *BoundaryInterceptor) Intercept(ctx context.Context, call contracts.ErrorContext, next OperationHandler) (interface{}, error) {
	result, err := next.Handle(ctx, call)
	if err == nil {
		return result, nil
	}

	if call.Timestamp.IsZero() {
		call.Timestamp = time.Now()
	}

	return i.boundary.HandleError(ctx, err, call, func(ctx context.Context) (interface{}, error) {
		return next.Handle(ctx, call)
	})
}

// Name implements Interceptor
func (i *BoundaryInterceptor) Name() string {
	return "BoundaryInterceptor"
}
