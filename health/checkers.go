package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	faultgate "github.com/faultgate/faultgate-go"
)

// BreakerChecker reports degraded when any component breaker is not closed.
// Open breakers mean a component is failing fast; the process itself is
// still serving, so this never reports unhealthy on its own.
type BreakerChecker struct {
	boundary *faultgate.Boundary
}

// NewBreakerChecker creates a new circuit breaker health checker
func NewBreakerChecker(boundary *faultgate.Boundary) *BreakerChecker {
	return &BreakerChecker{boundary: boundary}
}

func (c *BreakerChecker) Name() string {
	return "circuit-breakers"
}

func (c *BreakerChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{
		Name:      c.Name(),
		Status:    StatusHealthy,
		Timestamp: start,
		Details:   make(map[string]interface{}),
	}

	open := 0
	for component, state := range c.boundary.BreakerStates() {
		result.Details[component] = state
		if state != "closed" {
			open++
		}
	}

	if open > 0 {
		result.Status = StatusDegraded
		result.Message = fmt.Sprintf("%d circuit breaker(s) not closed", open)
	}

	result.Duration = time.Since(start)
	return result
}

// ErrorRateChecker reports on the failure volume since the previous check.
// It keeps the last observed total, so each Check sees the delta.
type ErrorRateChecker struct {
	mu                 sync.Mutex
	boundary           *faultgate.Boundary
	lastTotal          int
	degradedThreshold  int
	unhealthyThreshold int
}

// NewErrorRateChecker creates a checker that reports degraded at
// degradedThreshold new failures between checks and unhealthy at
// unhealthyThreshold
func NewErrorRateChecker(boundary *faultgate.Boundary, degradedThreshold, unhealthyThreshold int) *ErrorRateChecker {
	return &ErrorRateChecker{
		boundary:           boundary,
		degradedThreshold:  degradedThreshold,
		unhealthyThreshold: unhealthyThreshold,
	}
}

func (c *ErrorRateChecker) Name() string {
	return "error-rate"
}

func (c *ErrorRateChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	stats := c.boundary.Statistics()

	c.mu.Lock()
	delta := stats.Total - c.lastTotal
	if delta < 0 {
		// History was cleared since the previous check
		delta = stats.Total
	}
	c.lastTotal = stats.Total
	c.mu.Unlock()

	result := CheckResult{
		Name:      c.Name(),
		Status:    StatusHealthy,
		Timestamp: start,
		Details: map[string]interface{}{
			"total":     stats.Total,
			"new":       delta,
			"byType":    stats.ByType,
			"component": stats.ByComponent,
		},
	}

	switch {
	case c.unhealthyThreshold > 0 && delta >= c.unhealthyThreshold:
		result.Status = StatusUnhealthy
		result.Message = fmt.Sprintf("%d new failures since last check", delta)
	case c.degradedThreshold > 0 && delta >= c.degradedThreshold:
		result.Status = StatusDegraded
		result.Message = fmt.Sprintf("%d new failures since last check", delta)
	}

	result.Duration = time.Since(start)
	return result
}
