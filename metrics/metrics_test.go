package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	faultgate "github.com/faultgate/faultgate-go"
	"github.com/faultgate/faultgate-go/contracts"
)

func TestCollector(t *testing.T) {
	t.Run("counts errors by component type and severity", func(t *testing.T) {
		c := NewCollector(prometheus.NewRegistry())

		class := contracts.Classification{
			Type:     contracts.ErrorTypeNetwork,
			Severity: contracts.SeverityMedium,
			Strategy: contracts.StrategyRetry,
		}
		c.RecordError("dataLoader", class)
		c.RecordError("dataLoader", class)

		got := testutil.ToFloat64(c.errorsTotal.WithLabelValues("dataLoader", "network", "medium"))
		assert.Equal(t, 2.0, got)
	})

	t.Run("counts recoveries by strategy and outcome", func(t *testing.T) {
		c := NewCollector(prometheus.NewRegistry())

		c.RecordRecovery("mapData", contracts.StrategyFallback, "recovered")

		got := testutil.ToFloat64(c.recoveriesTotal.WithLabelValues("mapData", "fallback", "recovered"))
		assert.Equal(t, 1.0, got)
	})

	t.Run("tracks breaker state transitions", func(t *testing.T) {
		c := NewCollector(prometheus.NewRegistry())

		c.RecordBreakerState("tiles", "open")
		assert.Equal(t, 2.0, testutil.ToFloat64(c.breakerState.WithLabelValues("tiles")))

		c.RecordBreakerState("tiles", "half-open")
		assert.Equal(t, 1.0, testutil.ToFloat64(c.breakerState.WithLabelValues("tiles")))

		c.RecordBreakerState("tiles", "closed")
		assert.Equal(t, 0.0, testutil.ToFloat64(c.breakerState.WithLabelValues("tiles")))
	})
}

func TestCollectorWithBoundary(t *testing.T) {
	t.Run("receives telemetry from a live boundary", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		c := NewCollector(reg)

		b, err := faultgate.New(
			faultgate.WithRecorder(c),
			faultgate.WithRetryDefaults(3, time.Millisecond, 5*time.Millisecond, 2.0, false),
		)
		require.NoError(t, err)

		cause := errors.New("network request failed")
		_, _ = b.HandleError(context.Background(), cause, contracts.ErrorContext{
			Component: "dataLoader",
		}, func(ctx context.Context) (interface{}, error) {
			return nil, cause
		})

		got := testutil.ToFloat64(c.errorsTotal.WithLabelValues("dataLoader", "network", "medium"))
		assert.Equal(t, 1.0, got)
		got = testutil.ToFloat64(c.recoveriesTotal.WithLabelValues("dataLoader", "retry", "propagated"))
		assert.Equal(t, 1.0, got)
	})
}
