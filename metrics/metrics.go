// Package metrics exposes recovery telemetry as Prometheus metrics.
//
// The Collector implements the boundary's Recorder interface, so attaching
// it is a single option at construction time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/faultgate/faultgate-go/contracts"
)

// Breaker state gauge values
const (
	stateClosedValue   = 0
	stateHalfOpenValue = 1
	stateOpenValue     = 2
)

// Collector records boundary telemetry into Prometheus metrics
type Collector struct {
	errorsTotal     *prometheus.CounterVec
	recoveriesTotal *prometheus.CounterVec
	retryAttempts   *prometheus.HistogramVec
	breakerState    *prometheus.GaugeVec
}

// NewCollector creates a Collector registered with the given registerer.
// Pass prometheus.DefaultRegisterer for the process-wide registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faultgate_errors_total",
				Help: "Total number of errors handled by the boundary",
			},
			[]string{"component", "type", "severity"},
		),
		recoveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faultgate_recoveries_total",
				Help: "Total number of recovery dispatches by strategy and outcome",
			},
			[]string{"component", "strategy", "outcome"},
		),
		retryAttempts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "faultgate_retry_attempts",
				Help:    "Attempts used per retry dispatch",
				Buckets: []float64{1, 2, 3, 5, 8},
			},
			[]string{"component"},
		),
		breakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "faultgate_breaker_state",
				Help: "Circuit breaker state per component (0 closed, 1 half-open, 2 open)",
			},
			[]string{"component"},
		),
	}
}

// RecordError implements the boundary's Recorder
func (c *Collector) RecordError(component string, class contracts.Classification) {
	c.errorsTotal.WithLabelValues(component, class.Type.String(), class.Severity.String()).Inc()
}

// RecordRecovery implements the boundary's Recorder
func (c *Collector) RecordRecovery(component string, strategy contracts.Strategy, outcome string) {
	c.recoveriesTotal.WithLabelValues(component, strategy.String(), outcome).Inc()
}

// RecordBreakerState implements the boundary's Recorder
func (c *Collector) RecordBreakerState(component string, state string) {
	var value float64
	switch state {
	case "open":
		value = stateOpenValue
	case "half-open":
		value = stateHalfOpenValue
	default:
		value = stateClosedValue
	}
	c.breakerState.WithLabelValues(component).Set(value)
}

// RecordRetryAttempts implements the boundary's Recorder
func (c *Collector) RecordRetryAttempts(component string, attempts int) {
	c.retryAttempts.WithLabelValues(component).Observe(float64(attempts))
}
