// Package faultgate implements an error-resilience layer for applications
// that load several independent data sources, each of which can fail on its
// own. A Boundary classifies reported failures, records them, and dispatches
// recovery: bounded retries through a per-component circuit breaker, a
// registered fallback, degradation, suppression, or propagation.
package faultgate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/faultgate/faultgate-go/classify"
	"github.com/faultgate/faultgate-go/contracts"
	"github.com/faultgate/faultgate-go/internal/reliability"
	"github.com/faultgate/faultgate-go/platform"
)

const (
	defaultHistoryCapacity = 100
	recentStatisticsLimit  = 10

	// GlobalComponent identifies failures funnelled from the platform
	// failure source rather than a supervised call site
	GlobalComponent = "global"
)

// Recovery outcomes reported to the Recorder
const (
	OutcomeRecovered  = "recovered"
	OutcomeSuppressed = "suppressed"
	OutcomePropagated = "propagated"
)

// Operation is a retryable unit of work. The boundary cannot reconstruct a
// failed operation from its context descriptor, so callers that want the
// retry path must pass the operation explicitly.
type Operation func(ctx context.Context) (interface{}, error)

// FallbackHandler produces a usable degraded result when the primary path
// for its component fails
type FallbackHandler func(ctx context.Context, cause error, ectx contracts.ErrorContext) (interface{}, error)

// Classifier maps an error and its context to a recovery classification
type Classifier func(err error, ectx contracts.ErrorContext) contracts.Classification

// Recorder receives recovery telemetry. All methods must be safe for
// concurrent use; a nil recorder disables telemetry.
type Recorder interface {
	RecordError(component string, class contracts.Classification)
	RecordRecovery(component string, strategy contracts.Strategy, outcome string)
	RecordBreakerState(component string, state string)
	RecordRetryAttempts(component string, attempts int)
}

// Boundary orchestrates error recovery. It owns the per-component circuit
// breakers and retry policies, the fallback registry and the bounded error
// history. Construct one per composition root and inject it; there is no
// package-level singleton.
type Boundary struct {
	mu        sync.Mutex
	breakers  map[string]*reliability.CircuitBreaker
	retries   map[string]reliability.RetryPolicy
	fallbacks map[string]FallbackHandler

	history   *errorHistory
	classify  Classifier
	logger    *slog.Logger
	recorder  Recorder
	listeners []contracts.DegradationListener

	breakerThreshold    int
	breakerResetTimeout time.Duration
	retryFactory        func() reliability.RetryPolicy

	source platform.Source
}

// Option configures a Boundary
type Option func(*Boundary)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Boundary) {
		b.logger = logger
	}
}

// WithHistoryCapacity bounds the error history ring (default 100)
func WithHistoryCapacity(capacity int) Option {
	return func(b *Boundary) {
		if capacity > 0 {
			b.history = newErrorHistory(capacity)
		}
	}
}

// WithBreakerDefaults sets the failure threshold and reset timeout applied
// to each lazily created component breaker
func WithBreakerDefaults(failureThreshold int, resetTimeout time.Duration) Option {
	return func(b *Boundary) {
		b.breakerThreshold = failureThreshold
		b.breakerResetTimeout = resetTimeout
	}
}

// WithRetryDefaults sets the backoff applied to each lazily created
// component retry policy
func WithRetryDefaults(attempts int, baseDelay, maxDelay time.Duration, multiplier float64, jitter bool) Option {
	return func(b *Boundary) {
		b.retryFactory = func() reliability.RetryPolicy {
			policy := reliability.NewExponentialBackoff(baseDelay, maxDelay, multiplier, attempts)
			policy.Jitter = jitter
			return policy
		}
	}
}

// WithRecorder attaches a telemetry recorder
func WithRecorder(recorder Recorder) Option {
	return func(b *Boundary) {
		b.recorder = recorder
	}
}

// WithDegradationListener registers a listener for degradation notices.
// Listeners run synchronously on the reporting goroutine.
func WithDegradationListener(listener contracts.DegradationListener) Option {
	return func(b *Boundary) {
		b.listeners = append(b.listeners, listener)
	}
}

// WithClassifier replaces the default classifier
func WithClassifier(classifier Classifier) Option {
	return func(b *Boundary) {
		if classifier != nil {
			b.classify = classifier
		}
	}
}

// WithFailureSource attaches a platform failure source. The boundary
// subscribes exactly once at construction; failures arriving through the
// source are handled with component "global".
func WithFailureSource(source platform.Source) Option {
	return func(b *Boundary) {
		b.source = source
	}
}

// New creates a Boundary. It fails when the configured failure source
// already has a subscriber, since a duplicate installation would
// double-count every global failure.
func New(options ...Option) (*Boundary, error) {
	b := &Boundary{
		breakers:            make(map[string]*reliability.CircuitBreaker),
		retries:             make(map[string]reliability.RetryPolicy),
		fallbacks:           make(map[string]FallbackHandler),
		history:             newErrorHistory(defaultHistoryCapacity),
		classify:            classify.Classify,
		logger:              slog.Default(),
		breakerThreshold:    5,
		breakerResetTimeout: 30 * time.Second,
		retryFactory: func() reliability.RetryPolicy {
			return reliability.DefaultBackoff()
		},
	}

	for _, opt := range options {
		opt(b)
	}

	if b.source != nil {
		err := b.source.Subscribe(func(err error, origin platform.Origin) {
			b.HandleError(context.Background(), err, contracts.ErrorContext{
				Component: GlobalComponent,
				Operation: string(origin),
				Timestamp: time.Now(),
			}, nil)
		})
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

// HandleError classifies a reported failure, records it, and executes the
// selected recovery strategy. The returned result is non-nil only when a
// retry or fallback produced one; a nil result with a nil error means the
// failure was absorbed and the caller should continue with reduced
// functionality.
func (b *Boundary) HandleError(ctx context.Context, cause error, ectx contracts.ErrorContext, op Operation) (interface{}, error) {
	if cause == nil {
		return nil, nil
	}
	if ectx.Timestamp.IsZero() {
		ectx.Timestamp = time.Now()
	}

	class := b.classify(cause, ectx)
	b.history.append(cause, ectx, class)

	if b.recorder != nil {
		b.recorder.RecordError(ectx.Component, class)
	}

	b.logger.Warn("handling error",
		"component", ectx.Component,
		"operation", ectx.Operation,
		"type", class.Type.String(),
		"severity", class.Severity.String(),
		"strategy", class.Strategy.String(),
		"error", cause,
	)

	switch class.Strategy {
	case contracts.StrategyRetry:
		return b.runRetry(ctx, cause, ectx, op)
	case contracts.StrategyFallback:
		return b.runFallback(ctx, cause, ectx)
	case contracts.StrategyDegrade:
		b.runDegrade(cause, ectx)
		return nil, nil
	case contracts.StrategyIgnore:
		b.recordRecovery(ectx.Component, contracts.StrategyIgnore, OutcomeSuppressed)
		return nil, nil
	default:
		b.recordRecovery(ectx.Component, contracts.StrategyFail, OutcomePropagated)
		return nil, cause
	}
}

// runRetry re-invokes the supplied operation through the component's retry
// policy and circuit breaker. Without an operation the original error
// propagates: the boundary cannot rebuild a closure from a descriptor.
func (b *Boundary) runRetry(ctx context.Context, cause error, ectx contracts.ErrorContext, op Operation) (interface{}, error) {
	if op == nil {
		b.logger.Debug("no retryable operation supplied",
			"component", ectx.Component,
			"operation", ectx.Operation,
		)
		b.recordRecovery(ectx.Component, contracts.StrategyRetry, OutcomePropagated)
		return nil, cause
	}

	breaker := b.CircuitBreaker(ectx.Component)
	policy := b.RetryPolicy(ectx.Component)

	var result interface{}
	attempts := 0

	err := reliability.Retry(ctx, policy, func() error {
		attempts++
		return breaker.Execute(ctx, func() error {
			res, opErr := op(ctx)
			if opErr == nil {
				result = res
			}
			return opErr
		})
	})

	if b.recorder != nil {
		b.recorder.RecordRetryAttempts(ectx.Component, attempts)
	}

	if err != nil {
		b.recordRecovery(ectx.Component, contracts.StrategyRetry, OutcomePropagated)
		return nil, err
	}

	b.recordRecovery(ectx.Component, contracts.StrategyRetry, OutcomeRecovered)
	return result, nil
}

// runFallback invokes the component's registered handler. A missing handler
// or a failing handler propagates an error to the caller.
func (b *Boundary) runFallback(ctx context.Context, cause error, ectx contracts.ErrorContext) (interface{}, error) {
	b.mu.Lock()
	handler := b.fallbacks[ectx.Component]
	b.mu.Unlock()

	if handler == nil {
		b.recordRecovery(ectx.Component, contracts.StrategyFallback, OutcomePropagated)
		return nil, cause
	}

	result, err := handler(ctx, cause, ectx)
	if err != nil {
		b.logger.Error("fallback handler failed",
			"component", ectx.Component,
			"operation", ectx.Operation,
			"error", err,
		)
		b.recordRecovery(ectx.Component, contracts.StrategyFallback, OutcomePropagated)
		return nil, err
	}

	b.recordRecovery(ectx.Component, contracts.StrategyFallback, OutcomeRecovered)
	return result, nil
}

// runDegrade notifies listeners that the component continues with reduced
// functionality
func (b *Boundary) runDegrade(cause error, ectx contracts.ErrorContext) {
	notice := contracts.DegradationNotice{
		Component: ectx.Component,
		Operation: ectx.Operation,
		Err:       cause,
	}

	b.mu.Lock()
	listeners := make([]contracts.DegradationListener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	for _, listener := range listeners {
		listener.OnDegradation(notice)
	}

	b.recordRecovery(ectx.Component, contracts.StrategyDegrade, OutcomeSuppressed)
}

func (b *Boundary) recordRecovery(component string, strategy contracts.Strategy, outcome string) {
	if b.recorder != nil {
		b.recorder.RecordRecovery(component, strategy, outcome)
	}
}

// RegisterFallbackHandler registers the fallback for a component. At most
// one handler per component; the last registration wins.
func (b *Boundary) RegisterFallbackHandler(component string, handler FallbackHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fallbacks[component] = handler
}

// CircuitBreaker returns the component's breaker, creating it on first use
func (b *Boundary) CircuitBreaker(component string) *reliability.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.breakers[component]; ok {
		return cb
	}

	opts := []reliability.CircuitBreakerOption{
		reliability.WithName(component),
		reliability.WithFailureThreshold(b.breakerThreshold),
		reliability.WithResetTimeout(b.breakerResetTimeout),
	}
	if b.recorder != nil {
		opts = append(opts, reliability.WithStateChangeListener(&breakerStateRecorder{
			component: component,
			recorder:  b.recorder,
		}))
	}

	cb := reliability.NewCircuitBreaker(opts...)
	b.breakers[component] = cb
	return cb
}

// RetryPolicy returns the component's retry policy, creating it on first use
func (b *Boundary) RetryPolicy(component string) reliability.RetryPolicy {
	b.mu.Lock()
	defer b.mu.Unlock()

	if policy, ok := b.retries[component]; ok {
		return policy
	}

	policy := b.retryFactory()
	b.retries[component] = policy
	return policy
}

// History returns up to limit recorded failures, newest last. limit <= 0
// returns everything retained.
func (b *Boundary) History(limit int) []Entry {
	return b.history.recent(limit)
}

// Statistics returns running failure counters and the ten most recent
// entries
func (b *Boundary) Statistics() Statistics {
	return b.history.snapshot(recentStatisticsLimit)
}

// BreakerStates reports the current state of every component breaker
func (b *Boundary) BreakerStates() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()

	states := make(map[string]string, len(b.breakers))
	for component, cb := range b.breakers {
		states[component] = cb.GetState().String()
	}
	return states
}

// ResetCircuitBreakers forces every component breaker back to closed
func (b *Boundary) ResetCircuitBreakers() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, cb := range b.breakers {
		cb.Reset()
	}
}

// ClearHistory drops all recorded failures and resets the counters
func (b *Boundary) ClearHistory() {
	b.history.clear()
}

// breakerStateRecorder forwards breaker transitions to the Recorder
type breakerStateRecorder struct {
	component string
	recorder  Recorder
}

func (r *breakerStateRecorder) OnStateChange(from, to reliability.State, reason string) {
	r.recorder.RecordBreakerState(r.component, to.String())
}
