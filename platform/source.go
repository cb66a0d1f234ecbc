// Package platform delivers process-level failures to a single subscriber.
//
// The error boundary attaches to a Source at construction so that failures
// happening outside any supervised call site still get classified and
// recorded. A source accepts exactly one subscriber for its lifetime;
// installing a second handler would double-count and double-recover every
// global failure, so Subscribe rejects it.
package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Origin distinguishes the two global failure channels
type Origin string

const (
	// OriginPanic marks a failure recovered from a panicking goroutine
	OriginPanic Origin = "panic"
	// OriginAsync marks a failure reported by detached asynchronous work
	OriginAsync Origin = "async"
)

// ErrAlreadySubscribed is returned when a second handler is installed
var ErrAlreadySubscribed = errors.New("platform: failure handler already subscribed")

// Source accepts a single process-lifetime failure handler
type Source interface {
	Subscribe(fn func(err error, origin Origin)) error
}

// RuntimeSource is the production Source. Work started through Go has its
// panics converted to failure reports; detached work delivers errors through
// Report.
type RuntimeSource struct {
	mu      sync.Mutex
	handler func(err error, origin Origin)
	logger  *slog.Logger
}

// RuntimeSourceOption configures a RuntimeSource
type RuntimeSourceOption func(*RuntimeSource)

// WithSourceLogger sets the logger used when failures arrive before a
// handler is subscribed
func WithSourceLogger(logger *slog.Logger) RuntimeSourceOption {
	return func(s *RuntimeSource) {
		s.logger = logger
	}
}

// NewRuntimeSource creates a new runtime failure source
func NewRuntimeSource(options ...RuntimeSourceOption) *RuntimeSource {
	s := &RuntimeSource{
		logger: slog.Default(),
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Subscribe installs the failure handler. The second and later calls return
// ErrAlreadySubscribed.
func (s *RuntimeSource) Subscribe(fn func(err error, origin Origin)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handler != nil {
		return ErrAlreadySubscribed
	}
	s.handler = fn
	return nil
}

// Go runs fn on a new goroutine, converting a panic into a failure report
// and forwarding a returned error as an asynchronous failure
func (s *RuntimeSource) Go(fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.deliver(fmt.Errorf("recovered panic: %v", r), OriginPanic)
			}
		}()

		if err := fn(); err != nil {
			s.deliver(err, OriginAsync)
		}
	}()
}

// Report delivers an asynchronous failure from detached work
func (s *RuntimeSource) Report(err error) {
	if err == nil {
		return
	}
	s.deliver(err, OriginAsync)
}

func (s *RuntimeSource) deliver(err error, origin Origin) {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()

	if handler == nil {
		s.logger.Warn("global failure with no subscriber",
			"origin", string(origin),
			"error", err,
		)
		return
	}

	handler(err, origin)
}
