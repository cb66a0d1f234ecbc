package contracts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		typ      ErrorType
		expected string
	}{
		{ErrorTypeNetwork, "network"},
		{ErrorTypeTimeout, "timeout"},
		{ErrorTypeValidation, "validation"},
		{ErrorTypePermission, "permission"},
		{ErrorTypeData, "data"},
		{ErrorTypeRuntime, "runtime"},
		{ErrorTypeUnknown, "unknown"},
		{ErrorType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.typ.String())
		})
	}
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityLow, "low"},
		{SeverityMedium, "medium"},
		{SeverityHigh, "high"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.severity.String())
		})
	}
}

func TestStrategy_String(t *testing.T) {
	tests := []struct {
		strategy Strategy
		expected string
	}{
		{StrategyRetry, "retry"},
		{StrategyFallback, "fallback"},
		{StrategyDegrade, "degrade"},
		{StrategyIgnore, "ignore"},
		{StrategyFail, "fail"},
		{Strategy(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.strategy.String())
		})
	}
}

func TestFaultError(t *testing.T) {
	t.Run("formats message with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewNetworkError("tile fetch failed", cause)

		assert.Equal(t, "network: tile fetch failed: connection refused", err.Error())
		assert.Equal(t, cause, errors.Unwrap(err))
	})

	t.Run("formats message without cause", func(t *testing.T) {
		err := NewValidationError("missing geometry", nil)
		assert.Equal(t, "validation: missing geometry", err.Error())
		assert.Nil(t, errors.Unwrap(err))
	})

	t.Run("constructors set kind and retryable", func(t *testing.T) {
		tests := []struct {
			err       *FaultError
			kind      ErrorType
			retryable bool
		}{
			{NewNetworkError("x", nil), ErrorTypeNetwork, true},
			{NewTimeoutError("x", nil), ErrorTypeTimeout, true},
			{NewValidationError("x", nil), ErrorTypeValidation, false},
			{NewPermissionError("x", nil), ErrorTypePermission, false},
			{NewDataError("x", nil), ErrorTypeData, true},
			{NewRuntimeError("x", nil), ErrorTypeRuntime, false},
		}

		for _, tt := range tests {
			t.Run(tt.kind.String(), func(t *testing.T) {
				assert.Equal(t, tt.kind, tt.err.Kind)
				assert.Equal(t, tt.retryable, tt.err.IsRetryable())
			})
		}
	})

	t.Run("errors.As finds wrapped FaultError", func(t *testing.T) {
		inner := NewDataError("bad payload", nil)
		wrapped := errors.Join(errors.New("outer"), inner)

		var fe *FaultError
		assert.True(t, errors.As(wrapped, &fe))
		assert.Equal(t, ErrorTypeData, fe.Kind)
	})
}

func TestDegradationListenerFunc(t *testing.T) {
	var got DegradationNotice
	listener := DegradationListenerFunc(func(n DegradationNotice) {
		got = n
	})

	listener.OnDegradation(DegradationNotice{Component: "mapLayers", Operation: "render"})
	assert.Equal(t, "mapLayers", got.Component)
	assert.Equal(t, "render", got.Operation)
}
