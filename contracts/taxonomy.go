package contracts

import "time"

// ErrorType categorizes a failure for strategy selection
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeNetwork
	ErrorTypeTimeout
	ErrorTypeValidation
	ErrorTypePermission
	ErrorTypeData
	ErrorTypeRuntime
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypePermission:
		return "permission"
	case ErrorTypeData:
		return "data"
	case ErrorTypeRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Severity indicates how serious a failure is
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Strategy is the recovery decision attached to a classification
type Strategy int

const (
	StrategyRetry Strategy = iota
	StrategyFallback
	StrategyDegrade
	StrategyIgnore
	StrategyFail
)

func (s Strategy) String() string {
	switch s {
	case StrategyRetry:
		return "retry"
	case StrategyFallback:
		return "fallback"
	case StrategyDegrade:
		return "degrade"
	case StrategyIgnore:
		return "ignore"
	case StrategyFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Classification is the classifier's verdict for one error. It is a value
// recomputed on every call and never mutated.
type Classification struct {
	Type      ErrorType
	Severity  Severity
	Strategy  Strategy
	Retryable bool
}

// ErrorContext identifies where a failure happened. It is created at the
// failure site and retained only inside history entries.
type ErrorContext struct {
	Component string
	Operation string
	Timestamp time.Time
	Metadata  map[string]interface{}
}

// DegradationNotice is emitted when a component is switched to reduced
// functionality instead of failing outright.
type DegradationNotice struct {
	Component string
	Operation string
	Err       error
}

// DegradationListener receives degradation notifications. Consumers render
// or forward them; the resilience layer itself never presents errors.
type DegradationListener interface {
	OnDegradation(notice DegradationNotice)
}

// DegradationListenerFunc is a function adapter for DegradationListener
type DegradationListenerFunc func(notice DegradationNotice)

// OnDegradation implements DegradationListener
func (f DegradationListenerFunc) OnDegradation(notice DegradationNotice) {
	f(notice)
}
