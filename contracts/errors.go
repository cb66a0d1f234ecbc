package contracts

import "fmt"

// FaultError is a structured error tagged with its category at the throw
// site. The classifier trusts the tag instead of inspecting the message, so
// producers under our control should prefer these constructors over plain
// errors.New.
type FaultError struct {
	Kind      ErrorType
	Message   string
	Retryable bool
	Cause     error
}

func (e *FaultError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause
func (e *FaultError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether the producer considers this failure transient
func (e *FaultError) IsRetryable() bool {
	return e.Retryable
}

// NewNetworkError tags a transient transport failure
func NewNetworkError(message string, cause error) *FaultError {
	return &FaultError{Kind: ErrorTypeNetwork, Message: message, Retryable: true, Cause: cause}
}

// NewTimeoutError tags an operation that exceeded its time budget
func NewTimeoutError(message string, cause error) *FaultError {
	return &FaultError{Kind: ErrorTypeTimeout, Message: message, Retryable: true, Cause: cause}
}

// NewValidationError tags rejected input; retrying the same input cannot help
func NewValidationError(message string, cause error) *FaultError {
	return &FaultError{Kind: ErrorTypeValidation, Message: message, Retryable: false, Cause: cause}
}

// NewPermissionError tags a denied capability
func NewPermissionError(message string, cause error) *FaultError {
	return &FaultError{Kind: ErrorTypePermission, Message: message, Retryable: false, Cause: cause}
}

// NewDataError tags malformed or unexpected payload content
func NewDataError(message string, cause error) *FaultError {
	return &FaultError{Kind: ErrorTypeData, Message: message, Retryable: true, Cause: cause}
}

// NewRuntimeError tags a programming fault, typically a recovered panic
func NewRuntimeError(message string, cause error) *FaultError {
	return &FaultError{Kind: ErrorTypeRuntime, Message: message, Retryable: false, Cause: cause}
}
