// Package stream structured error types for the benchmark harness
package stream

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Configuration errors abort the run before any kernel executes
	ErrTypeConfiguration ErrorType = iota
	// Allocation errors abort the run; there is no retry
	ErrTypeAllocation
	// Validation failures are reportable outcomes, not aborts
	ErrTypeValidation
	// Instrumentation errors (counters, affinity) degrade the run
	ErrTypeInstrumentation
)

// StreamError represents a structured error with context
type StreamError struct {
	Type    ErrorType
	Op      string      // Operation that failed
	Message string      // Human-readable message
	Err     error       // Underlying error if any
	Context interface{} // Additional context
}

// Error implements the error interface
func (e *StreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stream %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("stream %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *StreamError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConfiguration:
		return "Configuration"
	case ErrTypeAllocation:
		return "Allocation"
	case ErrTypeValidation:
		return "Validation"
	case ErrTypeInstrumentation:
		return "Instrumentation"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewConfigurationError creates a configuration error
func NewConfigurationError(op string, message string) error {
	return &StreamError{
		Type:    ErrTypeConfiguration,
		Op:      op,
		Message: message,
	}
}

// NewAllocationError creates an allocation error
func NewAllocationError(op string, message string, err error) error {
	return &StreamError{
		Type:    ErrTypeAllocation,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewValidationFailure creates a validation failure carrying the result it describes
func NewValidationFailure(op string, message string, context interface{}) error {
	return &StreamError{
		Type:    ErrTypeValidation,
		Op:      op,
		Message: message,
		Context: context,
	}
}

// NewInstrumentationError creates a counter or affinity error
func NewInstrumentationError(op string, message string, err error) error {
	return &StreamError{
		Type:    ErrTypeInstrumentation,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Common pre-defined errors

var (
	// ErrTooFewRepetitions indicates N < 2; no repetition remains after discarding the first
	ErrTooFewRepetitions = NewConfigurationError("Config", "repetition count must be at least 2")

	// ErrEmptyArray indicates a non-positive array length
	ErrEmptyArray = NewConfigurationError("Config", "array length must be positive")

	// ErrUnsupportedPrecision indicates an element width other than 4 or 8 bytes
	ErrUnsupportedPrecision = NewConfigurationError("Config", "unsupported element precision")

	// ErrCountersUnsupported indicates hardware counters are unavailable on this platform
	ErrCountersUnsupported = NewInstrumentationError("Counters", "hardware counters not supported on this platform", nil)
)

func isType(err error, t ErrorType) bool {
	var e *StreamError
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	return isType(err, ErrTypeConfiguration)
}

// IsAllocationError checks if an error is an allocation error
func IsAllocationError(err error) bool {
	return isType(err, ErrTypeAllocation)
}

// IsValidationFailure checks if an error is a validation failure
func IsValidationFailure(err error) bool {
	return isType(err, ErrTypeValidation)
}

// IsInstrumentationError checks if an error is an instrumentation error
func IsInstrumentationError(err error) bool {
	return isType(err, ErrTypeInstrumentation)
}
