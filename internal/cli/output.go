package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/LynnColeArt/stream"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0   // Run completed and validated
	ExitFailure      = 1   // Validation failure
	ExitCommandError = 2   // Configuration or allocation error
	ExitInterrupted  = 130 // Terminated by SIGINT/SIGTERM
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// exitCodeFor maps harness errors onto exit codes.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case stream.IsValidationFailure(err):
		return ExitFailure
	default:
		return ExitCommandError
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostic output (defaults to Writer)
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok", "failed" or "error"
	Data   interface{} `json:"data,omitempty"`  // payload
	Error  *CLIError   `json:"error,omitempty"` // error details
	RunID  string      `json:"run_id,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error codes used in CLIError.
const (
	ErrCodeConfig     = "E001"
	ErrCodeAllocation = "E002"
	ErrCodeValidation = "E003"
	ErrCodeInternal   = "E099"
)

// errorCode classifies an error for JSON output.
func errorCode(err error) string {
	switch {
	case stream.IsConfigurationError(err):
		return ErrCodeConfig
	case stream.IsAllocationError(err):
		return ErrCodeAllocation
	case stream.IsValidationFailure(err):
		return ErrCodeValidation
	default:
		return ErrCodeInternal
	}
}

// JSON writes v wrapped in a CLIResponse.
func (f *OutputFormatter) JSON(status, runID string, v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(CLIResponse{Status: status, Data: v, RunID: runID})
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(err error) error {
	code := errorCode(err)
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: err.Error()},
		})
	}
	fmt.Fprintf(f.GetErrWriter(), "Error [%s]: %s\n", code, err)
	return nil
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
