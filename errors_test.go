package stream

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOp   string
		wantMsg  string
		checkFn  func(error) bool
	}{
		{
			name:     "Too Few Repetitions",
			err:      ErrTooFewRepetitions,
			wantType: ErrTypeConfiguration,
			wantOp:   "Config",
			wantMsg:  "repetition count must be at least 2",
			checkFn:  IsConfigurationError,
		},
		{
			name:     "Empty Array",
			err:      ErrEmptyArray,
			wantType: ErrTypeConfiguration,
			wantOp:   "Config",
			wantMsg:  "array length must be positive",
			checkFn:  IsConfigurationError,
		},
		{
			name:     "Unsupported Precision",
			err:      ErrUnsupportedPrecision,
			wantType: ErrTypeConfiguration,
			wantOp:   "Config",
			wantMsg:  "unsupported element precision",
			checkFn:  IsConfigurationError,
		},
		{
			name:     "Counters Unsupported",
			err:      ErrCountersUnsupported,
			wantType: ErrTypeInstrumentation,
			wantOp:   "Counters",
			wantMsg:  "hardware counters not supported on this platform",
			checkFn:  IsInstrumentationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var se *StreamError
			require.True(t, errors.As(tt.err, &se), "expected StreamError, got %T", tt.err)
			assert.Equal(t, tt.wantType, se.Type)
			assert.Equal(t, tt.wantOp, se.Op)
			assert.Equal(t, tt.wantMsg, se.Message)
			assert.True(t, tt.checkFn(tt.err))

			errStr := tt.err.Error()
			assert.Contains(t, errStr, tt.wantType.String())
			assert.Contains(t, errStr, tt.wantOp)
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("mmap: cannot allocate memory")
	err := NewAllocationError("NewArena", "cannot obtain working arrays", cause)

	assert.True(t, IsAllocationError(err))
	assert.False(t, IsConfigurationError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by: mmap")

	wrapped := fmt.Errorf("running bench: %w", err)
	assert.True(t, IsAllocationError(wrapped))
}

func TestValidationFailureCarriesContext(t *testing.T) {
	res := &ValidationResult{Epsilon: 1e-13}
	err := NewValidationFailure("Validate", "a exceeds epsilon", res)

	assert.True(t, IsValidationFailure(err))
	var se *StreamError
	require.True(t, errors.As(err, &se))
	assert.Same(t, res, se.Context)
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "Configuration", ErrTypeConfiguration.String())
	assert.Equal(t, "Allocation", ErrTypeAllocation.String())
	assert.Equal(t, "Validation", ErrTypeValidation.String())
	assert.Equal(t, "Instrumentation", ErrTypeInstrumentation.String())
	assert.Equal(t, "Unknown", ErrorType(42).String())
}

func TestNonStreamErrorsAreUnclassified(t *testing.T) {
	err := errors.New("plain")
	assert.False(t, IsConfigurationError(err))
	assert.False(t, IsAllocationError(err))
	assert.False(t, IsValidationFailure(err))
	assert.False(t, IsInstrumentationError(err))
	assert.False(t, IsConfigurationError(nil))
	assert.True(t, strings.HasPrefix(NewConfigurationError("op", "m").Error(), "stream Configuration error"))
}
