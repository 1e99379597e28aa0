package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingErrorMessage(t *testing.T) {
	err := NewInputMissingError("/tmp/missing.pdf")

	assert.Equal(t, ErrorInputMissing, err.Code)
	assert.Contains(t, err.Error(), "INPUT_MISSING")
	assert.Contains(t, err.Error(), "/tmp/missing.pdf")
}

func TestProcessingErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewRecognitionFailedError("run-1", "synchronous", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "caused by")

	var perr *ProcessingError
	require.True(t, stderrors.As(fmt.Errorf("wrapped: %w", err), &perr))
	assert.Equal(t, ErrorRecognitionFailed, perr.Code)
}

func TestIsFatal(t *testing.T) {
	fatal := NewOperationTimeoutError("run-1", 10*time.Minute, nil)
	assert.True(t, fatal.IsFatal())

	recoverable := NewTranslationFailedError("run-1", 3, fmt.Errorf("quota"))
	assert.False(t, recoverable.IsFatal())

	anomaly := &ProcessingError{Code: ErrorPageAnomaly}
	assert.False(t, anomaly.IsFatal())
}

func TestToMap(t *testing.T) {
	err := NewStagingFailedError("run-1", "upload input", fmt.Errorf("network down"))
	m := err.ToMap()

	assert.Equal(t, "STAGING_FAILED", m["error_code"])
	assert.Equal(t, "upload input", m["operation"])
	assert.Equal(t, "network down", m["cause"])
}
