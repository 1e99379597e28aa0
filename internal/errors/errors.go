/**
 * Custom error types for the ReadVision pipeline
 *
 * One structured error type covers the whole taxonomy: fatal input and
 * backend/operation failures, recoverable per-page translation failures,
 * and non-fatal reconciliation anomalies.
 */

package errors

import (
	"fmt"
	"time"
)

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Input errors - fatal before any backend call
	ErrorInputMissing       ErrorCode = "INPUT_MISSING"
	ErrorCredentialsMissing ErrorCode = "CREDENTIALS_MISSING"
	ErrorUnsupportedFormat  ErrorCode = "UNSUPPORTED_FORMAT"

	// Backend and operation errors - fatal for the current document
	ErrorRecognitionFailed ErrorCode = "RECOGNITION_FAILED"
	ErrorOperationTimeout  ErrorCode = "OPERATION_TIMEOUT"
	ErrorStagingFailed     ErrorCode = "STAGING_FAILED"
	ErrorOutputFailed      ErrorCode = "OUTPUT_FAILED"
	ErrorDatabaseFailed    ErrorCode = "DATABASE_FAILED"

	// Recoverable per-page errors
	ErrorTranslationFailed ErrorCode = "TRANSLATION_FAILED"

	// Reconciliation anomalies - diagnostics only, never fatal
	ErrorPageAnomaly ErrorCode = "PAGE_ANOMALY"
)

// ProcessingError represents a structured processing error
type ProcessingError struct {
	Code      ErrorCode
	Message   string
	RunID     string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether the error aborts the current document run.
// Translation failures degrade to per-page pass-through and page anomalies
// are warnings, so neither is fatal.
func (e *ProcessingError) IsFatal() bool {
	switch e.Code {
	case ErrorTranslationFailed, ErrorPageAnomaly:
		return false
	}
	return true
}

// Factory functions for common errors

func NewInputMissingError(path string) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorInputMissing,
		Message:   fmt.Sprintf("input document not found: %s", path),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"path": path,
		},
	}
}

func NewCredentialsMissingError(path string) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorCredentialsMissing,
		Message:   fmt.Sprintf("credentials file not found: %s", path),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"path": path,
		},
	}
}

func NewUnsupportedFormatError(runID string, ext string) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorUnsupportedFormat,
		Message:   fmt.Sprintf("unsupported input format: %s", ext),
		RunID:     runID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"extension": ext,
		},
	}
}

func NewRecognitionFailedError(runID string, mode string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorRecognitionFailed,
		Message:   fmt.Sprintf("recognition failed in %s mode", mode),
		RunID:     runID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"mode": mode,
		},
		Cause: cause,
	}
}

func NewOperationTimeoutError(runID string, duration time.Duration, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorOperationTimeout,
		Message:   fmt.Sprintf("recognition operation did not complete within the allotted interval (%v)", duration),
		RunID:     runID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"timeout_duration": duration.String(),
		},
		Cause: cause,
	}
}

func NewStagingFailedError(runID string, op string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorStagingFailed,
		Message:   fmt.Sprintf("staging store operation failed: %s", op),
		RunID:     runID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"operation": op,
		},
		Cause: cause,
	}
}

func NewOutputFailedError(runID string, path string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorOutputFailed,
		Message:   fmt.Sprintf("failed to write output: %s", path),
		RunID:     runID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"path": path,
		},
		Cause: cause,
	}
}

func NewTranslationFailedError(runID string, page int, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorTranslationFailed,
		Message:   fmt.Sprintf("failed to translate page %d", page),
		RunID:     runID,
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"page": page,
		},
		Cause: cause,
	}
}

// ToMap converts error to map for ledger storage
func (e *ProcessingError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}
