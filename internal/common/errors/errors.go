// internal/common/errors/errors.go
// Package errors provides standardized error handling for the generation pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Assembler errors
const (
	ErrCodeInvalidDocument   ErrorCode = "INVALID_DOCUMENT"
	ErrCodeEmptyMergeResult  ErrorCode = "EMPTY_MERGE_RESULT"
	ErrCodeOversizedResult   ErrorCode = "OVERSIZED_RESULT"
	ErrCodeSourceFetchFailed ErrorCode = "SOURCE_FETCH_FAILED"
)

// Dispatcher errors
const (
	ErrCodeTimeout       ErrorCode = "TIMEOUT"
	ErrCodeNetworkError  ErrorCode = "NETWORK_ERROR"
	ErrCodeHTTPError     ErrorCode = "HTTP_ERROR"
	ErrCodeUpstreamEmpty ErrorCode = "UPSTREAM_EMPTY"
)

// Orchestrator errors
const (
	ErrCodeBatchExhausted ErrorCode = "BATCH_EXHAUSTED"
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Persistence / notification errors
const (
	ErrCodeHistoryQueryFailed     ErrorCode = "HISTORY_QUERY_FAILED"
	ErrCodeHistoryInsertFailed    ErrorCode = "HISTORY_INSERT_FAILED"
	ErrCodeSearchQueryFailed      ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from err, or empty string if err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// ==========================
// Constructors
// ==========================

// NewInvalidDocumentError is raised when a source fails header or parse
// validation. Non-retryable: the input itself is bad.
func NewInvalidDocumentError(name, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDocument,
		Message:   fmt.Sprintf("Source document %q is not a valid PDF", name),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"document": name},
		Timestamp: time.Now().UTC(),
	}
}

func NewEmptyMergeResultError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyMergeResult,
		Message:   "Merged document contains no pages",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewOversizedResultError(size, limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeOversizedResult,
		Message:   "Merged document exceeds the maximum allowed size",
		Details:   fmt.Sprintf("size: %d bytes, limit: %d bytes", size, limit),
		Retryable: false,
		Metadata:  map[string]interface{}{"size": size, "limit": limit},
		Timestamp: time.Now().UTC(),
	}
}

func NewSourceFetchFailedError(name string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceFetchFailed,
		Message:   fmt.Sprintf("Failed to fetch source document %q", name),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"document": name},
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError is raised when a candidate endpoint does not answer within
// its budget. Retryable: the next candidate may still succeed.
func NewTimeoutError(endpoint string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   "Upstream call exceeded its timeout",
		Details:   fmt.Sprintf("endpoint: %s", endpoint),
		Retryable: true,
		Metadata:  map[string]interface{}{"endpoint": endpoint},
		Timestamp: time.Now().UTC(),
	}
}

func NewNetworkError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetworkError,
		Message:   "Upstream call failed at the transport level",
		Details:   fmt.Sprintf("endpoint: %s, error: %s", endpoint, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"endpoint": endpoint},
		Timestamp: time.Now().UTC(),
	}
}

func NewHTTPError(endpoint string, status int) *StandardError {
	return &StandardError{
		Code:      ErrCodeHTTPError,
		Message:   fmt.Sprintf("Upstream returned HTTP %d", status),
		Details:   fmt.Sprintf("endpoint: %s", endpoint),
		Retryable: true,
		Metadata:  map[string]interface{}{"endpoint": endpoint, "status": status},
		Timestamp: time.Now().UTC(),
	}
}

func NewUpstreamEmptyError(endpoint string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamEmpty,
		Message:   "Upstream returned an empty response body",
		Details:   fmt.Sprintf("endpoint: %s", endpoint),
		Retryable: true,
		Metadata:  map[string]interface{}{"endpoint": endpoint},
		Timestamp: time.Now().UTC(),
	}
}

// NewBatchExhaustedError is fatal for the whole generation: partial papers are
// never delivered.
func NewBatchExhaustedError(batchIndex, attempts int, lastErr error) *StandardError {
	details := fmt.Sprintf("batch: %d, attempts: %d", batchIndex, attempts)
	if lastErr != nil {
		details = fmt.Sprintf("%s, lastError: %s", details, lastErr.Error())
	}
	return &StandardError{
		Code:      ErrCodeBatchExhausted,
		Message:   "Generation batch failed after all retry attempts",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"batch": batchIndex, "attempts": attempts},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Generation request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewHistoryQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryQueryFailed,
		Message:   "History query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewHistoryInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryInsertFailed,
		Message:   "History insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Paper search query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
