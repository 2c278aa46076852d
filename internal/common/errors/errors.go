// Package errors provides standardized error handling for the vetting pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeCandidateNotFound    ErrorCode = "CANDIDATE_NOT_FOUND"
	ErrCodeInvalidStage         ErrorCode = "INVALID_STAGE"
	ErrCodeNoDraftPending       ErrorCode = "NO_DRAFT_PENDING"
	ErrCodeChecklistUndefined   ErrorCode = "CHECKLIST_UNDEFINED"
	ErrCodeConfigInvalid        ErrorCode = "CONFIG_INVALID"
	ErrCodeStoreUnavailable     ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeDuplicateCandidate   ErrorCode = "DUPLICATE_CANDIDATE"
	ErrCodeLockNotAcquired      ErrorCode = "LOCK_NOT_ACQUIRED"
	ErrCodeSearchIndexFailed    ErrorCode = "SEARCH_INDEX_FAILED"
	ErrCodeFinancialDataInvalid ErrorCode = "FINANCIAL_DATA_INVALID"
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

// ValidationError reports a malformed ingestion payload. Field names the
// offending input so the caller can surface it to the submitter.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Message)
}

// NewValidationError creates a synchronous ingestion rejection.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewCandidateNotFoundError creates a non-retryable lookup error.
func NewCandidateNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCandidateNotFound,
		Message:   "Candidate record not found",
		Details:   fmt.Sprintf("candidateId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStageError reports an operation invoked against the wrong stage.
func NewInvalidStageError(op, current string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStage,
		Message:   "Operation not valid for current stage",
		Details:   fmt.Sprintf("operation: %s, stage: %s", op, current),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoDraftPendingError reports an approval with nothing to approve.
func NewNoDraftPendingError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoDraftPending,
		Message:   "No draft message awaiting approval",
		Details:   fmt.Sprintf("candidateId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChecklistUndefinedError reports a checklist type missing from config.
func NewChecklistUndefinedError(checklistType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeChecklistUndefined,
		Message:   "Checklist type not defined in configuration",
		Details:   fmt.Sprintf("checklistType: %s", checklistType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigInvalidError reports a rule table that failed schema validation.
func NewConfigInvalidError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Rule configuration failed validation",
		Details:   fmt.Sprintf("table: %s, error: %v", table, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable persistence error.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Persistence store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateCandidateError reports an ingest for an id already on file.
func NewDuplicateCandidateError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateCandidate,
		Message:   "Candidate already exists",
		Details:   fmt.Sprintf("candidateId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLockNotAcquiredError creates a retryable contention error.
func NewLockNotAcquiredError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLockNotAcquired,
		Message:   "Record is locked by another operation",
		Details:   fmt.Sprintf("candidateId: %s", id),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFinancialDataInvalidError reports unusable bank-statement input.
func NewFinancialDataInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFinancialDataInvalid,
		Message:   "Financial assessment data is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
