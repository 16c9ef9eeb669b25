package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/docqa-api/internal/domain"
	"github.com/phrazzld/docqa-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// They wrap the store sentinels, so errors.Is matches either level.
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrDocumentNotFound indicates that the document does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrDocumentNotFound = fmt.Errorf("document not found: %w", store.ErrDocumentNotFound)

	// ErrQuestionNotFound indicates that the question does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrQuestionNotFound = fmt.Errorf("question not found: %w", store.ErrQuestionNotFound)
)

// DocumentServiceError wraps errors from the document service with context.
type DocumentServiceError struct {
	// Operation is the operation that failed (e.g., "create_document")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for DocumentServiceError.
func (e *DocumentServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("document service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *DocumentServiceError) Unwrap() error {
	return e.Err
}

// NewDocumentServiceError creates a new DocumentServiceError.
// Sentinel and validation errors are returned without wrapping.
func NewDocumentServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if passthrough := sentinel(err); passthrough != nil {
		return passthrough
	}
	return &DocumentServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// QuestionServiceError wraps errors from the question service with context.
type QuestionServiceError struct {
	// Operation is the operation that failed (e.g., "submit_question")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for QuestionServiceError.
func (e *QuestionServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("question service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("question service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *QuestionServiceError) Unwrap() error {
	return e.Err
}

// NewQuestionServiceError creates a new QuestionServiceError.
// Sentinel and validation errors are returned without wrapping.
func NewQuestionServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if passthrough := sentinel(err); passthrough != nil {
		return passthrough
	}
	return &QuestionServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// sentinel returns the service-level form of an expected error, or nil.
func sentinel(err error) error {
	switch {
	case errors.Is(err, store.ErrDocumentNotFound):
		return ErrDocumentNotFound
	case errors.Is(err, store.ErrQuestionNotFound):
		return ErrQuestionNotFound
	case domain.IsValidationError(err):
		return err
	default:
		return nil
	}
}
