package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code and message so wrapped copies still compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeUnavailable      = "UNAVAILABLE"
)

// Validation errors
var (
	ErrInvalidNoteID     = NewDomainError(ErrCodeValidation, "invalid note id")
	ErrTitleTooLong      = NewDomainError(ErrCodeValidation, "title exceeds 200 characters")
	ErrEmptyUpdate       = NewDomainError(ErrCodeValidation, "update has no fields")
	ErrEmptyQuery        = NewDomainError(ErrCodeValidation, "query is required")
	ErrEmptyQuestion     = NewDomainError(ErrCodeValidation, "question is required")
	ErrInvalidTopK       = NewDomainError(ErrCodeValidation, "topK must be between 1 and 50")
	ErrNulInText         = NewDomainError(ErrCodeValidation, "title and content must not contain NUL characters")
)

// Not found errors
var (
	ErrNoteNotFound = NewDomainError(ErrCodeNotFound, "note not found")
)

// Operation errors
var (
	ErrNoteNotInTrash   = NewDomainError(ErrCodeInvalidOperation, "note is not in trash")
	ErrIndexUnavailable = NewDomainError(ErrCodeUnavailable, "rag index unavailable")
)
