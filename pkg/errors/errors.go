package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrorTypeInternal    ErrorType = "INTERNAL"
)

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructor functions for different error types

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewUnavailable creates an error for a failed storage or network dependency
func NewUnavailable(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the type
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}

	// Otherwise, create an internal error
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// GetAppError extracts an AppError from an error chain, or returns nil
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// Type checking functions

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeValidation
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound
}

// IsUnavailable checks if an error is a dependency-unavailable error
func IsUnavailable(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeUnavailable
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeInternal
}
