package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an AppError; the HTTP layer picks the problem type
// and status from it.
type ErrorType string

const (
	// ErrTypeNetwork: the exchange could not be reached or answered non-2xx.
	ErrTypeNetwork ErrorType = "NETWORK"
	// ErrTypeParsing: the exchange answered with content we cannot decode.
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeStorage: local files or directories.
	ErrTypeStorage ErrorType = "STORAGE"
	// ErrTypeValidation: the caller asked for something unsupported.
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeNotFound: nothing was published, or a file is missing.
	ErrTypeNotFound ErrorType = "NOT_FOUND"
)

// AppError is a classified failure from the scraper, the file checks or the
// services. Context holds extra fields for the problem response; "url" is
// logged but never sent to clients.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithContext sets one context field and returns e for chaining.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates an AppError of any type.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause, Context: map[string]interface{}{}}
}

// TypeOf returns the type of the outermost AppError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return "", false
	}
	return appErr.Type, true
}

func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewInvalidInputError rejects an unsupported kind, market or input file.
func NewInvalidInputError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError reports "<what> not found".
func NewNotFoundError(what string) *AppError {
	return NewAppError(ErrTypeNotFound, what+" not found", nil)
}
