package errors

import "net/http"

// Request error codes, surfaced as the error_code problem extension.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
)

// APIError rejects a request before any report is fetched: malformed query
// parameters or a client over its rate limit. Failures while fetching or
// decomposing are AppErrors.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     []FieldError
}

func (e *APIError) Error() string {
	return e.Message
}

// FieldError names one rejected query or path parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an APIError without field details.
func New(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// NewValidationErrors creates a 400 listing every rejected parameter.
func NewValidationErrors(fields []FieldError) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       CodeValidationFailed,
		Message:    "Request validation failed",
		Fields:     fields,
	}
}

// InvalidParam is NewValidationErrors for a single parameter.
func InvalidParam(field, message string) *APIError {
	return NewValidationErrors([]FieldError{{Field: field, Message: message}})
}

// ErrRateLimitExceeded is returned by the per-client limiter.
var ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded")
