package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"twxcli/internal/infrastructure"
)

// Problem types for the API.
const (
	TypeValidation = "/errors/validation"
	TypeNotFound   = "/errors/not-found"
	TypeRateLimit  = "/errors/rate-limit"
	TypeInternal   = "/errors/internal"
	TypeTimeout    = "/errors/timeout"

	TypeDataNotFound   = "/errors/data/not-found"
	TypeUpstream       = "/errors/exchange/unavailable"
	TypeUpstreamFormat = "/errors/exchange/unreadable"
)

const internalDetail = "An unexpected error occurred while processing your request"

// problemShape is the fixed part of the problem for one AppError type. An
// empty detail means the error text itself is safe to show.
type problemShape struct {
	status int
	typ    string
	title  string
	detail string
}

var appErrorShapes = map[ErrorType]problemShape{
	ErrTypeNotFound:   {http.StatusNotFound, TypeDataNotFound, "Data Not Found", ""},
	ErrTypeValidation: {http.StatusBadRequest, TypeValidation, "Validation Failed", ""},
	ErrTypeNetwork: {http.StatusBadGateway, TypeUpstream, "Exchange Unavailable",
		"The exchange could not be reached or answered with an error"},
	ErrTypeParsing: {http.StatusBadGateway, TypeUpstreamFormat, "Exchange Response Unreadable",
		"The exchange answered with content that could not be decoded"},
}

// ErrorHandler renders every API failure as RFC 7807 problem details.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an error handler. includeStack adds Go stacks to
// 5xx responses and is meant for development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       infrastructure.WithComponent(logger, "error_handler"),
		includeStack: includeStack,
	}
}

// requestTraceID prefers the application trace id over chi's request id.
func requestTraceID(r *http.Request) string {
	if id := infrastructure.GetTraceID(r.Context()); id != "" {
		return id
	}
	return middleware.GetReqID(r.Context())
}

func (h *ErrorHandler) respond(w http.ResponseWriter, r *http.Request, problem *ProblemDetails) {
	problem.WithExtension("trace_id", requestTraceID(r))
	render.Render(w, r, problem)
}

// HandleError logs err and writes its problem response. nil is a no-op.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	problem := h.ErrorToProblem(err, r)
	serverSide := problem.Status >= http.StatusInternalServerError

	level := slog.LevelWarn
	if serverSide {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if serverSide && h.includeStack {
		problem.WithExtension("stack", getStackTrace())
	}
	h.respond(w, r, problem)
}

// ErrorToProblem maps err without writing anything. Cancellation and
// deadlines become 504; unknown errors become 500 with a generic detail.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", r.URL.Path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorToProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorToProblem(appErr, err, r)
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error", internalDetail, r.URL.Path)
}

// appErrorToProblem maps an AppError by type. err is the full chain so the
// detail keeps the context wrapped around the AppError.
func appErrorToProblem(appErr *AppError, err error, r *http.Request) *ProblemDetails {
	shape, ok := appErrorShapes[appErr.Type]
	if !ok {
		shape = problemShape{http.StatusInternalServerError, TypeInternal, "Internal Server Error", internalDetail}
	}
	detail := shape.detail
	if detail == "" {
		detail = err.Error()
	}

	problem := NewProblemDetails(shape.status, shape.typ, shape.title, detail, r.URL.Path).
		WithExtension("error_type", string(appErr.Type))
	for k, v := range appErr.Context {
		if k != "url" {
			problem.WithExtension(k, v)
		}
	}
	return problem
}

// apiErrorToProblem maps a rejected request; the offending parameters are
// listed under "errors".
func apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.Code {
	case CodeValidationFailed, CodeInvalidRequest:
		problemType = TypeValidation
	case CodeRateLimited:
		problemType = TypeRateLimit
	}

	problem := NewProblemDetails(apiErr.StatusCode, problemType, http.StatusText(apiErr.StatusCode), apiErr.Message, r.URL.Path).
		WithExtension("error_code", apiErr.Code)
	if len(apiErr.Fields) > 0 {
		problem.WithExtension("errors", apiErr.Fields)
	}
	return problem
}

// HandlePanic logs the recovered value with its stack and writes a 500.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred", r.URL.Path)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}
	h.respond(w, r, problem)
}

// NotFound handles unknown routes.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path))
}

// MethodNotAllowed handles known routes hit with the wrong method.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, NewProblemDetails(http.StatusMethodNotAllowed, TypeInternal, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path))
}

func getStackTrace() string {
	buf := make([]byte, 8<<10)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
