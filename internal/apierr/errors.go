// Package apierr defines the JSON error envelope returned by the roster API
// and maps coordinator errors onto it.
package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/onnwee/student-roster/internal/logger"
	"github.com/onnwee/student-roster/internal/roster"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	ErrSystemInternal    ErrorCode = "SYSTEM_INTERNAL"
	ErrSystemDatabase    ErrorCode = "SYSTEM_DATABASE"
	ErrSystemUnavailable ErrorCode = "SYSTEM_UNAVAILABLE"
	ErrSystemTimeout     ErrorCode = "SYSTEM_TIMEOUT"

	ErrValidationInvalidJSON  ErrorCode = "VALIDATION_INVALID_JSON"
	ErrValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrValidationInvalidValue ErrorCode = "VALIDATION_INVALID_VALUE"
	ErrValidationBodyTooLarge ErrorCode = "VALIDATION_BODY_TOO_LARGE"
	ErrValidationContentType  ErrorCode = "VALIDATION_CONTENT_TYPE"

	ErrResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrResourceConflict ErrorCode = "RESOURCE_CONFLICT"

	ErrRateLimitGlobal ErrorCode = "RATE_LIMIT_GLOBAL"
	ErrRateLimitIP     ErrorCode = "RATE_LIMIT_IP"
)

// statuses is the HTTP status for each code. Unknown codes answer 500.
var statuses = map[ErrorCode]int{
	ErrSystemInternal:    http.StatusInternalServerError,
	ErrSystemDatabase:    http.StatusInternalServerError,
	ErrSystemUnavailable: http.StatusServiceUnavailable,
	ErrSystemTimeout:     http.StatusRequestTimeout,

	ErrValidationInvalidJSON:  http.StatusBadRequest,
	ErrValidationMissingField: http.StatusBadRequest,
	ErrValidationInvalidValue: http.StatusBadRequest,
	ErrValidationBodyTooLarge: http.StatusRequestEntityTooLarge,
	ErrValidationContentType:  http.StatusUnsupportedMediaType,

	ErrResourceNotFound: http.StatusNotFound,
	ErrResourceConflict: http.StatusConflict,

	ErrRateLimitGlobal: http.StatusTooManyRequests,
	ErrRateLimitIP:     http.StatusTooManyRequests,
}

// Error is the body of every non-2xx JSON response.
type Error struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// ErrorResponse wraps Error as {"error": {...}}.
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// New creates an API error with the given code.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetails attaches structured details.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// WithRequestID tags the error with the request it belongs to.
func (e *Error) WithRequestID(requestID string) *Error {
	e.RequestID = requestID
	return e
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Status returns the HTTP status code for e.Code.
func (e *Error) Status() int {
	if s, ok := statuses[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WriteError writes err as a JSON response.
func WriteError(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status())
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: err})
}

// WriteErrorWithContext is WriteError with the request ID taken from r.
func WriteErrorWithContext(w http.ResponseWriter, r *http.Request, err *Error) {
	if reqID := GetRequestID(r.Context()); reqID != "" {
		err = err.WithRequestID(reqID)
	}
	WriteError(w, err)
}

// GetRequestID extracts the request ID set by the RequestID middleware.
func GetRequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// FromError maps an error returned while serving a roster request. Anything
// unrecognised is reported as a durable store failure.
func FromError(err error) *Error {
	var (
		apiErr *Error
		ve     *roster.ValidationError
		mbe    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &mbe):
		return ValidationBodyTooLarge(mbe.Limit)
	case errors.As(err, &ve):
		switch {
		case ve.Field == "body":
			return ValidationInvalidJSON()
		case ve.Reason == "is required":
			return ValidationMissingField(ve.Field)
		default:
			return ValidationInvalidValue(ve.Field, ve.Error())
		}
	case errors.Is(err, roster.ErrDuplicate):
		return ResourceConflict("student_id is already enrolled")
	case errors.Is(err, context.DeadlineExceeded):
		return SystemTimeout("Durable store did not respond in time")
	default:
		return SystemDatabase("")
	}
}

func orDefault(message, def string) string {
	if message == "" {
		return def
	}
	return message
}

func SystemInternal(message string) *Error {
	return New(ErrSystemInternal, orDefault(message, "Internal server error"))
}

func SystemDatabase(message string) *Error {
	return New(ErrSystemDatabase, orDefault(message, "Database error"))
}

func SystemUnavailable(message string) *Error {
	return New(ErrSystemUnavailable, orDefault(message, "Service unavailable"))
}

func SystemTimeout(message string) *Error {
	return New(ErrSystemTimeout, orDefault(message, "Request timeout"))
}

func ValidationInvalidJSON() *Error {
	return New(ErrValidationInvalidJSON, "Invalid JSON request body")
}

func ValidationMissingField(field string) *Error {
	return New(ErrValidationMissingField, "Missing required field: "+field).
		WithDetails(map[string]any{"field": field})
}

func ValidationInvalidValue(field, message string) *Error {
	return New(ErrValidationInvalidValue, orDefault(message, "Invalid value for field: "+field)).
		WithDetails(map[string]any{"field": field})
}

func ValidationBodyTooLarge(limit int64) *Error {
	return New(ErrValidationBodyTooLarge, "Request body too large").
		WithDetails(map[string]any{"max_bytes": limit})
}

func ValidationContentType(want string) *Error {
	return New(ErrValidationContentType, "Content-Type must be "+want)
}

func ResourceNotFound(resourceType string) *Error {
	return New(ErrResourceNotFound, resourceType+" not found").
		WithDetails(map[string]any{"resource_type": resourceType})
}

func ResourceConflict(message string) *Error {
	return New(ErrResourceConflict, orDefault(message, "Resource conflict"))
}

func RateLimitGlobal() *Error {
	return New(ErrRateLimitGlobal, "Rate limit exceeded - too many requests globally")
}

func RateLimitIP() *Error {
	return New(ErrRateLimitIP, "Rate limit exceeded - too many requests from your IP")
}
