package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"rtcdiag/internal/core/domain"
)

// ErrorCode represents application error codes
type ErrorCode string

const (
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeUnrecognizedFormat ErrorCode = "UNRECOGNIZED_FORMAT"
	ErrCodeMalformedDocument  ErrorCode = "MALFORMED_DOCUMENT"
	ErrCodeNotExpectedFormat  ErrorCode = "NOT_EXPECTED_FORMAT"
	ErrCodePayloadTooLarge    ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeRateLimit          ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error with code and context
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Context    map[string]interface{}
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Context:    make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with application error
func WrapError(err error, code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Cause:      err,
		Context:    make(map[string]interface{}),
	}
}

func NewInvalidInputError(message string) *AppError {
	return NewAppError(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

func NewRateLimitError() *AppError {
	return NewAppError(ErrCodeRateLimit, "rate limit exceeded", http.StatusTooManyRequests)
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

// FromAnalysisError maps an error returned by detection, parsing or dump
// validation onto a single user-facing AppError.
func FromAnalysisError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}

	switch {
	case stderrors.Is(err, domain.ErrUnrecognizedFormat):
		return WrapError(err, ErrCodeUnrecognizedFormat,
			"unrecognized stats dump format, expected an RTCStatsDump event log or a webrtc-internals export",
			http.StatusUnprocessableEntity)
	case stderrors.Is(err, domain.ErrMalformedDocument):
		return WrapError(err, ErrCodeMalformedDocument, "stats dump is not a valid JSON document", http.StatusUnprocessableEntity)
	case stderrors.Is(err, domain.ErrNotExpectedFormat):
		return WrapError(err, ErrCodeNotExpectedFormat, "stats dump does not match the requested format", http.StatusUnprocessableEntity)
	case stderrors.Is(err, domain.ErrDumpTooLarge):
		return WrapError(err, ErrCodePayloadTooLarge, "stats dump is too large", http.StatusRequestEntityTooLarge)
	case stderrors.Is(err, domain.ErrEmptyDump):
		return WrapError(err, ErrCodeInvalidInput, "stats dump is empty", http.StatusBadRequest)
	}
	return WrapError(err, ErrCodeInternal, "failed to analyze stats dump", http.StatusInternalServerError)
}

// IsAppError checks if error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError extracts AppError from error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return nil
}
