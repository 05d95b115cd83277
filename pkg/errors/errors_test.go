package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtcdiag/internal/core/domain"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(ErrCodeInvalidInput, "test error", 400)
	assert.Equal(t, "INVALID_INPUT: test error", err.Error())
}

func TestAppError_WithCause(t *testing.T) {
	originalErr := errors.New("original error")
	err := WrapError(originalErr, ErrCodeInternal, "wrapped error", 500)

	assert.Equal(t, originalErr, err.Cause)
	assert.Contains(t, err.Error(), "original error")
	assert.ErrorIs(t, err, originalErr)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewAppError(ErrCodeInvalidInput, "test error", 400)
	err.WithContext("field", "value").WithContext("count", 42)

	assert.Equal(t, "value", err.Context["field"])
	assert.Equal(t, 42, err.Context["count"])
}

func TestGetAppError(t *testing.T) {
	appErr := NewAppError(ErrCodeInvalidInput, "test", 400)
	assert.Same(t, appErr, GetAppError(appErr))
	assert.Same(t, appErr, GetAppError(fmt.Errorf("outer: %w", appErr)))
	assert.Nil(t, GetAppError(errors.New("regular error")))
	assert.True(t, IsAppError(appErr))
	assert.False(t, IsAppError(errors.New("regular error")))
}

func TestFromAnalysisError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
	}{
		{"unrecognized", domain.ErrUnrecognizedFormat, ErrCodeUnrecognizedFormat, http.StatusUnprocessableEntity},
		{"malformed wrapped", fmt.Errorf("%w: unexpected EOF", domain.ErrMalformedDocument), ErrCodeMalformedDocument, http.StatusUnprocessableEntity},
		{"not expected", fmt.Errorf("%w: not an event-log dump", domain.ErrNotExpectedFormat), ErrCodeNotExpectedFormat, http.StatusUnprocessableEntity},
		{"too large", domain.ErrDumpTooLarge, ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"empty", domain.ErrEmptyDump, ErrCodeInvalidInput, http.StatusBadRequest},
		{"other", errors.New("boom"), ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromAnalysisError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.HTTPStatus)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}

	assert.Nil(t, FromAnalysisError(nil))
}
