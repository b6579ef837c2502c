package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode int
		wantType string
	}{
		{"not found", NewNotFound("x"), http.StatusNotFound, TypeNotFound},
		{"bad request", NewBadRequest("x"), http.StatusBadRequest, TypeBadRequest},
		{"conflict", NewConflict("x"), http.StatusConflict, TypeConflict},
		{"validation", NewValidation("x"), http.StatusUnprocessableEntity, TypeValidation},
		{"internal", NewInternal(errors.New("db down")), http.StatusInternalServerError, TypeInternal},
		{"invalid date", NewInvalidDate("x"), http.StatusUnprocessableEntity, TypeInvalidDate},
		{"unsupported calendar", NewUnsupportedCalendar("mayan"), http.StatusNotFound, TypeUnsupportedCalendar},
		{"timezone", NewTimezone("x", nil), http.StatusBadRequest, TypeTimezone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantType, tt.err.Type)
		})
	}
}

func TestIs_WrappedError(t *testing.T) {
	err := fmt.Errorf("converting: %w", NewInvalidDatef("day %d out of range", 32))

	assert.True(t, Is(err, TypeInvalidDate))
	assert.False(t, Is(err, TypeTimezone))
	assert.False(t, Is(errors.New("plain"), TypeInvalidDate))
}

func TestSafeMessage_HidesInternalErrors(t *testing.T) {
	assert.Equal(t, "an unexpected error occurred", SafeMessage(errors.New("table calendar_definitions missing")))
	assert.Equal(t, `unsupported calendar type "mayan"`, SafeMessage(NewUnsupportedCalendar("mayan")))
	assert.Equal(t, http.StatusInternalServerError, SafeCode(errors.New("boom")))
	assert.Equal(t, http.StatusUnprocessableEntity, SafeCode(NewInvalidDate("x")))
}

func TestError_IncludesInternal(t *testing.T) {
	err := NewTimezone("unknown timezone \"Mars/Olympus\"", errors.New("unknown time zone Mars/Olympus"))
	assert.Contains(t, err.Error(), "timezone_error")
	assert.Contains(t, err.Error(), "internal: unknown time zone")
	assert.ErrorContains(t, errors.Unwrap(err), "Mars/Olympus")
}
