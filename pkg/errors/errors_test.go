package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors_StatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"unauthenticated", Unauthenticated("no token", nil), CodeUnauthenticated, http.StatusUnauthorized},
		{"forbidden", Forbidden("not a driver", nil), CodeForbidden, http.StatusForbidden},
		{"validation", Validation("bad status", nil), CodeValidation, http.StatusBadRequest},
		{"not found", NotFound("missing", nil), CodeNotFound, http.StatusNotFound},
		{"conflict", Conflict("exists", nil), CodeConflict, http.StatusConflict},
		{"store", StoreUnavailable("down", nil), CodeStoreUnavailable, http.StatusInternalServerError},
		{"not implemented", NotImplemented("nope", nil), CodeNotImplemented, http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
		})
	}
}

func TestIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("publish: %w", StoreUnavailable("Failed to store driver", stderrors.New("dial tcp")))

	assert.True(t, stderrors.Is(err, ErrStoreUnavailable))
	assert.False(t, stderrors.Is(err, ErrValidation))
}

func TestGetAppError_WrapsUnknownAsInternal(t *testing.T) {
	appErr := GetAppError(stderrors.New("boom"))

	assert.Equal(t, CodeInternal, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestError_IncludesCause(t *testing.T) {
	err := StoreUnavailable("Failed to scan drivers", stderrors.New("timeout"))

	assert.Equal(t, "Failed to scan drivers: timeout", err.Error())
	assert.Equal(t, "Failed to scan drivers", Validation("Failed to scan drivers", nil).Error())
}
