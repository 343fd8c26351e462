package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isdelr/tasklist-be/internal/apperrors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{apperrors.Validation("Password must be at least 6 characters"), http.StatusBadRequest, "VALIDATION_ERROR", "Password must be at least 6 characters"},
		{apperrors.ErrUsernameTaken, http.StatusConflict, "CONFLICT", "Username already taken"},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "AUTHENTICATION_FAILED", "Invalid credentials"},
		{apperrors.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired. Please log in again."},
		{errors.Wrap(apperrors.ErrTaskNotFound, "delete"), http.StatusNotFound, "NOT_FOUND", "Task not found"},
		{errors.New("pq: relation does not exist"), http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred."},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Error(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil), tc.err)

		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Code)
		assert.Equal(t, tc.msg, body.Error)
	}
}
