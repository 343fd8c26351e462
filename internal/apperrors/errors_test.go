package apperrors

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := errors.Wrap(ErrTaskNotFound, "mark done")
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("create user: %w", ErrUsernameTaken)))
	assert.Equal(t, KindInternal, KindOf(errors.New("disk on fire")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestIs_MatchesPredefinedValues(t *testing.T) {
	withCause := ErrUsernameTaken.WithCause(errors.New("UNIQUE constraint failed"))
	assert.True(t, errors.Is(withCause, ErrUsernameTaken))
	assert.False(t, errors.Is(withCause, ErrInvalidCredentials))
	assert.False(t, errors.Is(ErrInvalidToken, ErrTokenExpired))
}

func TestFrom_HidesInternalCause(t *testing.T) {
	cause := errors.New("connection refused")
	e := From(errors.Wrap(cause, "list tasks"))

	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, "An internal error occurred.", e.Message)
	assert.ErrorIs(t, e, cause)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "TOKEN_EXPIRED", KindTokenExpired.String())
	assert.Equal(t, "VALIDATION_ERROR", KindValidation.String())
	assert.Equal(t, "INTERNAL_ERROR", Kind(99).String())
}
