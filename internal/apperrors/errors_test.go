package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("delete user: %w", Conflict("user %d is still referenced", 7))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "delete user: user 7 is still referenced", err.Error())

	var appErr *Error
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "user 7 is still referenced", appErr.Message)
}

func TestConstructors(t *testing.T) {
	assert.ErrorIs(t, NotFound("project %d not found", 1), ErrNotFound)
	assert.ErrorIs(t, Validation("bad"), ErrValidation)
	assert.Equal(t, "project 1 not found", NotFound("project %d not found", 1).Error())
}
