package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	err := NewNotFoundError("Client not found.")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, NewForbiddenError("x")))
	assert.True(t, errors.Is(fmt.Errorf("load client: %w", err), ErrNotFound))
	assert.Equal(t, "Client not found.", err.Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(NewValidationError("bad")))
	assert.Equal(t, CodeAlreadyExists, CodeOf(fmt.Errorf("wrap: %w", NewConflictError("dup"))))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))

	assert.True(t, IsCode(ErrInvalidCredentials, CodeInvalidCredentials))
	assert.False(t, IsCode(nil, CodeNotFound))
}
