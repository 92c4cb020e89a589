package middleware

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleForm struct {
	Name  string `form:"name" binding:"required,max=5"`
	Email string `form:"email" binding:"required,crm_email"`
}

func TestValidationMessage(t *testing.T) {
	SetupValidator()
	SetupValidator()

	cases := []struct {
		form sampleForm
		want string
	}{
		{sampleForm{Email: "bob@example.com"}, "Name is required."},
		{sampleForm{Name: "Robert Paulson", Email: "bob@example.com"}, "Name cannot exceed 5 characters."},
		{sampleForm{Name: "Bob", Email: "bob@example"}, "Invalid email address."},
		{sampleForm{Name: "Bob"}, "Email is required."},
	}
	for _, tc := range cases {
		err := binding.Validator.ValidateStruct(tc.form)
		require.Error(t, err)
		assert.Equal(t, tc.want, ValidationMessage(err))
	}

	assert.NoError(t, binding.Validator.ValidateStruct(sampleForm{Name: "Bob", Email: "bob@example.com"}))
	assert.Equal(t, "Invalid form submission.", ValidationMessage(errors.New("EOF")))
}
