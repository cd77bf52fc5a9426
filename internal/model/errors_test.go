package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("email", "Email is required")
	assert.Equal(t, "Email is required", err.Error())

	multi := &ValidationError{Fields: map[string]string{
		"name":  "Name is too long",
		"email": "Email is required",
	}}
	assert.Equal(t, "Email is required; Name is too long", multi.Error())

	var ve *ValidationError
	wrapped := fmt.Errorf("upsert: %w", err)
	assert.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "Email is required", ve.Fields["email"])
}
