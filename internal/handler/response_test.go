package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SARVESHVARADKAR123/profile-service/internal/model"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "validation",
			err:     model.NewValidationError("email", "Email is required"),
			status:  http.StatusBadRequest,
			message: "Email is required",
		},
		{
			name:    "wrapped validation",
			err:     fmt.Errorf("upsert: %w", model.NewValidationError("email", "Email is required")),
			status:  http.StatusBadRequest,
			message: "Email is required",
		},
		{
			name:    "unavailable",
			err:     fmt.Errorf("failed to upsert profile: %w", model.ErrUnavailable),
			status:  http.StatusServiceUnavailable,
			message: "Database unavailable",
		},
		{
			name:    "duplicate after retry",
			err:     model.ErrDuplicateEmail,
			status:  http.StatusInternalServerError,
			message: "Internal Server Error",
		},
		{
			name:    "unknown",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			message: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := MapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, body.Error)
		})
	}
}

func TestMapError_ValidationDetails(t *testing.T) {
	_, body := MapError(model.NewValidationError("email", "Email is required"))
	assert.Equal(t, map[string]string{"email": "Email is required"}, body.Details)
}
