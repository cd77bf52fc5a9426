package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/profile-service/internal/model"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// MapError converts a service error into an HTTP status and response body.
func MapError(err error) (int, errorResponse) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorResponse{Error: ve.Error(), Details: ve.Fields}

	case errors.Is(err, model.ErrUnavailable):
		return http.StatusServiceUnavailable, errorResponse{
			Error:   "Database unavailable",
			Message: "Please try again later",
		}

	default:
		return http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"}
	}
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status, body := MapError(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, body)
}
