package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/profile-service/internal/model"
	"github.com/SARVESHVARADKAR123/profile-service/internal/observability"
)

type ProfileService interface {
	FetchOrCreateDemo(ctx context.Context) (*model.Profile, error)
	Upsert(ctx context.Context, u model.ProfileUpdate) (*model.Profile, error)
	ListAll(ctx context.Context) ([]model.Profile, error)
}

// ProfileHandler exposes HTTP endpoints for profile operations.
type ProfileHandler struct {
	s   ProfileService
	log *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(s ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{s: s, log: log}
}

// Get returns the demo profile, creating it on first access.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.s.FetchOrCreateDemo(r.Context())
	if err != nil {
		writeError(w, observability.WithTrace(r.Context(), h.log), err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Update upserts a profile keyed by the email in the body.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  *string `json:"name"`
		Email string  `json:"email"`
		Bio   *string `json:"bio"`
	}

	// An empty body is an empty object.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	p, err := h.s.Upsert(r.Context(), model.ProfileUpdate{
		Email: req.Email,
		Name:  req.Name,
		Bio:   req.Bio,
	})
	if err != nil {
		writeError(w, observability.WithTrace(r.Context(), h.log), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": p})
}

// List returns every stored profile.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.s.ListAll(r.Context())
	if err != nil {
		writeError(w, observability.WithTrace(r.Context(), h.log), err)
		return
	}

	writeJSON(w, http.StatusOK, profiles)
}
