// internal/server/handlers/profile.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fitpair/internal/adapter/storage"
	"fitpair/internal/domain/profile"
)

// ProfileStore is the persistence the profile handler talks to.
type ProfileStore interface {
	SaveProfile(ctx context.Context, p profile.Profile) error
	GetProfile(ctx context.Context, userID string) (*profile.Profile, error)
}

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	store ProfileStore
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(store ProfileStore) *ProfileHandler {
	return &ProfileHandler{store: store}
}

// GetProfile returns a user's matching preferences
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing user ID")
		return
	}

	p, err := h.store.GetProfile(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// PutProfile creates or replaces a user's matching preferences
func (h *ProfileHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing user ID")
		return
	}

	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid profile payload")
		return
	}
	p.UserID = userID
	p.UpdatedAt = time.Now()

	if err := h.store.SaveProfile(r.Context(), p); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}
