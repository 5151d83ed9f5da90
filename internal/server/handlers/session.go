// internal/server/handlers/session.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fitpair/internal/domain/geo"
	"fitpair/internal/domain/movement"
	"fitpair/internal/service/session"
)

// SessionManager is the session lifecycle the handler drives.
type SessionManager interface {
	Start(userID string) string
	End(sessionID string) error
	Pause(sessionID string) error
	Resume(sessionID string) error
	State(sessionID string) (movement.State, error)
	Observe(sessionID string, sample movement.Sample) error
}

// SessionHandler handles workout session HTTP requests
type SessionHandler struct {
	manager SessionManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager SessionManager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

type startSessionRequest struct {
	UserID string `json:"user_id"`
}

// StartSession begins a new workout session
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing user_id")
		return
	}

	id := h.manager.Start(req.UserID)
	respondWithJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

// EndSession tears a session down
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.End(chi.URLParam(r, "id")); err != nil {
		respondSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PauseSession suppresses inactivity prompts for a session
func (h *SessionHandler) PauseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Pause(chi.URLParam(r, "id")); err != nil {
		respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

// ResumeSession re-enables inactivity prompts
func (h *SessionHandler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Resume(chi.URLParam(r, "id")); err != nil {
		respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

// GetSessionState returns the current movement verdict
func (h *SessionHandler) GetSessionState(w http.ResponseWriter, r *http.Request) {
	state, err := h.manager.State(chi.URLParam(r, "id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"state": state.String()})
}

type positionRequest struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Time      *time.Time `json:"time,omitempty"`
}

// PostPosition feeds one GPS fix into a session, for clients that
// cannot hold a socket open.
func (h *SessionHandler) PostPosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid position payload")
		return
	}

	ts := time.Now()
	if req.Time != nil {
		ts = *req.Time
	}

	err := h.manager.Observe(chi.URLParam(r, "id"), movement.Sample{
		Position: geo.Location{Latitude: req.Latitude, Longitude: req.Longitude},
		Time:     ts,
	})
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func respondSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		respondWithError(w, http.StatusNotFound, "Session not found")
		return
	}
	respondWithError(w, http.StatusInternalServerError, "Session operation failed")
}
