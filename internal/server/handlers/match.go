// internal/server/handlers/match.go

package handlers

import (
	"context"
	"net/http"

	"fitpair/internal/domain/match"
)

// MatchFinder runs a matching query for a user.
type MatchFinder interface {
	FindMatches(ctx context.Context, userID string) ([]match.Result, error)
}

// MatchHandler handles match query HTTP requests
type MatchHandler struct {
	finder MatchFinder
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(finder MatchFinder) *MatchHandler {
	return &MatchHandler{finder: finder}
}

type matchResponse struct {
	Matches []match.Result `json:"matches"`
}

// GetMatches returns the ranked list of compatible nearby users
func (h *MatchHandler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing user_id parameter")
		return
	}

	results, err := h.finder.FindMatches(r.Context(), userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to find matches")
		return
	}

	if results == nil {
		results = []match.Result{}
	}
	respondWithJSON(w, http.StatusOK, matchResponse{Matches: results})
}
