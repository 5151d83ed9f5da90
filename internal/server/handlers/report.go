// internal/server/handlers/report.go

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fitpair/internal/domain/match"
	"fitpair/internal/service/reports"
)

// ReportIntake accepts and withdraws live location reports.
type ReportIntake interface {
	Submit(ctx context.Context, r match.Report) error
	Withdraw(ctx context.Context, userID string) error
}

// ReportHandler handles location report HTTP requests
type ReportHandler struct {
	intake ReportIntake
}

// NewReportHandler creates a new report handler
func NewReportHandler(intake ReportIntake) *ReportHandler {
	return &ReportHandler{intake: intake}
}

// PutReport overwrites the caller's current location report
func (h *ReportHandler) PutReport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing user ID")
		return
	}

	var report match.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid report payload")
		return
	}
	report.UserID = userID

	if err := h.intake.Submit(r.Context(), report); err != nil {
		if errors.Is(err, reports.ErrBadCoordinates) || errors.Is(err, reports.ErrUnknownActivity) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to store report")
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// DeleteReport withdraws the caller from the live pool
func (h *ReportHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing user ID")
		return
	}

	if err := h.intake.Withdraw(r.Context(), userID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to withdraw report")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
