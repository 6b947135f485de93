package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/okanelab/ledgersheet/internal/api/middleware"
	"github.com/okanelab/ledgersheet/internal/summary"
)

// SummaryHandler serves the profit summary.
type SummaryHandler struct {
	svc *summary.Service
	log zerolog.Logger
}

// NewSummaryHandler creates a summary handler.
func NewSummaryHandler(svc *summary.Service, log zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{svc: svc, log: log}
}

// Get handles GET /api/summary with optional date_from/date_to bounds.
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var dateFrom, dateTo *time.Time
	if v := query.Get("date_from"); v != "" {
		t, err := time.Parse(dateParamLayout, v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid date_from")
			return
		}
		dateFrom = &t
	}
	if v := query.Get("date_to"); v != "" {
		t, err := time.Parse(dateParamLayout, v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid date_to")
			return
		}
		dateTo = &t
	}

	sum, err := h.svc.Compute(r.Context(), dateFrom, dateTo)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to compute summary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute summary")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, sum)
}
