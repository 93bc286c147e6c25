package kpi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/meridianops/salesdesk/internal/http/middleware"
	"github.com/meridianops/salesdesk/pkg/logging"
)

// Handler handles HTTP requests for KPI entry and reporting.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a KPI handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Upsert handles PUT /kpi/entries requests. Non-admins may only write
// their own rows.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.StaffClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing staff identity", http.StatusUnauthorized)
		return
	}

	var entry Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if entry.PersonID == "" {
		entry.PersonID = claims.PersonID
	}
	if entry.PersonID != claims.PersonID && !claims.Admin {
		http.Error(w, "cannot submit entries for another person", http.StatusForbidden)
		return
	}

	saved, err := h.service.Upsert(r.Context(), &entry)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("kpi entry saved", "person_id", saved.PersonID, "entry_date", saved.EntryDate)
	writeJSON(w, http.StatusOK, saved)
}

// Weekly handles GET /kpi/weekly requests.
func (h *Handler) Weekly(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Weekly(r.Context(), parseAt(r), r.URL.Query().Get("person_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Monthly handles GET /kpi/monthly requests.
func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Monthly(r.Context(), parseAt(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// parseAt reads the optional ?at=RFC3339 pin; zero means "now".
func parseAt(r *http.Request) time.Time {
	if v := r.URL.Query().Get("at"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPersonRequired),
		errors.Is(err, ErrInvalidEntryDate),
		errors.Is(err, ErrNegativeCount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("kpi request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
