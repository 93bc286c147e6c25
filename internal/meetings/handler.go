package meetings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridianops/salesdesk/internal/buscal"
	"github.com/meridianops/salesdesk/pkg/logging"
)

// Handler handles HTTP requests for meetings.
type Handler struct {
	repo       Repository
	clock      buscal.Clock
	interval   time.Duration
	invalidate func(r *http.Request)
	logger     *logging.Logger
}

// NewHandler creates a meetings handler. onWrite runs after every
// successful mutation (used to invalidate the leaderboard cache).
func NewHandler(repo Repository, clock buscal.Clock, interval time.Duration, onWrite func(r *http.Request), logger *logging.Logger) *Handler {
	if clock == nil {
		clock = buscal.SystemClock()
	}
	if interval <= 0 {
		interval = 72 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, clock: clock, interval: interval, invalidate: onWrite, logger: logger}
}

// Log handles POST /meetings requests. The new lead gets its first
// follow-up scheduled one interval out.
func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	var req LogMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	m, err := h.repo.Log(r.Context(), &req, h.clock().Add(h.interval))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("meeting logged", "id", m.ID, "booked_by", m.BookedByPersonID, "score", m.LeadScore)
	h.afterWrite(r)
	writeJSON(w, http.StatusCreated, m)
}

// ListResponse is the response for listing meetings.
type ListResponse struct {
	Meetings []*Meeting `json:"meetings"`
	Count    int        `json:"count"`
}

// List handles GET /meetings requests. Only active (non-discarded)
// meetings appear here.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{}
	if v := r.URL.Query().Get("from"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &ts
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &ts
		}
	}
	if v := r.URL.Query().Get("scores"); v != "" {
		for _, part := range strings.Split(v, ",") {
			if n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil && n >= 1 && n <= 3 {
				filter.Scores = append(filter.Scores, n)
			}
		}
	}

	list, err := h.repo.ListActive(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list meetings", "error", err)
		http.Error(w, "failed to list meetings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Meetings: list, Count: len(list)})
}

// Get handles GET /meetings/{meetingID} requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.repo.Get(r.Context(), chi.URLParam(r, "meetingID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// UpdateOutcome handles PATCH /meetings/{meetingID}/outcome requests.
func (h *Handler) UpdateOutcome(w http.ResponseWriter, r *http.Request) {
	var upd OutcomeUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	m, err := h.repo.UpdateOutcome(r.Context(), chi.URLParam(r, "meetingID"), &upd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.afterWrite(r)
	writeJSON(w, http.StatusOK, m)
}

// Close handles POST /meetings/{meetingID}/close requests.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	m, err := h.repo.Close(r.Context(), chi.URLParam(r, "meetingID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("meeting closed", "id", m.ID)
	h.afterWrite(r)
	writeJSON(w, http.StatusOK, m)
}

// Discard handles DELETE /meetings/{meetingID} requests. The row is
// hidden from views but keeps feeding historical aggregates.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	m, err := h.repo.Discard(r.Context(), chi.URLParam(r, "meetingID"), h.clock())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("meeting discarded", "id", m.ID)
	h.afterWrite(r)
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) afterWrite(r *http.Request) {
	if h.invalidate != nil {
		h.invalidate(r)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrAlreadyClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrOccursAtRequired),
		errors.Is(err, ErrBookedByRequired),
		errors.Is(err, ErrInvalidScore):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("meeting request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
