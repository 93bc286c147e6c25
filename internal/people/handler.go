package people

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridianops/salesdesk/internal/buscal"
	"github.com/meridianops/salesdesk/pkg/logging"
)

// Handler handles HTTP requests for the staff directory and targets.
// Mutations sit behind the admin subtree in the router.
type Handler struct {
	repo   Repository
	cal    *buscal.Calendar
	clock  buscal.Clock
	logger *logging.Logger
}

// NewHandler creates a people handler. The calendar derives weekly
// quotas from monthly ones on the read path.
func NewHandler(repo Repository, cal *buscal.Calendar, clock buscal.Clock, logger *logging.Logger) *Handler {
	if clock == nil {
		clock = buscal.SystemClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, cal: cal, clock: clock, logger: logger}
}

// ListResponse is the response for listing people.
type ListResponse struct {
	People []*Person `json:"people"`
	Count  int       `json:"count"`
}

// List handles GET /people requests. ?all=true includes deactivated
// staff.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	list, err := h.repo.List(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("failed to list people", "error", err)
		http.Error(w, "failed to list people", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{People: list, Count: len(list)})
}

// Get handles GET /people/{personID} requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.Get(r.Context(), chi.URLParam(r, "personID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create handles POST /admin/people requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("person created", "id", p.ID, "name", p.Name, "role", p.Role)
	writeJSON(w, http.StatusCreated, p)
}

// Deactivate handles POST /admin/people/{personID}/deactivate
// requests.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "personID")
	if err := h.repo.Deactivate(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("person deactivated", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// TargetResponse pairs the stored monthly quota with its derived
// weekly equivalent for the current business month.
type TargetResponse struct {
	Target         *Target `json:"target"`
	WeeklyMeetings int     `json:"weekly_meetings"`
	WeeklyCloses   int     `json:"weekly_closes"`
}

// GetTarget handles GET /people/{personID}/target requests.
func (h *Handler) GetTarget(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.GetTarget(r.Context(), chi.URLParam(r, "personID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	now := h.clock()
	writeJSON(w, http.StatusOK, TargetResponse{
		Target:         t,
		WeeklyMeetings: h.cal.WeeklyFromMonthly(t.MeetingsMonthly, now),
		WeeklyCloses:   h.cal.WeeklyFromMonthly(t.ClosesMonthly, now),
	})
}

// UpsertTargetRequest is the body for PUT /admin/targets/{personID}.
type UpsertTargetRequest struct {
	MeetingsMonthly int `json:"meetings_monthly"`
	ClosesMonthly   int `json:"closes_monthly"`
}

// UpsertTarget handles PUT /admin/targets/{personID} requests.
func (h *Handler) UpsertTarget(w http.ResponseWriter, r *http.Request) {
	var req UpsertTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	t := &Target{
		PersonID:        chi.URLParam(r, "personID"),
		MeetingsMonthly: req.MeetingsMonthly,
		ClosesMonthly:   req.ClosesMonthly,
	}
	saved, err := h.repo.UpsertTarget(r.Context(), t)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("target upserted", "person_id", saved.PersonID, "meetings_monthly", saved.MeetingsMonthly)
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrNegativeTarget):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("people request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
