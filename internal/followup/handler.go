package followup

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridianops/salesdesk/internal/http/middleware"
	"github.com/meridianops/salesdesk/pkg/logging"
)

// Handler exposes the follow-up list and transitions over HTTP. The
// acting person always comes from the staff JWT, never the request
// body.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a follow-up handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// ListResponse is the response for GET /followups.
type ListResponse struct {
	Items []DueItem `json:"items"`
	Count int       `json:"count"`
}

// List handles GET /followups requests.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := Filter{OwnerID: r.URL.Query().Get("owner_id")}
	if v := r.URL.Query().Get("min_score"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 3 {
			filter.MinScore = n
		}
	}
	if v := r.URL.Query().Get("max_score"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 3 {
			filter.MaxScore = n
		}
	}

	items, err := h.service.ListDue(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list follow-ups", "error", err)
		http.Error(w, "failed to list follow-ups", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{Items: items, Count: len(items)})
}

// Get handles GET /followups/{leadID} requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Claim handles POST /followups/{leadID}/claim requests.
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.StaffClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing staff identity", http.StatusUnauthorized)
		return
	}
	fu, err := h.service.Claim(r.Context(), chi.URLParam(r, "leadID"), claims.PersonID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fu)
}

// MarkFollowedUp handles POST /followups/{leadID}/follow-up requests.
// Admins implicitly get the ownership override.
func (h *Handler) MarkFollowedUp(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.StaffClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing staff identity", http.StatusUnauthorized)
		return
	}
	fu, err := h.service.MarkFollowedUp(r.Context(), chi.URLParam(r, "leadID"), claims.PersonID, claims.Admin)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fu)
}

// ReassignRequest is the body for POST /followups/{leadID}/reassign.
type ReassignRequest struct {
	OwnerPersonID string `json:"owner_person_id"`
}

// Reassign handles POST /followups/{leadID}/reassign requests
// (admin-only, enforced by the router).
func (h *Handler) Reassign(w http.ResponseWriter, r *http.Request) {
	var req ReassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	fu, err := h.service.Reassign(r.Context(), chi.URLParam(r, "leadID"), req.OwnerPersonID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fu)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrInvalidOwner):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("follow-up request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
