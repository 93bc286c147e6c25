package leaderboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/meridianops/salesdesk/pkg/logging"
)

// Handler handles HTTP requests for the leaderboard.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a leaderboard handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Current handles GET /leaderboard requests. ?at=RFC3339 pins the
// month for historical views.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	var at time.Time
	if v := r.URL.Query().Get("at"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			at = ts
		}
	}

	board, err := h.service.Current(r.Context(), at)
	if err != nil {
		h.logger.Error("failed to build leaderboard", "error", err)
		http.Error(w, "failed to build leaderboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(board)
}
