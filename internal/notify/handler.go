package notify

import (
	"encoding/json"
	"net/http"

	"github.com/meridianops/salesdesk/pkg/logging"
)

// Handler exposes the admin-only reminder trigger.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a reminders handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// RunDigest handles POST /admin/reminders/run.
func (h *Handler) RunDigest(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RunOverdueDigest(r.Context())
	if err != nil {
		h.logger.Error("overdue digest run failed", "error", err)
		http.Error(w, "digest run failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
