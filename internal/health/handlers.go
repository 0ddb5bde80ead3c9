package health

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/types"
)

// Handlers handles HTTP requests for the system health endpoints
type Handlers struct {
	monitor *Monitor
	logger  *logger.Logger
}

// NewHandlers creates new HTTP handlers
func NewHandlers(monitor *Monitor, log *logger.Logger) *Handlers {
	return &Handlers{
		monitor: monitor,
		logger:  log,
	}
}

// RegisterRoutes registers HTTP routes
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/system-status", h.SystemStatus).Methods("GET")
	router.HandleFunc("/notifications", h.Notifications).Methods("GET")
}

// SystemStatus returns the last polled channel states
func (h *Handlers) SystemStatus(w http.ResponseWriter, r *http.Request) {
	kafka, fabric := h.monitor.States()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"kafka":       kafka == types.ChannelUp,
		"fabric":      fabric == types.ChannelUp,
		"kafkaState":  kafka,
		"fabricState": fabric,
	})
}

// Notifications returns the most recent transition notifications
func (h *Handlers) Notifications(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": h.monitor.Recent(),
		"total":         h.monitor.NotificationCount(),
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithComponent("health").WithError(err).Error("Failed to encode JSON response")
	}
}
