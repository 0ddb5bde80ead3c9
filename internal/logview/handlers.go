package logview

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/medshare/portal-dashboard/pkg/interfaces"
	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/types"
)

// Handlers handles HTTP requests for the log viewing and analytics
// endpoints
type Handlers struct {
	service *Service
	repo    interfaces.RequestRepository
	logger  *logger.Logger
}

// NewHandlers creates new HTTP handlers
func NewHandlers(service *Service, repo interfaces.RequestRepository, log *logger.Logger) *Handlers {
	return &Handlers{
		service: service,
		repo:    repo,
		logger:  log,
	}
}

// RegisterRoutes registers HTTP routes
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/access-logs", h.AccessLogs).Methods("GET")
	router.HandleFunc("/access-logs/{logID}", h.AccessLogDetail).Methods("GET")
	router.HandleFunc("/fabric-logs", h.FabricLogs).Methods("GET")
	router.HandleFunc("/fabric-logs/{logID}", h.FabricLogDetail).Methods("GET")

	router.HandleFunc("/analytics/access", h.AccessAnalytics).Methods("GET")
	router.HandleFunc("/analytics/fabric", h.FabricAnalytics).Methods("GET")

	router.HandleFunc("/summary", h.Summary).Methods("GET")
}

// AccessLogs returns a filtered page of access logs
func (h *Handlers) AccessLogs(w http.ResponseWriter, r *http.Request) {
	query, page, size := h.tableParams(r)

	result, err := h.service.AccessLogs(r.Context(), query, page, size)
	if err != nil {
		h.logger.WithComponent("logview").WithError(err).Error("Failed to fetch access logs")
		h.writePortalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// AccessLogDetail returns one access log record's full field set
func (h *Handlers) AccessLogDetail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	detail, err := h.service.AccessLogDetail(r.Context(), vars["logID"])
	if err != nil {
		h.logger.WithComponent("logview").WithError(err).Error("Failed to fetch access log detail")
		h.writePortalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, detail)
}

// FabricLogs returns a filtered page of fabric transaction logs
func (h *Handlers) FabricLogs(w http.ResponseWriter, r *http.Request) {
	query, page, size := h.tableParams(r)

	result, err := h.service.FabricLogs(r.Context(), query, page, size)
	if err != nil {
		h.logger.WithComponent("logview").WithError(err).Error("Failed to fetch fabric logs")
		h.writePortalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// FabricLogDetail returns one fabric log record's full field set from
// the cached collection
func (h *Handlers) FabricLogDetail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	detail, err := h.service.FabricLogDetail(vars["logID"])
	if err != nil {
		h.writePortalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, detail)
}

// AccessAnalytics returns access log analytics
func (h *Handlers) AccessAnalytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.AccessAnalytics(r.Context())
	if err != nil {
		h.logger.WithComponent("logview").WithError(err).Error("Failed to build access analytics")
		h.writePortalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

// FabricAnalytics returns fabric log analytics
func (h *Handlers) FabricAnalytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.FabricAnalytics(r.Context())
	if err != nil {
		h.logger.WithComponent("logview").WithError(err).Error("Failed to build fabric analytics")
		h.writePortalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, snapshot)
}

// Summary returns the dashboard summary counts
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	requests := h.repo.Requests()

	patients := make(map[string]bool)
	for _, request := range requests {
		for _, id := range request.PatientIDs {
			patients[id] = true
		}
	}

	counts, err := h.service.Summary(r.Context(), len(requests), len(patients))
	if err != nil {
		h.logger.WithComponent("logview").WithError(err).Error("Failed to build summary")
		h.writePortalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, counts)
}

// tableParams extracts the shared search and pagination parameters
func (h *Handlers) tableParams(r *http.Request) (query string, page, size int) {
	values := r.URL.Query()

	query = values.Get("q")
	size = DefaultPageSize

	if p, err := strconv.Atoi(values.Get("page")); err == nil && p >= 0 {
		page = p
	}
	if s, err := strconv.Atoi(values.Get("size")); err == nil {
		size = NormalizePageSize(s)
	}

	return query, page, size
}

// writePortalError maps a structured error to its HTTP status
func (h *Handlers) writePortalError(w http.ResponseWriter, err error) {
	var portalErr *types.PortalError
	if !errors.As(err, &portalErr) {
		h.writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch portalErr.Type {
	case types.ErrorTypeNotFound:
		status = http.StatusNotFound
	case types.ErrorTypeUpstream:
		status = http.StatusBadGateway
	}

	h.writeError(w, status, portalErr.Code, portalErr.Message)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithComponent("logview").WithError(err).Error("Failed to encode JSON response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
