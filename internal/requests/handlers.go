package requests

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/medshare/portal-dashboard/internal/logview"
	"github.com/medshare/portal-dashboard/pkg/interfaces"
	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/types"
)

// Handlers handles HTTP requests for the request submission and
// patient records endpoints
type Handlers struct {
	service   *SubmissionService
	repo      interfaces.RequestRepository
	core      interfaces.CoreClient
	debounced *DebouncedValidator
	logger    *logger.Logger
}

// NewHandlers creates new HTTP handlers
func NewHandlers(
	service *SubmissionService,
	repo interfaces.RequestRepository,
	core interfaces.CoreClient,
	debounced *DebouncedValidator,
	log *logger.Logger,
) *Handlers {
	return &Handlers{
		service:   service,
		repo:      repo,
		core:      core,
		debounced: debounced,
		logger:    log,
	}
}

// RegisterRoutes registers HTTP routes
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/requests", h.SubmitRequest).Methods("POST")
	router.HandleFunc("/requests", h.ListRequests).Methods("GET")
	router.HandleFunc("/requests/validate", h.ValidateIdentifiers).Methods("GET")

	router.HandleFunc("/records", h.ListRecords).Methods("GET")
	router.HandleFunc("/records/{requestID}/pdf", h.DownloadReport).Methods("GET")
}

// SubmitRequest handles data request submission
func (h *Handlers) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var input SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	request, err := h.service.Submit(r.Context(), &input)
	if err != nil {
		h.logger.WithComponent("requests").WithError(err).Warn("Request submission rejected")
		h.writePortalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, request)
}

// ListRequests returns all requests known locally
func (h *Handlers) ListRequests(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.repo.Requests())
}

// ValidateIdentifiers schedules a debounced classification of the
// given identifiers and returns the most recent applied result. While
// the scheduled check has not landed the response reports checking and
// consumers must keep submission disabled.
func (h *Handlers) ValidateIdentifiers(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")

	h.debounced.Schedule(raw, nil)

	h.writeJSON(w, http.StatusOK, h.debounced.Latest())
}

// ListRecords returns patient records, optionally filtered by a
// full-field search query
func (h *Handlers) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.core.GetPatientRecords(r.Context())
	if err != nil {
		h.logger.WithComponent("requests").WithError(err).Error("Failed to fetch patient records")
		h.writePortalError(w, err)
		return
	}

	query := r.URL.Query().Get("q")
	if query != "" {
		var filtered []*types.PatientRecord
		for _, record := range records {
			if logview.Matches(record, query) {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}

	h.writeJSON(w, http.StatusOK, records)
}

// DownloadReport streams a request's PDF report
func (h *Handlers) DownloadReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := vars["requestID"]

	report, err := h.core.DownloadReport(r.Context(), requestID)
	if err != nil {
		h.logger.WithComponent("requests").WithError(err).Error("Failed to download report")
		h.writePortalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report); err != nil {
		h.logger.WithComponent("requests").WithError(err).Error("Failed to stream report")
	}
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
	case types.ErrorTypeValidation:
		status = http.StatusBadRequest
	case types.ErrorTypeDuplicate:
		status = http.StatusConflict
	case types.ErrorTypeNotFound:
		status = http.StatusNotFound
	case types.ErrorTypeUpstream:
		status = http.StatusBadGateway
	}

	h.writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    portalErr.Code,
			"message": portalErr.Message,
			"details": portalErr.Details,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithComponent("requests").WithError(err).Error("Failed to encode JSON response")
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
