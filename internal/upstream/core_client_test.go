package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medshare/portal-dashboard/pkg/config"
	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/monitoring"
	"github.com/medshare/portal-dashboard/pkg/types"
)

var testMetrics = monitoring.NewMetricsCollector("upstream-test")

func coreClientFor(server *httptest.Server) *CoreClient {
	cfg := &config.UpstreamConfig{
		CoreBaseURL:    server.URL,
		RequestTimeout: 5,
	}
	return NewCoreClient(cfg, logger.New("error"), testMetrics)
}

func TestSubmitRequestJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/request", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload types.SubmitRequestPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, []string{"P001", "P002"}, payload.PatientIDs)

		json.NewEncoder(w).Encode(types.SubmitRequestResponse{RequestID: "REQ-7", Message: "submitted"})
	}))
	defer server.Close()

	client := coreClientFor(server)

	response, err := client.SubmitRequest(context.Background(), &types.SubmitRequestPayload{
		DoctorID:   "D001",
		PatientIDs: []string{"P001", "P002"},
		Purpose:    "Treatment",
	})

	assert.NoError(t, err)
	assert.Equal(t, "REQ-7", response.RequestID)
	assert.Equal(t, "submitted", response.Message)
}

func TestSubmitRequestBareStringResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Request submitted successfully\n"))
	}))
	defer server.Close()

	client := coreClientFor(server)

	response, err := client.SubmitRequest(context.Background(), &types.SubmitRequestPayload{
		PatientIDs: []string{"P001"},
		Purpose:    "Treatment",
	})

	assert.NoError(t, err)
	assert.Empty(t, response.RequestID)
	assert.Equal(t, "Request submitted successfully", response.Message)
}

func TestSubmitRequestPreservesServerErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "Request already exists for P001"})
	}))
	defer server.Close()

	client := coreClientFor(server)

	_, err := client.SubmitRequest(context.Background(), &types.SubmitRequestPayload{
		PatientIDs: []string{"P001"},
		Purpose:    "Treatment",
	})

	var portalErr *types.PortalError
	assert.ErrorAs(t, err, &portalErr)
	assert.Equal(t, "Request already exists for P001", portalErr.Message)
}

func TestSubmitRequestFallbackErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := coreClientFor(server)

	_, err := client.SubmitRequest(context.Background(), &types.SubmitRequestPayload{
		PatientIDs: []string{"P001"},
		Purpose:    "Treatment",
	})

	var portalErr *types.PortalError
	assert.ErrorAs(t, err, &portalErr)
	assert.Equal(t, "Failed to submit patient request.", portalErr.Message)
}

func TestGetPatientRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/request/records", r.URL.Path)
		json.NewEncoder(w).Encode([]*types.PatientRecord{
			{ID: "1", RequestID: "REQ-1", PatientID: "P001", Name: "Ama Owusu"},
			{ID: "2", RequestID: "REQ-2", PatientID: "P002", Name: "Kofi Boateng"},
		})
	}))
	defer server.Close()

	client := coreClientFor(server)

	records, err := client.GetPatientRecords(context.Background())

	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "P001", records[0].PatientID)
}

func TestDownloadReport(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/request/records/REQ-1/pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	}))
	defer server.Close()

	client := coreClientFor(server)

	data, err := client.DownloadReport(context.Background(), "REQ-1")

	assert.NoError(t, err)
	assert.Equal(t, pdf, data)
}

func TestDownloadReportNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := coreClientFor(server)

	_, err := client.DownloadReport(context.Background(), "REQ-404")

	var portalErr *types.PortalError
	assert.ErrorAs(t, err, &portalErr)
	assert.Equal(t, types.ErrCodeNotFound, portalErr.Code)
}
