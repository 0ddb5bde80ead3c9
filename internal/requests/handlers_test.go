package requests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/medshare/portal-dashboard/pkg/types"
)

func newTestRouter(core *mockCoreClient, repo *fakeRepository) *mux.Router {
	validator := NewValidator(repo, testLogger())
	debounced := NewDebouncedValidator(validator, 50*time.Millisecond, testLogger())
	service := NewSubmissionService(core, repo, validator, testLogger(), testMetrics)
	handlers := NewHandlers(service, repo, core, debounced, testLogger())

	router := mux.NewRouter()
	handlers.RegisterRoutes(router)
	return router
}

func TestSubmitRequestEndpoint(t *testing.T) {
	core := new(mockCoreClient)
	repo := &fakeRepository{}
	router := newTestRouter(core, repo)

	core.On("SubmitRequest", mock.Anything, mock.Anything).
		Return(&types.SubmitRequestResponse{RequestID: "REQ-5"}, nil)

	body := `{"doctorId":"D001","doctorName":"Dr. Osei","patientIds":"P001,P002","purpose":"Treatment"}`
	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusCreated, recorder.Code)

	var request types.DataRequest
	assert.NoError(t, json.NewDecoder(recorder.Body).Decode(&request))
	assert.Equal(t, "REQ-5", request.RequestID)
	assert.Equal(t, []string{"P001", "P002"}, request.PatientIDs)
}

func TestSubmitRequestEndpointValidationFailure(t *testing.T) {
	core := new(mockCoreClient)
	router := newTestRouter(core, &fakeRepository{})

	body := `{"doctorId":"D001","patientIds":"P001","purpose":""}`
	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), types.ErrCodePurposeRequired)
	core.AssertNotCalled(t, "SubmitRequest", mock.Anything, mock.Anything)
}

func TestSubmitRequestEndpointDuplicateConflict(t *testing.T) {
	core := new(mockCoreClient)
	repo := &fakeRepository{
		requests: []*types.DataRequest{{RequestID: "REQ-1", PatientIDs: []string{"P001"}}},
	}
	router := newTestRouter(core, repo)

	body := `{"doctorId":"D001","patientIds":"P001","purpose":"Treatment"}`
	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestSubmitRequestEndpointMalformedJSON(t *testing.T) {
	router := newTestRouter(new(mockCoreClient), &fakeRepository{})

	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader("{not json"))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestValidateIdentifiersEndpoint(t *testing.T) {
	router := newTestRouter(new(mockCoreClient), &fakeRepository{})

	req := httptest.NewRequest(http.MethodGet, "/requests/validate?ids=P001,PXX", nil)
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var result types.Classification
	assert.NoError(t, json.NewDecoder(recorder.Body).Decode(&result))
	// the scheduled check has not landed yet
	assert.True(t, result.Checking)
}

func TestListRecordsEndpointFilters(t *testing.T) {
	core := new(mockCoreClient)
	router := newTestRouter(core, &fakeRepository{})

	core.On("GetPatientRecords", mock.Anything).Return([]*types.PatientRecord{
		{ID: "1", PatientID: "P001", Name: "Ama Owusu"},
		{ID: "2", PatientID: "P002", Name: "Kofi Boateng"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/records?q=owusu", nil)
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var records []*types.PatientRecord
	assert.NoError(t, json.NewDecoder(recorder.Body).Decode(&records))
	assert.Len(t, records, 1)
	assert.Equal(t, "P001", records[0].PatientID)
}

func TestDownloadReportEndpoint(t *testing.T) {
	core := new(mockCoreClient)
	router := newTestRouter(core, &fakeRepository{})

	core.On("DownloadReport", mock.Anything, "REQ-1").Return([]byte("%PDF-1.4"), nil)

	req := httptest.NewRequest(http.MethodGet, "/records/REQ-1/pdf", nil)
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/pdf", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4", recorder.Body.String())
}
