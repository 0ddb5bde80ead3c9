package requests

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/medshare/portal-dashboard/pkg/interfaces"
	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/monitoring"
	"github.com/medshare/portal-dashboard/pkg/types"
)

// SubmissionService orchestrates validation, duplicate detection,
// submission and local state reconciliation for new data requests
type SubmissionService struct {
	core      interfaces.CoreClient
	repo      interfaces.RequestRepository
	validator *Validator
	logger    *logger.Logger
	metrics   *monitoring.MetricsCollector
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	core interfaces.CoreClient,
	repo interfaces.RequestRepository,
	validator *Validator,
	log *logger.Logger,
	metrics *monitoring.MetricsCollector,
) *SubmissionService {
	return &SubmissionService{
		core:      core,
		repo:      repo,
		validator: validator,
		logger:    log,
		metrics:   metrics,
	}
}

// SubmitInput carries one submission attempt
type SubmitInput struct {
	DoctorID      string `json:"doctorId"`
	DoctorName    string `json:"doctorName"`
	HospitalName  string `json:"hospitalName"`
	PatientIDsRaw string `json:"patientIds"`
	Purpose       string `json:"purpose"`
}

// Submit validates and submits a new data request. Preconditions are
// checked in order and short-circuit on first failure: non-empty
// purpose, well-formed identifiers, no already-requested identifier,
// and no existing request with the same identifier set. No network
// call is made before the purpose and format checks pass. On success
// the new request is appended to local state; on remote failure local
// state is left unchanged.
func (s *SubmissionService) Submit(ctx context.Context, input *SubmitInput) (*types.DataRequest, error) {
	purpose := strings.TrimSpace(input.Purpose)
	if purpose == "" {
		s.metrics.RecordSubmission("rejected")
		return nil, types.NewValidationError(types.ErrCodePurposeRequired, "Purpose is required", nil)
	}

	ids := SplitIdentifiers(input.PatientIDsRaw)
	if len(ids) == 0 {
		s.metrics.RecordSubmission("rejected")
		return nil, types.NewValidationError(types.ErrCodeInvalidPatientID,
			"Enter valid comma-separated patient IDs like P001", nil)
	}

	var malformed []string
	for _, id := range ids {
		if !types.PatientIDPattern.MatchString(id) {
			malformed = append(malformed, id)
		}
	}
	if len(malformed) > 0 {
		s.metrics.RecordSubmission("rejected")
		return nil, types.NewValidationError(types.ErrCodeInvalidPatientID,
			fmt.Sprintf("Some patient IDs are invalid: %s", strings.Join(malformed, ", ")),
			map[string]interface{}{"invalid_ids": malformed})
	}

	classification := s.validator.Classify(ctx, input.PatientIDsRaw)
	if len(classification.AlreadyRequested) > 0 {
		s.metrics.RecordSubmission("rejected")
		return nil, types.NewDuplicateError(types.ErrCodeAlreadyRequested,
			fmt.Sprintf("Already requested IDs: %s", strings.Join(classification.AlreadyRequested, ", ")),
			map[string]interface{}{"already_requested": classification.AlreadyRequested})
	}

	if s.hasDuplicateSet(ids) {
		s.metrics.RecordSubmission("rejected")
		return nil, types.NewDuplicateError(types.ErrCodeDuplicateSet,
			"A request with these exact patient IDs already exists.", nil)
	}

	payload := &types.SubmitRequestPayload{
		DoctorID:     input.DoctorID,
		DoctorName:   input.DoctorName,
		PatientIDs:   ids,
		Purpose:      purpose,
		HospitalName: input.HospitalName,
	}

	response, err := s.core.SubmitRequest(ctx, payload)
	if err != nil {
		s.metrics.RecordSubmission("upstream_error")
		s.logger.Audit(input.DoctorID, "submit_request", strings.Join(ids, ","), false,
			map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	requestID := response.RequestID
	if requestID == "" {
		requestID = "REQ-" + uuid.New().String()
	}

	request := &types.DataRequest{
		RequestID:    requestID,
		DoctorID:     input.DoctorID,
		DoctorName:   input.DoctorName,
		PatientIDs:   ids,
		Purpose:      purpose,
		HospitalName: input.HospitalName,
	}

	s.repo.Append(request)
	s.metrics.RecordSubmission("accepted")
	s.logger.Audit(input.DoctorID, "submit_request", requestID, true,
		map[string]interface{}{"patient_ids": ids})

	return request, nil
}

// hasDuplicateSet reports whether any known request covers exactly the
// same identifier set, order-independent. True set equality is used:
// duplicate identifiers within either side collapse before comparison.
func (s *SubmissionService) hasDuplicateSet(ids []string) bool {
	candidate := toSet(ids)

	for _, existing := range s.repo.Requests() {
		if setsEqual(candidate, toSet(existing.PatientIDs)) {
			return true
		}
	}

	return false
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if !b[id] {
			return false
		}
	}
	return true
}
