package types

import (
	"regexp"
	"strconv"
	"time"
)

// PatientIDPattern is the required shape of a patient identifier,
// a literal P followed by exactly three digits (e.g. P001).
// Matching is case-sensitive.
var PatientIDPattern = regexp.MustCompile(`^P\d{3}$`)

// DataRequest is a patient-data access request submitted to the core service
type DataRequest struct {
	RequestID    string   `json:"requestId"`
	DoctorID     string   `json:"doctorId"`
	DoctorName   string   `json:"doctorName"`
	PatientIDs   []string `json:"patientIds"`
	Purpose      string   `json:"purpose"`
	HospitalName string   `json:"hospitalName"`
}

// SubmitRequestPayload is the body sent to the core service when
// submitting a new data request
type SubmitRequestPayload struct {
	DoctorID     string   `json:"doctorId"`
	DoctorName   string   `json:"doctorName"`
	PatientIDs   []string `json:"patientIds"`
	Purpose      string   `json:"purpose"`
	HospitalName string   `json:"hospitalName"`
}

// SubmitRequestResponse is the core service's reply to a submission.
// Some deployments return a bare string instead, which the upstream
// client normalizes into Message.
type SubmitRequestResponse struct {
	RequestID string `json:"requestId"`
	Message   string `json:"message"`
}

// PatientRecord is a single patient/request record returned by the
// core service's records endpoint
type PatientRecord struct {
	ID               string   `json:"id"`
	RequestID        string   `json:"requestId"`
	PatientID        string   `json:"patientId"`
	PatientIDs       []string `json:"patientIds,omitempty"`
	Name             string   `json:"name"`
	Age              int      `json:"age"`
	Gender           string   `json:"gender"`
	MedicalCondition string   `json:"medicalCondition"`
	TestResults      string   `json:"testResults"`
	BloodType        string   `json:"bloodType"`
	Medication       string   `json:"medication"`
	PDFReport        string   `json:"pdfReport"`
	UpdatedAt        string   `json:"updatedAt"`
}

// Searchable is anything the full-field substring filter can inspect
type Searchable interface {
	SearchFields() map[string]string
}

// SearchFields returns every field as a string for full-field search
func (r *PatientRecord) SearchFields() map[string]string {
	return map[string]string{
		"id":               r.ID,
		"requestId":        r.RequestID,
		"patientId":        r.PatientID,
		"name":             r.Name,
		"age":              strconv.Itoa(r.Age),
		"gender":           r.Gender,
		"medicalCondition": r.MedicalCondition,
		"testResults":      r.TestResults,
		"bloodType":        r.BloodType,
		"medication":       r.Medication,
		"updatedAt":        r.UpdatedAt,
	}
}

// Classification is the result of validating a raw identifier input
// against the format rule and the existing-request snapshot. The three
// identifier sets are disjoint.
type Classification struct {
	Valid            []string  `json:"valid"`
	Malformed        []string  `json:"malformed"`
	AlreadyRequested []string  `json:"alreadyRequested"`
	Checking         bool      `json:"checking"`
	CheckedAt        time.Time `json:"checkedAt"`
}

// Submittable reports whether a classified input may be submitted.
// At least one well-formed identifier is required, and no malformed
// or already-requested identifier may be present.
func (c *Classification) Submittable() bool {
	return len(c.Valid) > 0 && len(c.Malformed) == 0 && len(c.AlreadyRequested) == 0 && !c.Checking
}
