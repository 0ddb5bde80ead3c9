package types

import (
	"strconv"
	"time"
)

// Log outcome statuses
const (
	StatusGranted = "granted"
	StatusDenied  = "denied"
)

// LogRecord is the read side shared by both log kinds. SearchFields
// feeds the full-field substring filter; Detail feeds the drill-down
// projection.
type LogRecord interface {
	RecordID() string
	OccurredAt() time.Time
	Granted() bool
	SearchFields() map[string]string
	Detail() map[string]string
}

// AccessLogRecord is a single access-control decision for a
// patient-data request
type AccessLogRecord struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	DoctorID      string    `json:"doctorId"`
	DoctorName    string    `json:"doctorName"`
	PatientID     string    `json:"patientId"`
	Purpose       string    `json:"purpose"`
	AccessGranted bool      `json:"accessGranted"`
}

// RecordID returns the record identifier
func (r *AccessLogRecord) RecordID() string { return r.ID }

// OccurredAt returns the decision timestamp
func (r *AccessLogRecord) OccurredAt() time.Time { return r.Timestamp }

// Granted reports whether access was granted
func (r *AccessLogRecord) Granted() bool { return r.AccessGranted }

// Status returns the outcome as its wire label
func (r *AccessLogRecord) Status() string {
	if r.AccessGranted {
		return StatusGranted
	}
	return StatusDenied
}

// SearchFields returns every field as a string for full-field search
func (r *AccessLogRecord) SearchFields() map[string]string {
	return map[string]string{
		"id":         r.ID,
		"timestamp":  r.Timestamp.Format(time.RFC3339),
		"doctorId":   r.DoctorID,
		"doctorName": r.DoctorName,
		"patientId":  r.PatientID,
		"purpose":    r.Purpose,
		"status":     r.Status(),
	}
}

// Detail returns the full field set for the drill-down view
func (r *AccessLogRecord) Detail() map[string]string {
	return r.SearchFields()
}

// FabricLogRecord is a distributed-ledger transaction recording a
// cross-hospital data access event
type FabricLogRecord struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	DoctorID        string    `json:"doctorId"`
	DoctorName      string    `json:"doctorName"`
	PatientID       string    `json:"patientId"`
	Status          string    `json:"status"`
	TransactionID   string    `json:"transactionId"`
	BlockNumber     int64     `json:"blockNumber"`
	ValidationCode  string    `json:"validationCode"`
	InputArgs       string    `json:"inputArgs"`
	ResponsePayload string    `json:"responsePayload"`
	Endorsers       string    `json:"endorsers,omitempty"`
}

// RecordID returns the record identifier
func (r *FabricLogRecord) RecordID() string { return r.ID }

// OccurredAt returns the transaction timestamp
func (r *FabricLogRecord) OccurredAt() time.Time { return r.Timestamp }

// Granted reports whether the recorded access was granted
func (r *FabricLogRecord) Granted() bool { return r.Status == StatusGranted }

// SearchFields returns every field as a string for full-field search
func (r *FabricLogRecord) SearchFields() map[string]string {
	fields := map[string]string{
		"id":              r.ID,
		"timestamp":       r.Timestamp.Format(time.RFC3339),
		"doctorId":        r.DoctorID,
		"doctorName":      r.DoctorName,
		"patientId":       r.PatientID,
		"status":          r.Status,
		"transactionId":   r.TransactionID,
		"blockNumber":     formatInt64(r.BlockNumber),
		"validationCode":  r.ValidationCode,
		"inputArgs":       r.InputArgs,
		"responsePayload": r.ResponsePayload,
	}
	if r.Endorsers != "" {
		fields["endorsers"] = r.Endorsers
	}
	return fields
}

// Detail returns the full field set for the drill-down view
func (r *FabricLogRecord) Detail() map[string]string {
	return r.SearchFields()
}

// AccessLogsPage is the ledger service's paged access-log response
type AccessLogsPage struct {
	Logs      []*AccessLogRecord `json:"logs"`
	TotalLogs int                `json:"totalLogs"`
}

func formatInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}
