package interfaces

import (
	"context"
	"time"

	"github.com/medshare/portal-dashboard/pkg/types"
)

// CoreClient defines the interface to the core request service
type CoreClient interface {
	// Request submission
	SubmitRequest(ctx context.Context, payload *types.SubmitRequestPayload) (*types.SubmitRequestResponse, error)

	// Patient records and reports
	GetPatientRecords(ctx context.Context) ([]*types.PatientRecord, error)
	DownloadReport(ctx context.Context, requestID string) ([]byte, error)
}

// LedgerClient defines the interface to the ledger/fabric service
type LedgerClient interface {
	// Log collections
	GetFabricLogs(ctx context.Context, page, size int) ([]*types.FabricLogRecord, error)
	GetAccessLogs(ctx context.Context, page, size int) (*types.AccessLogsPage, error)
	GetAccessLogDetails(ctx context.Context, logID string) (*types.AccessLogRecord, error)

	// Precomputed analytics
	GetFabricAnalytics(ctx context.Context) (*types.AnalyticsSnapshot, error)
	GetAccessAnalytics(ctx context.Context) (*types.AnalyticsSnapshot, error)

	// System health
	GetSystemStatus(ctx context.Context) (*types.SystemStatus, error)
}

// RequestRepository defines the snapshot of requests known to the
// backend plus locally appended submissions. Snapshots are explicitly
// allowed to go stale; Refresh replaces the whole backend copy and
// Append records an optimistic local addition.
type RequestRepository interface {
	Refresh(ctx context.Context) error
	Requests() []*types.DataRequest
	RequestedPatientIDs() map[string]bool
	Append(req *types.DataRequest)
	LastRefreshed() (time.Time, bool)
}

// StatusProvider defines the system status source polled by the
// health monitor
type StatusProvider interface {
	GetSystemStatus(ctx context.Context) (*types.SystemStatus, error)
}
