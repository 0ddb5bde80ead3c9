package requests

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/medshare/portal-dashboard/pkg/interfaces"
	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/types"
)

// SnapshotRepository holds a point-in-time copy of the requests known
// to the core service plus optimistic local appends. The snapshot is
// explicitly allowed to go stale between refreshes; readers always see
// either the previous complete copy or the new one, never a partial
// update.
type SnapshotRepository struct {
	core   interfaces.CoreClient
	logger *logger.Logger

	mu          sync.RWMutex
	records     []*types.PatientRecord
	local       []*types.DataRequest
	refreshedAt time.Time
	refreshed   bool
}

// NewSnapshotRepository creates a new request snapshot repository
func NewSnapshotRepository(core interfaces.CoreClient, log *logger.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		core:   core,
		logger: log,
	}
}

// Refresh replaces the backend copy of the snapshot. Local appends are
// kept; the backend is expected to include them on a later refresh.
func (r *SnapshotRepository) Refresh(ctx context.Context) error {
	records, err := r.core.GetPatientRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh request snapshot: %w", err)
	}

	r.mu.Lock()
	r.records = records
	r.refreshedAt = time.Now()
	r.refreshed = true
	r.mu.Unlock()

	r.logger.WithComponent("snapshot").WithField("records", len(records)).Debug("Request snapshot refreshed")
	return nil
}

// Requests returns all requests known locally: those derived from the
// backend snapshot plus optimistic appends
func (r *SnapshotRepository) Requests() []*types.DataRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	requests := make([]*types.DataRequest, 0, len(r.records)+len(r.local))
	for _, record := range r.records {
		if len(record.PatientIDs) == 0 {
			continue
		}
		requests = append(requests, &types.DataRequest{
			RequestID:  record.RequestID,
			PatientIDs: record.PatientIDs,
		})
	}
	requests = append(requests, r.local...)

	return requests
}

// RequestedPatientIDs returns the set of patient identifiers that
// already appear in the backend snapshot
func (r *SnapshotRepository) RequestedPatientIDs() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make(map[string]bool, len(r.records))
	for _, record := range r.records {
		if id := strings.TrimSpace(record.PatientID); id != "" {
			ids[id] = true
		}
		for _, id := range record.PatientIDs {
			if id = strings.TrimSpace(id); id != "" {
				ids[id] = true
			}
		}
	}

	return ids
}

// Append records an optimistic local addition after a successful
// submission. The existing list is never replaced.
func (r *SnapshotRepository) Append(req *types.DataRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.local = append(r.local, req)
}

// LastRefreshed reports when the backend copy was last replaced
func (r *SnapshotRepository) LastRefreshed() (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.refreshedAt, r.refreshed
}
