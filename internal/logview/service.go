package logview

import (
	"context"
	"sync"

	"github.com/medshare/portal-dashboard/internal/analytics"
	"github.com/medshare/portal-dashboard/pkg/interfaces"
	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/types"
)

// fetch sizes for the cached collections, matching what the dashboard
// pulls in one load
const (
	fetchPage = 0
	fetchSize = 50
)

// Service serves filtered, paginated views over the two log
// collections and their analytics. Fetched collections are cached for
// the session and replaced wholesale on every refetch.
type Service struct {
	ledger interfaces.LedgerClient
	logger *logger.Logger

	mu         sync.RWMutex
	accessLogs []*types.AccessLogRecord
	fabricLogs []*types.FabricLogRecord
}

// NewService creates a new log view service
func NewService(ledger interfaces.LedgerClient, log *logger.Logger) *Service {
	return &Service{
		ledger: ledger,
		logger: log,
	}
}

// LogPage is one page of a filtered log collection
type LogPage struct {
	Records       []map[string]string `json:"records"`
	Page          int                 `json:"page"`
	PageSize      int                 `json:"pageSize"`
	FilteredCount int                 `json:"filteredCount"`
	TotalCount    int                 `json:"totalCount"`
}

// AccessLogs fetches, filters and paginates the access log collection
func (s *Service) AccessLogs(ctx context.Context, query string, page, size int) (*LogPage, error) {
	fetched, err := s.ledger.GetAccessLogs(ctx, fetchPage, fetchSize)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.accessLogs = fetched.Logs
	s.mu.Unlock()

	records := accessRecords(fetched.Logs)
	return buildPage(records, query, page, size, fetched.TotalLogs), nil
}

// FabricLogs fetches, filters and paginates the fabric log collection
func (s *Service) FabricLogs(ctx context.Context, query string, page, size int) (*LogPage, error) {
	fetched, err := s.ledger.GetFabricLogs(ctx, fetchPage, fetchSize)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.fabricLogs = fetched
	s.mu.Unlock()

	records := fabricRecords(fetched)
	return buildPage(records, query, page, size, len(fetched)), nil
}

// AccessLogDetail fetches one access log record and projects its full
// field set
func (s *Service) AccessLogDetail(ctx context.Context, logID string) (map[string]string, error) {
	record, err := s.ledger.GetAccessLogDetails(ctx, logID)
	if err != nil {
		return nil, err
	}

	return DetailProjection(record), nil
}

// FabricLogDetail projects one fabric log record from the cached
// collection
func (s *Service) FabricLogDetail(logID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.fabricLogs {
		if record.ID == logID {
			return DetailProjection(record), nil
		}
	}

	return nil, types.NewNotFoundError(types.ErrCodeNotFound, "fabric log record not found: "+logID)
}

// AccessAnalytics returns access log analytics, preferring the
// server-provided series and filling the gaps from the raw collection
func (s *Service) AccessAnalytics(ctx context.Context) (*types.AnalyticsSnapshot, error) {
	server, err := s.ledger.GetAccessAnalytics(ctx)
	if err != nil {
		s.logger.WithComponent("logview").WithError(err).Warn("Access analytics fetch failed, aggregating locally")
		server = nil
	}

	records, err := s.accessRecordsForAggregation(ctx)
	if err != nil {
		if server == nil {
			return nil, err
		}
		records = nil
	}

	return analytics.FillSnapshot(server, records), nil
}

// FabricAnalytics returns fabric log analytics with the same
// server-first, aggregate-as-fallback policy
func (s *Service) FabricAnalytics(ctx context.Context) (*types.AnalyticsSnapshot, error) {
	server, err := s.ledger.GetFabricAnalytics(ctx)
	if err != nil {
		s.logger.WithComponent("logview").WithError(err).Warn("Fabric analytics fetch failed, aggregating locally")
		server = nil
	}

	fetched, err := s.ledger.GetFabricLogs(ctx, fetchPage, fetchSize)
	if err != nil {
		if server == nil {
			return nil, err
		}
		fetched = nil
	} else {
		s.mu.Lock()
		s.fabricLogs = fetched
		s.mu.Unlock()
	}

	return analytics.FillSnapshot(server, fabricRecords(fetched)), nil
}

// Summary derives the dashboard summary counts from the access log
// collection
func (s *Service) Summary(ctx context.Context, totalRequests, totalPatients int) (*types.SummaryCounts, error) {
	fetched, err := s.ledger.GetAccessLogs(ctx, fetchPage, fetchSize)
	if err != nil {
		return nil, err
	}

	granted, denied := 0, 0
	for _, record := range fetched.Logs {
		if record.AccessGranted {
			granted++
		} else {
			denied++
		}
	}

	return &types.SummaryCounts{
		TotalRequests: totalRequests,
		TotalPatients: totalPatients,
		AccessGranted: granted,
		AccessDenied:  denied,
	}, nil
}

// accessRecordsForAggregation reuses the cached access collection when
// present, fetching otherwise
func (s *Service) accessRecordsForAggregation(ctx context.Context) ([]types.LogRecord, error) {
	s.mu.RLock()
	cached := s.accessLogs
	s.mu.RUnlock()

	if len(cached) > 0 {
		return accessRecords(cached), nil
	}

	fetched, err := s.ledger.GetAccessLogs(ctx, fetchPage, fetchSize)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.accessLogs = fetched.Logs
	s.mu.Unlock()

	return accessRecords(fetched.Logs), nil
}

// buildPage filters, paginates and projects one page of records
func buildPage(records []types.LogRecord, query string, page, size, total int) *LogPage {
	size = NormalizePageSize(size)
	filtered := Filter(records, query)
	visible := Paginate(filtered, page, size)

	projected := make([]map[string]string, 0, len(visible))
	for _, record := range visible {
		projected = append(projected, record.SearchFields())
	}

	return &LogPage{
		Records:       projected,
		Page:          page,
		PageSize:      size,
		FilteredCount: len(filtered),
		TotalCount:    total,
	}
}

func accessRecords(logs []*types.AccessLogRecord) []types.LogRecord {
	records := make([]types.LogRecord, len(logs))
	for i, log := range logs {
		records[i] = log
	}
	return records
}

func fabricRecords(logs []*types.FabricLogRecord) []types.LogRecord {
	records := make([]types.LogRecord, len(logs))
	for i, log := range logs {
		records[i] = log
	}
	return records
}
