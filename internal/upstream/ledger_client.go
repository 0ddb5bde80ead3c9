package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/medshare/portal-dashboard/pkg/config"
	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/monitoring"
	"github.com/medshare/portal-dashboard/pkg/types"
)

// LedgerClient talks to the ledger/fabric service, which owns the log
// collections, precomputed analytics and system status
type LedgerClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
	metrics    *monitoring.MetricsCollector
}

// NewLedgerClient creates a new ledger service client
func NewLedgerClient(cfg *config.UpstreamConfig, log *logger.Logger, metrics *monitoring.MetricsCollector) *LedgerClient {
	return &LedgerClient{
		baseURL: strings.TrimRight(cfg.LedgerBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		logger:  log,
		metrics: metrics,
	}
}

// GetFabricLogs fetches a page of fabric transaction logs
func (c *LedgerClient) GetFabricLogs(ctx context.Context, page, size int) ([]*types.FabricLogRecord, error) {
	path := "/fabric-logs?" + pageQuery(page, size)

	respBody, err := c.get(ctx, path, "Failed to fetch fabric logs.")
	if err != nil {
		return nil, err
	}

	var logs []*types.FabricLogRecord
	if err := json.Unmarshal(respBody, &logs); err != nil {
		return nil, fmt.Errorf("failed to parse fabric logs: %w", err)
	}

	return logs, nil
}

// GetAccessLogs fetches a page of access-control decision logs
func (c *LedgerClient) GetAccessLogs(ctx context.Context, page, size int) (*types.AccessLogsPage, error) {
	path := "/access-logs?" + pageQuery(page, size)

	respBody, err := c.get(ctx, path, "Failed to fetch access logs.")
	if err != nil {
		return nil, err
	}

	var result types.AccessLogsPage
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse access logs: %w", err)
	}

	return &result, nil
}

// GetAccessLogDetails fetches a single access log record by ID
func (c *LedgerClient) GetAccessLogDetails(ctx context.Context, logID string) (*types.AccessLogRecord, error) {
	path := "/access-logs/" + url.PathEscape(logID)

	respBody, err := c.get(ctx, path, "Failed to fetch access log details.")
	if err != nil {
		return nil, err
	}

	var record types.AccessLogRecord
	if err := json.Unmarshal(respBody, &record); err != nil {
		return nil, fmt.Errorf("failed to parse access log record: %w", err)
	}

	return &record, nil
}

// GetFabricAnalytics fetches precomputed fabric log analytics
func (c *LedgerClient) GetFabricAnalytics(ctx context.Context) (*types.AnalyticsSnapshot, error) {
	respBody, err := c.get(ctx, "/fabric-logs/analytics", "Failed to fetch fabric analytics.")
	if err != nil {
		return nil, err
	}

	var snapshot types.AnalyticsSnapshot
	if err := json.Unmarshal(respBody, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse fabric analytics: %w", err)
	}

	return &snapshot, nil
}

// GetAccessAnalytics fetches precomputed access log analytics
func (c *LedgerClient) GetAccessAnalytics(ctx context.Context) (*types.AnalyticsSnapshot, error) {
	respBody, err := c.get(ctx, "/access-logs/analytics", "Failed to fetch access logs analytics.")
	if err != nil {
		return nil, err
	}

	var snapshot types.AnalyticsSnapshot
	if err := json.Unmarshal(respBody, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse access analytics: %w", err)
	}

	return &snapshot, nil
}

// GetSystemStatus fetches the current kafka/fabric connectivity report
func (c *LedgerClient) GetSystemStatus(ctx context.Context) (*types.SystemStatus, error) {
	respBody, err := c.get(ctx, "/system-status", "Failed to fetch system status.")
	if err != nil {
		return nil, err
	}

	var status types.SystemStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("failed to parse system status: %w", err)
	}

	return &status, nil
}

// get executes one GET round trip against the ledger service
func (c *LedgerClient) get(ctx context.Context, path, fallbackMessage string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.UpstreamCall("ledger", http.MethodGet, path, 0, time.Since(start).Milliseconds(), err)
		c.metrics.RecordUpstreamCall("ledger", path, "error", time.Since(start))
		return nil, types.NewUpstreamError(types.ErrCodeUpstreamError, fallbackMessage, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.UpstreamCall("ledger", http.MethodGet, path, resp.StatusCode, time.Since(start).Milliseconds(), nil)
	c.metrics.RecordUpstreamCall("ledger", path, resp.Status, time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		return nil, types.NewNotFoundError(types.ErrCodeNotFound, fallbackMessage)
	}

	if resp.StatusCode >= 400 {
		message := extractServerMessage(respBody)
		if message == "" {
			message = fallbackMessage
		}
		return nil, types.NewUpstreamError(types.ErrCodeUpstreamError, message,
			fmt.Errorf("ledger service returned status %d", resp.StatusCode))
	}

	return respBody, nil
}

// pageQuery builds the page/size query string shared by the paged
// log endpoints
func pageQuery(page, size int) string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	values.Set("size", strconv.Itoa(size))
	return values.Encode()
}
