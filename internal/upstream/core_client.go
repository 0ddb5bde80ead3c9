package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medshare/portal-dashboard/pkg/config"
	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/monitoring"
	"github.com/medshare/portal-dashboard/pkg/types"
)

// CoreClient talks to the core request service, which owns request
// submission, patient records and PDF reports
type CoreClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
	metrics    *monitoring.MetricsCollector
}

// NewCoreClient creates a new core service client
func NewCoreClient(cfg *config.UpstreamConfig, log *logger.Logger, metrics *monitoring.MetricsCollector) *CoreClient {
	return &CoreClient{
		baseURL: strings.TrimRight(cfg.CoreBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		logger:  log,
		metrics: metrics,
	}
}

// SubmitRequest posts a new data request to the core service. The
// server may reply with a JSON object or a bare string; both forms are
// normalized. Server-provided error messages are preserved verbatim so
// they can be surfaced to the user unchanged.
func (c *CoreClient) SubmitRequest(ctx context.Context, payload *types.SubmitRequestPayload) (*types.SubmitRequestResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	respBody, statusCode, err := c.do(ctx, http.MethodPost, "/request", bytes.NewReader(body))
	if err != nil {
		return nil, types.NewUpstreamError(types.ErrCodeUpstreamError, "Failed to submit patient request.", err)
	}

	if statusCode >= 400 {
		message := extractServerMessage(respBody)
		if message == "" {
			message = "Failed to submit patient request."
		}
		return nil, types.NewUpstreamError(types.ErrCodeUpstreamError, message,
			fmt.Errorf("core service returned status %d", statusCode))
	}

	result := &types.SubmitRequestResponse{}
	if err := json.Unmarshal(respBody, result); err != nil {
		// Bare string responses are accepted as the message
		result.Message = strings.TrimSpace(string(respBody))
	}

	return result, nil
}

// GetPatientRecords fetches all patient/request records known to the
// core service
func (c *CoreClient) GetPatientRecords(ctx context.Context) ([]*types.PatientRecord, error) {
	respBody, statusCode, err := c.do(ctx, http.MethodGet, "/request/records", nil)
	if err != nil {
		return nil, types.NewUpstreamError(types.ErrCodeUpstreamError, "Failed to fetch patient records.", err)
	}

	if statusCode >= 400 {
		return nil, types.NewUpstreamError(types.ErrCodeUpstreamError, "Failed to fetch patient records.",
			fmt.Errorf("core service returned status %d", statusCode))
	}

	var records []*types.PatientRecord
	if err := json.Unmarshal(respBody, &records); err != nil {
		return nil, fmt.Errorf("failed to parse patient records: %w", err)
	}

	return records, nil
}

// DownloadReport streams the PDF report for a request
func (c *CoreClient) DownloadReport(ctx context.Context, requestID string) ([]byte, error) {
	path := fmt.Sprintf("/request/records/%s/pdf", requestID)

	respBody, statusCode, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, types.NewUpstreamError(types.ErrCodeUpstreamError, "Failed to download patient PDF.", err)
	}

	if statusCode == http.StatusNotFound {
		return nil, types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("report not found for request %s", requestID))
	}

	if statusCode >= 400 {
		return nil, types.NewUpstreamError(types.ErrCodeUpstreamError, "Failed to download patient PDF.",
			fmt.Errorf("core service returned status %d", statusCode))
	}

	return respBody, nil
}

// do executes one HTTP round trip against the core service
func (c *CoreClient) do(ctx context.Context, method, path string, body io.Reader) ([]byte, int, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.UpstreamCall("core", method, path, 0, time.Since(start).Milliseconds(), err)
		c.metrics.RecordUpstreamCall("core", method+" "+path, "error", time.Since(start))
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.UpstreamCall("core", method, path, resp.StatusCode, time.Since(start).Milliseconds(), nil)
	c.metrics.RecordUpstreamCall("core", method+" "+path, resp.Status, time.Since(start))

	return respBody, resp.StatusCode, nil
}

// extractServerMessage pulls the message field out of an upstream
// error body, when one is present
func extractServerMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.Message
}
