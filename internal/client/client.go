package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/datadog-community/datadog-mcp-server/pkg/dderr"
	"github.com/datadog-community/datadog-mcp-server/pkg/query"
	"github.com/datadog-community/datadog-mcp-server/pkg/types"
)

const (
	APIKeyHeader = "DD-API-KEY"
	AppKeyHeader = "DD-APPLICATION-KEY"
	ContentType  = "Content-Type"

	requestTimeout = 60 * time.Second

	// The spans search API is documented at 300 requests per hour. The
	// limiter smooths requests under that cap instead of retrying 429s.
	spansRequestsPerHour = 300
	spansBurst           = 10
)

type Datadog struct {
	baseURL     string
	apiKey      string
	appKey      string
	logger      *zap.Logger
	httpClient  *http.Client
	spanLimiter *rate.Limiter
}

// NewClient builds a client for one credential pair. baseURL is the API
// origin, e.g. "https://api.datadoghq.com"; tests point it at a local
// server.
func NewClient(log *zap.Logger, baseURL, apiKey, appKey string) *Datadog {
	return &Datadog{
		logger:  log,
		baseURL: baseURL,
		apiKey:  apiKey,
		appKey:  appKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   requestTimeout,
		},
		spanLimiter: rate.NewLimiter(rate.Every(time.Hour/spansRequestsPerHour), spansBurst),
	}
}

// SearchLogs executes a log search against /api/v2/logs/events/search and
// normalizes the response into a LogsResult.
func (d *Datadog) SearchLogs(ctx context.Context, req *query.Request) (*types.LogsResult, error) {
	payload := types.NewLogsSearchRequest(req.Query, req.From, req.To, req.Limit)

	d.logger.Debug("Searching logs",
		zap.String("query", req.Query),
		zap.String("from", req.From),
		zap.String("to", req.To),
		zap.Int("limit", req.Limit))

	body, err := d.post(ctx, "/api/v2/logs/events/search", payload)
	if err != nil {
		return nil, err
	}

	var resp types.LogsSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		d.logger.Error("Failed to parse logs search response", zap.Error(err))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	result := &types.LogsResult{
		Total: len(resp.Data),
		Count: len(resp.Data),
		Logs:  make([]types.LogRecord, 0, len(resp.Data)),
	}
	for _, event := range resp.Data {
		result.Logs = append(result.Logs, logRecordFromEvent(event))
	}
	if resp.Meta != nil && resp.Meta.Page != nil && resp.Meta.Page.After != "" {
		result.NextCursor = resp.Meta.Page.After
		result.HasMore = true
	}

	d.logger.Debug("Successfully searched logs", zap.Int("count", result.Count), zap.Bool("hasMore", result.HasMore))
	return result, nil
}

// SearchSpans executes a span search against /api/v2/spans/events/search.
// Requests wait on the client-side limiter before going out.
func (d *Datadog) SearchSpans(ctx context.Context, req *query.Request) (*types.SpansResult, error) {
	if err := d.spanLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("spans rate limiter: %w", err)
	}

	payload := types.NewSpansSearchRequest(req.Query, req.From, req.To, req.Limit)

	d.logger.Debug("Searching spans",
		zap.String("query", req.Query),
		zap.String("from", req.From),
		zap.String("to", req.To),
		zap.Int("limit", req.Limit))

	body, err := d.post(ctx, "/api/v2/spans/events/search", payload)
	if err != nil {
		return nil, err
	}

	var resp types.SpansSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		d.logger.Error("Failed to parse spans search response", zap.Error(err))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	result := &types.SpansResult{
		Total: len(resp.Data),
		Count: len(resp.Data),
		Spans: make([]types.SpanRecord, 0, len(resp.Data)),
	}
	for _, event := range resp.Data {
		result.Spans = append(result.Spans, spanRecordFromEvent(event))
	}
	if resp.Meta != nil && resp.Meta.Page != nil && resp.Meta.Page.After != "" {
		result.NextCursor = resp.Meta.Page.After
		result.HasMore = true
	}

	d.logger.Debug("Successfully searched spans", zap.Int("count", result.Count), zap.Bool("hasMore", result.HasMore))
	return result, nil
}

// ValidateCredentials checks the configured keys against /api/v1/validate.
func (d *Datadog) ValidateCredentials(ctx context.Context) error {
	url := d.baseURL + "/api/v1/validate"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	d.setHeaders(req)

	d.logger.Debug("Validating Datadog credentials")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Error("HTTP request failed", zap.String("url", url), zap.Error(err))
		return fmt.Errorf("failed to do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			d.logger.Warn("Failed to close response body", zap.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		d.logger.Error("Credential validation failed", zap.Int("status", resp.StatusCode), zap.String("response", string(body)))
		return apiErrorFromResponse(resp, body)
	}

	d.logger.Debug("Credentials validated", zap.Int("status", resp.StatusCode))
	return nil
}

func (d *Datadog) post(ctx context.Context, path string, payload any) ([]byte, error) {
	url := d.baseURL + path

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	d.setHeaders(req)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	req = req.WithContext(ctx)

	d.logger.Debug("Making request to Datadog API", zap.String("method", "POST"), zap.String("endpoint", path))

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Error("HTTP request failed", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			d.logger.Warn("Failed to close response body", zap.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		d.logger.Error("Failed to read response body", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		d.logger.Error("API request failed", zap.String("url", url), zap.Int("status", resp.StatusCode), zap.String("response", string(body)))
		return nil, apiErrorFromResponse(resp, body)
	}

	return body, nil
}

func (d *Datadog) setHeaders(req *http.Request) {
	req.Header.Set(ContentType, "application/json")
	req.Header.Set(APIKeyHeader, d.apiKey)
	req.Header.Set(AppKeyHeader, d.appKey)
}

func apiErrorFromResponse(resp *http.Response, body []byte) *dderr.APIError {
	return &dderr.APIError{
		StatusCode:  resp.StatusCode,
		Body:        string(body),
		RateLimited: resp.Header.Get("X-RateLimit-Remaining") == "0",
	}
}

func logRecordFromEvent(event types.LogEvent) types.LogRecord {
	attrs := event.Attributes
	record := types.LogRecord{
		ID:        event.ID,
		Timestamp: attrs.Timestamp,
		Message:   attrs.Message,
		Tags:      attrs.Tags,
	}
	record.Service = stringAttr(attrs.Attributes, "service")
	record.Status = stringAttr(attrs.Attributes, "status")
	record.Host = stringAttr(attrs.Attributes, "host")
	record.TraceID = stringAttr(attrs.Attributes, "dd.trace_id", "trace_id")
	record.SpanID = stringAttr(attrs.Attributes, "dd.span_id", "span_id")
	return record
}

func spanRecordFromEvent(event types.SpanEvent) types.SpanRecord {
	attrs := event.Attributes
	record := types.SpanRecord{
		SpanID:    attrs.SpanID,
		TraceID:   attrs.TraceID,
		Timestamp: attrs.Start,
		Tags:      attrs.Tags,
	}
	record.Service = stringAttr(attrs.Attributes, "service")
	record.Resource = stringAttr(attrs.Attributes, "resource_name")
	record.Operation = stringAttr(attrs.Attributes, "operation_name")
	if v, ok := attrs.Attributes["duration"].(float64); ok {
		record.Duration = v
	}
	if v, ok := attrs.Attributes["error"].(bool); ok {
		record.Error = v
	}
	return record
}

// stringAttr reads the first present key from an open-ended attribute map.
func stringAttr(attrs map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := attrs[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
