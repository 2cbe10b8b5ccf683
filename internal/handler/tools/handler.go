package tools

import (
	"context"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/datadog-community/datadog-mcp-server/internal/analytics"
	ddclient "github.com/datadog-community/datadog-mcp-server/internal/client"
	"github.com/datadog-community/datadog-mcp-server/internal/contextutil"
	"github.com/datadog-community/datadog-mcp-server/pkg/dderr"
	"github.com/datadog-community/datadog-mcp-server/pkg/format"
	"github.com/datadog-community/datadog-mcp-server/pkg/query"
)

const (
	queryDesc  = "Search query using Datadog syntax. Examples: 'status:error', 'service:web-app AND status:error', '@http.status_code:500', 'env:production error'."
	fromDesc   = "Start time for the search range (optional, defaults to 'now-15m'). Supports ISO 8601 (e.g. '2024-01-01T00:00:00Z'), date math ('now', 'now-15m', 'now-1h', 'now-7d'), or epoch milliseconds."
	toDesc     = "End time for the search range (optional, defaults to 'now'). Supports the same formats as 'from'."
	limitDesc  = "Maximum number of results to return (optional, default: 50, range: 1-1000). Values outside the range are clamped."
	formatDesc = "Output format (optional, default: 'markdown'). 'markdown' for human-readable formatted output, 'json' for structured machine-readable output."

	// Cached per-credential clients for hosted mode, where each MCP
	// client brings its own keys.
	clientCacheSize = 64
)

type Handler struct {
	client      *ddclient.Datadog
	logger      *zap.Logger
	baseURL     string
	clientCache *lru.Cache[string, *ddclient.Datadog]
	reporter    *analytics.Reporter
}

func NewHandler(log *zap.Logger, client *ddclient.Datadog, baseURL string, reporter *analytics.Reporter) *Handler {
	cache, _ := lru.New[string, *ddclient.Datadog](clientCacheSize)
	return &Handler{
		client:      client,
		logger:      log,
		baseURL:     baseURL,
		clientCache: cache,
		reporter:    reporter,
	}
}

// GetClient returns the default client, or a cached per-credential client
// when the request context carries its own key pair.
func (h *Handler) GetClient(ctx context.Context) *ddclient.Datadog {
	creds, ok := contextutil.GetCredentials(ctx)
	if !ok || creds.APIKey == "" || creds.AppKey == "" {
		return h.client
	}

	cacheKey := creds.APIKey + "\x00" + creds.AppKey
	if cached, ok := h.clientCache.Get(cacheKey); ok {
		return cached
	}

	h.logger.Debug("Creating client for credentials from request context")
	client := ddclient.NewClient(h.logger, h.baseURL, creds.APIKey, creds.AppKey)
	h.clientCache.Add(cacheKey, client)
	return client
}

func (h *Handler) RegisterLogsHandlers(s *server.MCPServer) {
	h.logger.Debug("Registering logs handlers")

	searchLogsTool := mcp.NewTool("datadog_search_logs",
		mcp.WithDescription("Search for logs in Datadog by query, time range, and filters. Supports the full Datadog log search syntax (field search 'service:web-app', boolean operators, wildcards 'service:python*', facets '@http.status_code:500', tags 'env:production'). Results are returned as markdown or JSON and are truncated with an explicit note once the response exceeds the size budget."),
		mcp.WithString("query", mcp.Required(), mcp.Description(queryDesc)),
		mcp.WithString("from", mcp.Description(fromDesc)),
		mcp.WithString("to", mcp.Description(toDesc)),
		mcp.WithString("limit", mcp.Description(limitDesc)),
		mcp.WithString("response_format", mcp.Description(formatDesc)),
	)

	s.AddTool(searchLogsTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		started := time.Now()
		reqID := uuid.NewString()
		h.logger.Debug("Tool called: datadog_search_logs", zap.String("requestID", reqID))

		args, _ := req.Params.Arguments.(map[string]any)
		searchReq, err := parseSearchArgs(args)
		if err != nil {
			return h.toolError("datadog_search_logs", reqID, started, err), nil
		}

		result, err := h.GetClient(ctx).SearchLogs(ctx, searchReq)
		if err != nil {
			h.logger.Error("Failed to search logs", zap.String("requestID", reqID), zap.Error(err))
			return h.toolError("datadog_search_logs", reqID, started, err), nil
		}

		var out string
		if searchReq.Format == query.FormatJSON {
			out = format.LogsJSON(result)
		} else {
			out = format.LogsMarkdown(result, searchReq.Query)
		}

		h.logger.Debug("Successfully searched logs",
			zap.String("requestID", reqID),
			zap.Int("count", result.Count),
			zap.Duration("elapsed", time.Since(started)))
		h.reporter.TrackToolCall("datadog_search_logs", "success", time.Since(started))
		return mcp.NewToolResultText(out), nil
	})
}

func (h *Handler) RegisterTracesHandlers(s *server.MCPServer) {
	h.logger.Debug("Registering traces handlers")

	searchTracesTool := mcp.NewTool("datadog_search_traces",
		mcp.WithDescription("Search for traces and spans in Datadog by query, time range, and filters. Supports the full Datadog trace search syntax (field search 'service:web-app', resource 'resource_name:GET /api/users', error filter 'error:true', duration '@duration:>1000000000' in nanoseconds). IMPORTANT: the traces API is rate limited to 300 requests per hour, so prefer specific queries. Results are returned as markdown or JSON and are truncated with an explicit note once the response exceeds the size budget."),
		mcp.WithString("query", mcp.Required(), mcp.Description(queryDesc)),
		mcp.WithString("from", mcp.Description(fromDesc)),
		mcp.WithString("to", mcp.Description(toDesc)),
		mcp.WithString("limit", mcp.Description(limitDesc)),
		mcp.WithString("response_format", mcp.Description(formatDesc)),
	)

	s.AddTool(searchTracesTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		started := time.Now()
		reqID := uuid.NewString()
		h.logger.Debug("Tool called: datadog_search_traces", zap.String("requestID", reqID))

		args, _ := req.Params.Arguments.(map[string]any)
		searchReq, err := parseSearchArgs(args)
		if err != nil {
			return h.toolError("datadog_search_traces", reqID, started, err), nil
		}

		result, err := h.GetClient(ctx).SearchSpans(ctx, searchReq)
		if err != nil {
			h.logger.Error("Failed to search traces", zap.String("requestID", reqID), zap.Error(err))
			return h.toolError("datadog_search_traces", reqID, started, err), nil
		}

		var out string
		if searchReq.Format == query.FormatJSON {
			out = format.SpansJSON(result)
		} else {
			out = format.SpansMarkdown(result, searchReq.Query)
		}

		h.logger.Debug("Successfully searched traces",
			zap.String("requestID", reqID),
			zap.Int("count", result.Count),
			zap.Duration("elapsed", time.Since(started)))
		h.reporter.TrackToolCall("datadog_search_traces", "success", time.Since(started))
		return mcp.NewToolResultText(out), nil
	})
}

// toolError classifies err and surfaces kind, message, and guidance as the
// tool result. Classified errors are final here: no retry, no partial
// results.
func (h *Handler) toolError(tool, reqID string, started time.Time, err error) *mcp.CallToolResult {
	classified := dderr.Classify(err)
	h.logger.Warn("Tool call failed",
		zap.String("tool", tool),
		zap.String("requestID", reqID),
		zap.String("kind", string(classified.Kind)),
		zap.Duration("elapsed", time.Since(started)))
	h.reporter.TrackToolCall(tool, string(classified.Kind), time.Since(started))
	return mcp.NewToolResultError(classified.Error())
}
