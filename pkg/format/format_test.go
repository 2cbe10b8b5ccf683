package format

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadog-community/datadog-mcp-server/pkg/types"
)

func makeLogsResult(n, messageSize int) *types.LogsResult {
	logs := make([]types.LogRecord, 0, n)
	for i := 0; i < n; i++ {
		logs = append(logs, types.LogRecord{
			ID:        fmt.Sprintf("log-%d", i),
			Timestamp: "2024-01-01T00:00:00Z",
			Message:   strings.Repeat("x", messageSize),
			Service:   "web-app",
			Status:    "error",
			Host:      "host-1",
			Tags:      []string{"env:production", "team:platform"},
		})
	}
	return &types.LogsResult{Total: n, Count: n, Logs: logs}
}

func makeSpansResult(n int) *types.SpansResult {
	spans := make([]types.SpanRecord, 0, n)
	for i := 0; i < n; i++ {
		spans = append(spans, types.SpanRecord{
			SpanID:    fmt.Sprintf("span-%d", i),
			TraceID:   "trace-abc",
			Timestamp: "2024-01-01T00:00:00Z",
			Service:   "web-app",
			Resource:  "GET /api/users",
			Operation: "http.request",
			Duration:  2_500_000,
			Error:     i%2 == 0,
			Tags:      []string{"env:production"},
		})
	}
	return &types.SpansResult{Total: n, Count: n, Spans: spans}
}

func TestLogsMarkdownUnderBudget(t *testing.T) {
	result := makeLogsResult(3, 50)
	out := LogsMarkdown(result, "status:error")

	assert.LessOrEqual(t, len(out), CharacterLimit)
	assert.Contains(t, out, "**Query:** `status:error`")
	assert.Contains(t, out, "Found 3 log(s)")
	assert.Equal(t, 3, strings.Count(out, "## Log "))
	assert.NotContains(t, out, "Response Truncated")
}

func TestLogsMarkdownTruncation(t *testing.T) {
	// 100 records with 1KB messages render well past the budget.
	result := makeLogsResult(100, 1024)
	out := LogsMarkdown(result, "status:error")

	assert.LessOrEqual(t, len(out), CharacterLimit)
	rendered := strings.Count(out, "## Log ")
	assert.Less(t, rendered, 100)
	assert.Greater(t, rendered, 0)

	omitted := 100 - rendered
	assert.Contains(t, out, fmt.Sprintf("%d record(s) omitted", omitted))
	assert.Contains(t, out, "Reduce the `limit` parameter")
	// Total reflects the full result set even when records are omitted.
	assert.Contains(t, out, "Found 100 log(s)")
}

func TestLogsMarkdownEmpty(t *testing.T) {
	out := LogsMarkdown(&types.LogsResult{Total: 0, Logs: nil}, "status:error")
	assert.Contains(t, out, "No logs found matching the query.")
}

func TestLogsMarkdownPaginationNote(t *testing.T) {
	result := makeLogsResult(2, 20)
	result.HasMore = true
	result.NextCursor = "cursor-xyz"
	out := LogsMarkdown(result, "status:error")
	assert.Contains(t, out, "pagination cursor")
}

func TestLogsJSONUnderBudget(t *testing.T) {
	result := makeLogsResult(3, 50)
	out := LogsJSON(result)
	assert.LessOrEqual(t, len(out), CharacterLimit)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, float64(3), doc["total"])
	assert.Equal(t, false, doc["truncated"])
	assert.Equal(t, float64(0), doc["omitted_count"])
	assert.Len(t, doc["logs"], 3)
}

func TestLogsJSONTruncation(t *testing.T) {
	result := makeLogsResult(100, 1024)
	out := LogsJSON(result)
	assert.LessOrEqual(t, len(out), CharacterLimit)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, true, doc["truncated"])
	assert.Equal(t, float64(100), doc["total"])

	logs := doc["logs"].([]any)
	assert.Less(t, len(logs), 100)
	assert.Equal(t, float64(100-len(logs)), doc["omitted_count"])
}

func TestFormatParity(t *testing.T) {
	// Both renderings of the same result set must agree on the total and
	// on whether truncation happened.
	tests := []struct {
		name      string
		result    *types.LogsResult
		truncated bool
	}{
		{name: "small set, no truncation", result: makeLogsResult(3, 50), truncated: false},
		{name: "large set, both truncate", result: makeLogsResult(200, 2048), truncated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := LogsMarkdown(tt.result, "status:error")
			assert.Contains(t, md, fmt.Sprintf("Found %d log(s)", tt.result.Total))
			assert.Equal(t, tt.truncated, strings.Contains(md, "Response Truncated"))

			var doc map[string]any
			require.NoError(t, json.Unmarshal([]byte(LogsJSON(tt.result)), &doc))
			assert.Equal(t, float64(tt.result.Total), doc["total"])
			assert.Equal(t, tt.truncated, doc["truncated"])
		})
	}
}

func TestSpansMarkdown(t *testing.T) {
	result := makeSpansResult(2)
	out := SpansMarkdown(result, "service:web-app")

	assert.Contains(t, out, "# Trace/Span Search Results")
	assert.Contains(t, out, "Found 2 span(s)")
	assert.Contains(t, out, "- **Resource:** GET /api/users")
	assert.Contains(t, out, "- **Duration:** 2.50 ms")
	assert.Contains(t, out, "- **Error:** Yes")
	assert.Contains(t, out, "- **Error:** No")
}

func TestSpansMarkdownEmpty(t *testing.T) {
	out := SpansMarkdown(&types.SpansResult{}, "service:web-app")
	assert.Contains(t, out, "No traces/spans found matching the query.")
}

func TestSpansJSON(t *testing.T) {
	result := makeSpansResult(2)
	out := SpansJSON(result)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, float64(2), doc["total"])
	assert.Equal(t, false, doc["truncated"])
	assert.Len(t, doc["spans"], 2)
}

func TestTagListCap(t *testing.T) {
	tags := make([]string, 15)
	for i := range tags {
		tags[i] = fmt.Sprintf("tag:%d", i)
	}
	out := tagList(tags)
	assert.Contains(t, out, "(+5 more)")
	assert.NotContains(t, out, "tag:12")
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "rfc3339", input: "2024-01-01T12:30:45Z", expected: "2024-01-01 12:30:45 UTC"},
		{name: "rfc3339 with offset", input: "2024-01-01T14:30:45+02:00", expected: "2024-01-01 12:30:45 UTC"},
		{name: "epoch milliseconds", input: "1704112245000", expected: "2024-01-01 12:30:45 UTC"},
		{name: "empty", input: "", expected: "N/A"},
		{name: "opaque value passes through", input: "not-a-time", expected: "not-a-time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Timestamp(tt.input))
		})
	}
}
