package format

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/datadog-community/datadog-mcp-server/pkg/types"
)

// CharacterLimit is the output size budget. Truncation is size-based, not
// count-based, so output stays within the caller's message-size constraint
// regardless of how large individual records are.
const CharacterLimit = 25000

// footerReserve keeps room in the budget for the truncation note and the
// pagination hint appended after the record blocks.
const footerReserve = 600

const maxTagsShown = 10

// LogsMarkdown renders a logs result set as a human-readable document.
// Record blocks are accumulated until the next one would overflow the
// budget; the omitted count is reported in a trailing note.
func LogsMarkdown(result *types.LogsResult, query string) string {
	var b strings.Builder
	b.WriteString("# Log Search Results\n\n")
	fmt.Fprintf(&b, "**Query:** `%s`\n", query)
	fmt.Fprintf(&b, "**Results:** Found %d log(s)\n\n", result.Total)

	if len(result.Logs) == 0 {
		b.WriteString("No logs found matching the query.\n")
		return b.String()
	}

	omitted := 0
	for i, log := range result.Logs {
		block := logBlock(i+1, log)
		if b.Len()+len(block) > CharacterLimit-footerReserve {
			omitted = len(result.Logs) - i
			break
		}
		b.WriteString(block)
	}

	if omitted > 0 {
		b.WriteString(truncationNote(omitted))
	}
	if result.HasMore {
		b.WriteString("---\n\n**Note:** More results available. The API returned a pagination cursor.\n")
	}
	return b.String()
}

func logBlock(n int, log types.LogRecord) string {
	var b strings.Builder
	service := orUnknown(log.Service)

	fmt.Fprintf(&b, "## Log %d: %s\n\n", n, service)
	fmt.Fprintf(&b, "- **Timestamp:** %s\n", Timestamp(log.Timestamp))
	fmt.Fprintf(&b, "- **Status:** %s\n", orUnknown(log.Status))
	if log.Host != "" {
		fmt.Fprintf(&b, "- **Host:** %s\n", log.Host)
	}
	message := log.Message
	if message == "" {
		message = "No message"
	}
	fmt.Fprintf(&b, "- **Message:** %s\n", message)
	if log.TraceID != "" {
		fmt.Fprintf(&b, "- **Trace ID:** %s\n", log.TraceID)
	}
	if log.SpanID != "" {
		fmt.Fprintf(&b, "- **Span ID:** %s\n", log.SpanID)
	}
	if len(log.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags:** %s\n", tagList(log.Tags))
	}
	b.WriteString("\n")
	return b.String()
}

// SpansMarkdown renders a spans result set with the same truncation policy
// as LogsMarkdown.
func SpansMarkdown(result *types.SpansResult, query string) string {
	var b strings.Builder
	b.WriteString("# Trace/Span Search Results\n\n")
	fmt.Fprintf(&b, "**Query:** `%s`\n", query)
	fmt.Fprintf(&b, "**Results:** Found %d span(s)\n\n", result.Total)

	if len(result.Spans) == 0 {
		b.WriteString("No traces/spans found matching the query.\n")
		return b.String()
	}

	omitted := 0
	for i, span := range result.Spans {
		block := spanBlock(i+1, span)
		if b.Len()+len(block) > CharacterLimit-footerReserve {
			omitted = len(result.Spans) - i
			break
		}
		b.WriteString(block)
	}

	if omitted > 0 {
		b.WriteString(truncationNote(omitted))
	}
	if result.HasMore {
		b.WriteString("---\n\n**Note:** More results available. The API returned a pagination cursor.\n")
	}
	return b.String()
}

func spanBlock(n int, span types.SpanRecord) string {
	var b strings.Builder
	service := orUnknown(span.Service)
	operation := orUnknown(span.Operation)

	fmt.Fprintf(&b, "## Span %d: %s - %s\n\n", n, service, operation)
	fmt.Fprintf(&b, "- **Timestamp:** %s\n", Timestamp(span.Timestamp))
	fmt.Fprintf(&b, "- **Service:** %s\n", service)
	fmt.Fprintf(&b, "- **Resource:** %s\n", orUnknown(span.Resource))
	fmt.Fprintf(&b, "- **Operation:** %s\n", operation)
	if span.Duration > 0 {
		fmt.Fprintf(&b, "- **Duration:** %.2f ms\n", span.Duration/1_000_000)
	}
	errStr := "No"
	if span.Error {
		errStr = "Yes"
	}
	fmt.Fprintf(&b, "- **Error:** %s\n", errStr)
	if span.TraceID != "" {
		fmt.Fprintf(&b, "- **Trace ID:** %s\n", span.TraceID)
	}
	if span.SpanID != "" {
		fmt.Fprintf(&b, "- **Span ID:** %s\n", span.SpanID)
	}
	if len(span.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags:** %s\n", tagList(span.Tags))
	}
	b.WriteString("\n")
	return b.String()
}

func truncationNote(omitted int) string {
	var b strings.Builder
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "**Response Truncated:** %d record(s) omitted to keep the response under the %d character limit.\n\n", omitted, CharacterLimit)
	b.WriteString("Suggestions to see more results:\n")
	b.WriteString("- Reduce the `limit` parameter\n")
	b.WriteString("- Add more specific filters to the query\n")
	b.WriteString("- Narrow the time range with the `from` and `to` parameters\n")
	return b.String()
}

func tagList(tags []string) string {
	if len(tags) <= maxTagsShown {
		return strings.Join(tags, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(tags[:maxTagsShown], ", "), len(tags)-maxTagsShown)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

type logsDocument struct {
	Total        int               `json:"total"`
	Count        int               `json:"count"`
	Logs         []types.LogRecord `json:"logs"`
	HasMore      bool              `json:"has_more"`
	NextCursor   string            `json:"next_cursor,omitempty"`
	Truncated    bool              `json:"truncated"`
	OmittedCount int               `json:"omitted_count"`
}

type spansDocument struct {
	Total        int                `json:"total"`
	Count        int                `json:"count"`
	Spans        []types.SpanRecord `json:"spans"`
	HasMore      bool               `json:"has_more"`
	NextCursor   string             `json:"next_cursor,omitempty"`
	Truncated    bool               `json:"truncated"`
	OmittedCount int                `json:"omitted_count"`
}

// LogsJSON renders a logs result set as a structured document under the
// same size budget. Truncation is reported with an explicit boolean and an
// omitted-count integer instead of prose.
func LogsJSON(result *types.LogsResult) string {
	doc := logsDocument{
		Total:      result.Total,
		Count:      result.Count,
		Logs:       result.Logs,
		HasMore:    result.HasMore,
		NextCursor: result.NextCursor,
	}
	out := marshalDoc(doc)
	if len(out) <= CharacterLimit {
		return out
	}

	kept := keepWithinBudget(len(result.Logs), func(i int) int {
		return recordSize(result.Logs[i])
	}, len(marshalDoc(logsDocument{Total: result.Total, Count: result.Count, Logs: []types.LogRecord{}})))

	doc.Logs = result.Logs[:kept]
	doc.Truncated = true
	doc.OmittedCount = len(result.Logs) - kept
	return marshalDoc(doc)
}

// SpansJSON renders a spans result set with the same truncation policy as
// LogsJSON.
func SpansJSON(result *types.SpansResult) string {
	doc := spansDocument{
		Total:      result.Total,
		Count:      result.Count,
		Spans:      result.Spans,
		HasMore:    result.HasMore,
		NextCursor: result.NextCursor,
	}
	out := marshalDoc(doc)
	if len(out) <= CharacterLimit {
		return out
	}

	kept := keepWithinBudget(len(result.Spans), func(i int) int {
		return recordSize(result.Spans[i])
	}, len(marshalDoc(spansDocument{Total: result.Total, Count: result.Count, Spans: []types.SpanRecord{}})))

	doc.Spans = result.Spans[:kept]
	doc.Truncated = true
	doc.OmittedCount = len(result.Spans) - kept
	return marshalDoc(doc)
}

// keepWithinBudget accumulates per-record rendered sizes on top of the
// envelope overhead until the running total would exceed the budget.
func keepWithinBudget(n int, size func(int) int, overhead int) int {
	running := overhead
	for i := 0; i < n; i++ {
		next := running + size(i)
		if next > CharacterLimit-footerReserve {
			return i
		}
		running = next
	}
	return n
}

// recordSize measures a record as it renders inside the document array.
// The slack covers the element separator and first-line indentation.
func recordSize(record any) int {
	out, err := json.MarshalIndent(record, "    ", "  ")
	if err != nil {
		return 0
	}
	return len(out) + 8
}

func marshalDoc(doc any) string {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		// Result documents are plain structs; this only fires on a
		// programming error.
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(out)
}

// Timestamp renders an RFC3339 or epoch-millisecond timestamp value as a
// readable UTC string, falling back to the raw value.
func Timestamp(ts string) string {
	if ts == "" {
		return "N/A"
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC().Format("2006-01-02 15:04:05 UTC")
	}
	if ms, err := strconv.ParseInt(ts, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05 UTC")
	}
	return ts
}
