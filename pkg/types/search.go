package types

// Wire structs for the Datadog v2 search APIs. Field names follow the API
// schema exactly; normalization into records happens in the client.

const (
	SortTimestampDesc = "-timestamp"

	SpansRequestType = "search_request"
)

type QueryFilter struct {
	Query string `json:"query"`
	From  string `json:"from"`
	To    string `json:"to"`
}

type RequestPage struct {
	Limit int `json:"limit"`
}

// LogsSearchRequest is the POST body for /api/v2/logs/events/search.
type LogsSearchRequest struct {
	Filter QueryFilter `json:"filter"`
	Page   RequestPage `json:"page"`
	Sort   string      `json:"sort"`
}

func NewLogsSearchRequest(query, from, to string, limit int) LogsSearchRequest {
	return LogsSearchRequest{
		Filter: QueryFilter{Query: query, From: from, To: to},
		Page:   RequestPage{Limit: limit},
		Sort:   SortTimestampDesc,
	}
}

// SpansSearchRequest is the POST body for /api/v2/spans/events/search.
// The spans API wraps the same filter/page/sort shape in a JSON:API
// data envelope.
type SpansSearchRequest struct {
	Data SpansSearchRequestData `json:"data"`
}

type SpansSearchRequestData struct {
	Type       string                       `json:"type"`
	Attributes SpansSearchRequestAttributes `json:"attributes"`
}

type SpansSearchRequestAttributes struct {
	Filter QueryFilter `json:"filter"`
	Page   RequestPage `json:"page"`
	Sort   string      `json:"sort"`
}

func NewSpansSearchRequest(query, from, to string, limit int) SpansSearchRequest {
	return SpansSearchRequest{
		Data: SpansSearchRequestData{
			Type: SpansRequestType,
			Attributes: SpansSearchRequestAttributes{
				Filter: QueryFilter{Query: query, From: from, To: to},
				Page:   RequestPage{Limit: limit},
				Sort:   SortTimestampDesc,
			},
		},
	}
}

type SearchMeta struct {
	Page *MetaPage `json:"page,omitempty"`
}

type MetaPage struct {
	After string `json:"after,omitempty"`
}

type LogsSearchResponse struct {
	Data []LogEvent  `json:"data"`
	Meta *SearchMeta `json:"meta,omitempty"`
}

type LogEvent struct {
	ID         string             `json:"id"`
	Attributes LogEventAttributes `json:"attributes"`
}

// LogEventAttributes carries the well-known log fields plus the open-ended
// custom attribute map (service, status, host and friends live there).
type LogEventAttributes struct {
	Timestamp  string         `json:"timestamp"`
	Message    string         `json:"message"`
	Tags       []string       `json:"tags"`
	Attributes map[string]any `json:"attributes"`
}

type SpansSearchResponse struct {
	Data []SpanEvent `json:"data"`
	Meta *SearchMeta `json:"meta,omitempty"`
}

type SpanEvent struct {
	ID         string              `json:"id"`
	Attributes SpanEventAttributes `json:"attributes"`
}

type SpanEventAttributes struct {
	SpanID     string         `json:"span_id"`
	TraceID    string         `json:"trace_id"`
	Start      string         `json:"start"`
	Tags       []string       `json:"tags"`
	Attributes map[string]any `json:"attributes"`
}

// LogRecord is a normalized log entry handed to the formatter.
type LogRecord struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"timestamp"`
	Message   string   `json:"message"`
	Service   string   `json:"service"`
	Status    string   `json:"status"`
	Host      string   `json:"host"`
	TraceID   string   `json:"trace_id"`
	SpanID    string   `json:"span_id"`
	Tags      []string `json:"tags"`
}

// LogsResult is a per-request result set; it is built, formatted, and
// discarded, never persisted.
type LogsResult struct {
	Total      int         `json:"total"`
	Count      int         `json:"count"`
	Logs       []LogRecord `json:"logs"`
	HasMore    bool        `json:"has_more"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// SpanRecord is a normalized span handed to the formatter. Duration is in
// nanoseconds, as reported by the spans API.
type SpanRecord struct {
	SpanID    string   `json:"span_id"`
	TraceID   string   `json:"trace_id"`
	Timestamp string   `json:"timestamp"`
	Service   string   `json:"service"`
	Resource  string   `json:"resource"`
	Operation string   `json:"operation"`
	Duration  float64  `json:"duration"`
	Error     bool     `json:"error"`
	Tags      []string `json:"tags"`
}

type SpansResult struct {
	Total      int          `json:"total"`
	Count      int          `json:"count"`
	Spans      []SpanRecord `json:"spans"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
