package analytics

import (
	"time"

	"github.com/google/uuid"
	segment "github.com/segmentio/analytics-go/v3"
	"go.uber.org/zap"
)

// Reporter sends anonymous usage events. It is a no-op unless a write key
// is configured; query contents are never sent.
type Reporter struct {
	client      segment.Client
	anonymousID string
	logger      *zap.Logger
}

func New(log *zap.Logger, writeKey string) *Reporter {
	r := &Reporter{logger: log, anonymousID: uuid.NewString()}
	if writeKey == "" {
		return r
	}
	r.client = segment.New(writeKey)
	return r
}

// TrackToolCall records one tool invocation with its outcome kind
// ("success" or the classified error kind) and duration.
func (r *Reporter) TrackToolCall(tool, outcome string, elapsed time.Duration) {
	if r.client == nil {
		return
	}
	err := r.client.Enqueue(segment.Track{
		AnonymousId: r.anonymousID,
		Event:       "mcp_tool_called",
		Properties: segment.NewProperties().
			Set("tool", tool).
			Set("outcome", outcome).
			Set("duration_ms", elapsed.Milliseconds()),
	})
	if err != nil {
		r.logger.Debug("Failed to enqueue analytics event", zap.Error(err))
	}
}

func (r *Reporter) Close() {
	if r.client == nil {
		return
	}
	if err := r.client.Close(); err != nil {
		r.logger.Debug("Failed to close analytics client", zap.Error(err))
	}
}
