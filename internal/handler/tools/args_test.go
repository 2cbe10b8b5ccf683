package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadog-community/datadog-mcp-server/pkg/dderr"
	"github.com/datadog-community/datadog-mcp-server/pkg/query"
)

func TestParseSearchArgsDefaults(t *testing.T) {
	req, err := parseSearchArgs(map[string]any{"query": "status:error"})
	require.NoError(t, err)

	assert.Equal(t, "status:error", req.Query)
	assert.Equal(t, "now-15m", req.From)
	assert.Equal(t, "now", req.To)
	assert.Equal(t, 50, req.Limit)
	assert.Equal(t, query.FormatMarkdown, req.Format)
}

func TestParseSearchArgsExplicit(t *testing.T) {
	req, err := parseSearchArgs(map[string]any{
		"query":           "service:web-app",
		"from":            "now-1h",
		"to":              "now",
		"limit":           "200",
		"response_format": "json",
	})
	require.NoError(t, err)

	assert.Equal(t, "now-1h", req.From)
	assert.Equal(t, 200, req.Limit)
	assert.Equal(t, query.FormatJSON, req.Format)
}

func TestParseSearchArgsNumericLimit(t *testing.T) {
	// JSON numbers arrive as float64.
	req, err := parseSearchArgs(map[string]any{"query": "status:error", "limit": float64(25)})
	require.NoError(t, err)
	assert.Equal(t, 25, req.Limit)
}

func TestParseSearchArgsMissingQuery(t *testing.T) {
	_, err := parseSearchArgs(map[string]any{})
	require.Error(t, err)
	assert.Equal(t, dderr.KindBadQuery, dderr.Classify(err).Kind)
}

func TestParseSearchArgsBadLimit(t *testing.T) {
	_, err := parseSearchArgs(map[string]any{"query": "status:error", "limit": "lots"})
	require.Error(t, err)
	assert.Equal(t, dderr.KindBadQuery, dderr.Classify(err).Kind)

	_, err = parseSearchArgs(map[string]any{"query": "status:error", "limit": true})
	require.Error(t, err)
}

func TestParseSearchArgsEmptyLimitString(t *testing.T) {
	req, err := parseSearchArgs(map[string]any{"query": "status:error", "limit": ""})
	require.NoError(t, err)
	assert.Equal(t, 50, req.Limit)
}
