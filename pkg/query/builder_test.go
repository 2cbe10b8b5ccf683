package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadog-community/datadog-mcp-server/pkg/dderr"
)

func intptr(v int) *int { return &v }

func TestBuildDefaults(t *testing.T) {
	req, err := Build(Params{Query: "status:error"})
	require.NoError(t, err)

	assert.Equal(t, "status:error", req.Query)
	assert.Equal(t, "now-15m", req.From)
	assert.Equal(t, "now", req.To)
	assert.Equal(t, 50, req.Limit)
	assert.Equal(t, FormatMarkdown, req.Format)
}

func TestBuildLimitClamping(t *testing.T) {
	tests := []struct {
		name     string
		limit    *int
		expected int
	}{
		{name: "default when absent", limit: nil, expected: 50},
		{name: "lower bound passes through", limit: intptr(1), expected: 1},
		{name: "upper bound passes through", limit: intptr(1000), expected: 1000},
		{name: "mid range passes through", limit: intptr(250), expected: 250},
		{name: "zero clamps up", limit: intptr(0), expected: 1},
		{name: "negative clamps up", limit: intptr(-10), expected: 1},
		{name: "over max clamps down", limit: intptr(5000), expected: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Build(Params{Query: "service:web-app", Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, req.Limit)
		})
	}
}

func TestBuildRejectsEmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := Build(Params{Query: q})
		require.Error(t, err)
		classified := dderr.Classify(err)
		assert.Equal(t, dderr.KindBadQuery, classified.Kind)
		assert.Contains(t, classified.Message, "empty")
	}
}

func TestBuildTrimsQuery(t *testing.T) {
	req, err := Build(Params{Query: "  status:error  "})
	require.NoError(t, err)
	assert.Equal(t, "status:error", req.Query)
}

func TestBuildRejectsOverlongQuery(t *testing.T) {
	_, err := Build(Params{Query: strings.Repeat("a", MaxQueryLength+1)})
	require.Error(t, err)
	assert.Equal(t, dderr.KindBadQuery, dderr.Classify(err).Kind)
}

func TestBuildRejectsBadTimeExpressions(t *testing.T) {
	_, err := Build(Params{Query: "status:error", From: "yesterday"})
	require.Error(t, err)
	classified := dderr.Classify(err)
	assert.Equal(t, dderr.KindBadQuery, classified.Kind)
	assert.Contains(t, classified.Message, "yesterday")

	_, err = Build(Params{Query: "status:error", To: "in a bit"})
	require.Error(t, err)
}

func TestBuildAcceptsExplicitTimeRange(t *testing.T) {
	req, err := Build(Params{
		Query: "service:web-app AND status:error",
		From:  "2024-01-01T00:00:00Z",
		To:    "1704153600000",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T00:00:00Z", req.From)
	assert.Equal(t, "1704153600000", req.To)
}

func TestBuildFormats(t *testing.T) {
	req, err := Build(Params{Query: "status:error", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, req.Format)

	req, err = Build(Params{Query: "status:error", Format: "markdown"})
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, req.Format)

	_, err = Build(Params{Query: "status:error", Format: "yaml"})
	require.Error(t, err)
	assert.Equal(t, dderr.KindBadQuery, dderr.Classify(err).Kind)
}
