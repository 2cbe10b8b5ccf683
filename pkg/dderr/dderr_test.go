package dderr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedKind Kind
	}{
		{
			name:         "bad request",
			err:          &APIError{StatusCode: 400, Body: "invalid filter"},
			expectedKind: KindBadQuery,
		},
		{
			name:         "unauthorized",
			err:          &APIError{StatusCode: 401, Body: "unauthorized"},
			expectedKind: KindAuth,
		},
		{
			name:         "forbidden",
			err:          &APIError{StatusCode: 403, Body: "forbidden"},
			expectedKind: KindAuth,
		},
		{
			name:         "rate limited by status",
			err:          &APIError{StatusCode: 429, Body: "too many requests"},
			expectedKind: KindRateLimit,
		},
		{
			name:         "rate limited by header",
			err:          &APIError{StatusCode: 200, RateLimited: true},
			expectedKind: KindRateLimit,
		},
		{
			name:         "not found",
			err:          &APIError{StatusCode: 404, Body: "not found"},
			expectedKind: KindUnknown,
		},
		{
			name:         "server error",
			err:          &APIError{StatusCode: 503, Body: "unavailable"},
			expectedKind: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := Classify(tt.err)
			require.NotNil(t, classified)
			assert.Equal(t, tt.expectedKind, classified.Kind)
			assert.NotEmpty(t, classified.Guidance)
		})
	}
}

func TestClassifyRateLimitGuidance(t *testing.T) {
	classified := Classify(&APIError{StatusCode: 429, Body: "too many requests"})
	require.NotNil(t, classified)
	assert.Equal(t, KindRateLimit, classified.Kind)
	assert.Contains(t, classified.Guidance, "300 requests per hour")
}

func TestClassifyConfigError(t *testing.T) {
	classified := Classify(&ConfigError{Missing: []string{"DD_APP_KEY"}})
	require.NotNil(t, classified)
	assert.Equal(t, KindConfig, classified.Kind)
	assert.Contains(t, classified.Message, "DD_APP_KEY")
}

func TestClassifyNetworkErrors(t *testing.T) {
	classified := Classify(context.DeadlineExceeded)
	require.NotNil(t, classified)
	assert.Equal(t, KindNetwork, classified.Kind)

	classified = Classify(fmt.Errorf("do request: %w", &timeoutErr{}))
	require.NotNil(t, classified)
	assert.Equal(t, KindNetwork, classified.Kind)
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	original := New(KindBadQuery, "query cannot be empty")
	classified := Classify(fmt.Errorf("build request: %w", original))
	assert.Same(t, original, classified)
}

func TestClassifyUnknownKeepsMessage(t *testing.T) {
	classified := Classify(errors.New("something odd happened"))
	require.NotNil(t, classified)
	assert.Equal(t, KindUnknown, classified.Kind)
	assert.Equal(t, "something odd happened", classified.Message)
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

type timeoutErr struct{}

func (*timeoutErr) Error() string   { return "i/o timeout" }
func (*timeoutErr) Timeout() bool   { return true }
func (*timeoutErr) Temporary() bool { return true }
