package dderr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind is the closed set of failure categories surfaced to tool callers.
type Kind string

const (
	KindConfig    Kind = "config"
	KindAuth      Kind = "auth"
	KindRateLimit Kind = "rate_limit"
	KindBadQuery  Kind = "bad_query"
	KindNetwork   Kind = "network"
	KindUnknown   Kind = "unknown"
)

// ClassifiedError is the single error shape returned at the tool boundary.
// Guidance is one actionable line; Message carries the underlying cause.
type ClassifiedError struct {
	Kind     Kind
	Message  string
	Guidance string
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("Error (%s): %s. %s", e.Kind, e.Message, e.Guidance)
}

// New builds a ClassifiedError with the standard guidance line for kind.
func New(kind Kind, message string) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Message: message, Guidance: guidanceFor(kind)}
}

func guidanceFor(kind Kind) string {
	switch kind {
	case KindConfig:
		return "Set them in your environment or .env file before starting the server"
	case KindAuth:
		return "Verify that DD_API_KEY and DD_APP_KEY are valid and have the required permissions for logs and traces access"
	case KindRateLimit:
		return "Wait before retrying; the traces API is capped at 300 requests per hour, so prefer more specific queries"
	case KindBadQuery:
		return "Check the query syntax against the Datadog search grammar: https://docs.datadoghq.com/logs/explorer/search_syntax/"
	case KindNetwork:
		return "Check network connectivity and that DD_SITE points at the correct Datadog site"
	default:
		return "Retry the request; if the problem persists, inspect the message above"
	}
}

// APIError is returned by the backend client for any non-2xx Datadog response.
type APIError struct {
	StatusCode  int
	Body        string
	RateLimited bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("datadog api returned status %d: %s", e.StatusCode, e.Body)
}

// ConfigError reports required environment variables missing at startup.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Missing, ", "))
}

// Classify maps any failure from the request pipeline into the closed
// taxonomy. It is the only place status codes and transport errors are
// interpreted; callers surface the result verbatim and never retry it.
func Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return New(KindConfig, cfgErr.Error())
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(KindNetwork, "request timed out: the Datadog API did not respond in time")
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return New(KindNetwork, "request timed out: the Datadog API did not respond in time")
		}
		return New(KindNetwork, "connection failed: unable to reach the Datadog API")
	}

	return New(KindUnknown, err.Error())
}

func classifyAPIError(e *APIError) *ClassifiedError {
	switch {
	case e.StatusCode == 400:
		return New(KindBadQuery, fmt.Sprintf("bad request: %s", e.Body))
	case e.StatusCode == 401 || e.StatusCode == 403:
		return New(KindAuth, "permission denied by the Datadog API")
	case e.StatusCode == 429 || e.RateLimited:
		return New(KindRateLimit, "rate limit exceeded")
	case e.StatusCode == 404:
		return New(KindUnknown, "resource not found or not accessible with the configured keys")
	case e.StatusCode >= 500:
		return New(KindUnknown, fmt.Sprintf("datadog server error (%d); this is usually temporary", e.StatusCode))
	default:
		return New(KindUnknown, e.Error())
	}
}
