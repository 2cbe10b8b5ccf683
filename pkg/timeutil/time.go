package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Datadog evaluates date math server-side, so expressions are validated
// here and passed through unchanged rather than resolved to timestamps.
var relativeExpr = regexp.MustCompile(`^now-(\d+)(m|h|d)$`)

// InvalidTimeRangeError reports a time expression that matches none of the
// accepted forms.
type InvalidTimeRangeError struct {
	Expr string
}

func (e *InvalidTimeRangeError) Error() string {
	return fmt.Sprintf("invalid time expression %q: use 'now', 'now-<N><m|h|d>' (e.g. 'now-15m'), an ISO-8601 timestamp, or epoch milliseconds", e.Expr)
}

// ValidateExpr checks that expr is one of: "now", a relative expression
// like "now-15m"/"now-1h"/"now-7d", an ISO-8601/RFC3339 timestamp, or an
// epoch-millisecond integer string.
func ValidateExpr(expr string) error {
	if expr == "now" || relativeExpr.MatchString(expr) {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, expr); err == nil {
		return nil
	}
	if _, err := strconv.ParseInt(expr, 10, 64); err == nil {
		return nil
	}
	return &InvalidTimeRangeError{Expr: expr}
}

// ResolveRange validates both ends of a time range. Each expression is
// checked independently; from/to chronological ordering is left to the
// backend, which is the authority on resolving "now"-relative expressions.
func ResolveRange(from, to string) (string, string, error) {
	if err := ValidateExpr(from); err != nil {
		return "", "", err
	}
	if err := ValidateExpr(to); err != nil {
		return "", "", err
	}
	return from, to, nil
}
