package query

import (
	"fmt"
	"strings"

	"github.com/datadog-community/datadog-mcp-server/pkg/dderr"
	"github.com/datadog-community/datadog-mcp-server/pkg/timeutil"
)

// Format selects the tool output rendering.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

const (
	DefaultFrom  = "now-15m"
	DefaultTo    = "now"
	DefaultLimit = 50

	MinLimit = 1
	MaxLimit = 1000

	MaxQueryLength = 500
)

// Params are the raw tool parameters before defaulting and validation.
// A nil Limit means the caller did not supply one.
type Params struct {
	Query  string
	From   string
	To     string
	Limit  *int
	Format string
}

// Request is a validated search request ready for the backend client.
type Request struct {
	Query  string
	From   string
	To     string
	Limit  int
	Format Format
}

// Build applies defaults and bounds to raw tool parameters. It is pure:
// no I/O happens here, and every rejection is a classified bad_query error
// so nothing invalid ever reaches the network.
func Build(p Params) (*Request, error) {
	q := strings.TrimSpace(p.Query)
	if q == "" {
		return nil, dderr.New(dderr.KindBadQuery, "query cannot be empty")
	}
	if len(q) > MaxQueryLength {
		return nil, dderr.New(dderr.KindBadQuery, fmt.Sprintf("query exceeds %d characters", MaxQueryLength))
	}

	from := p.From
	if from == "" {
		from = DefaultFrom
	}
	to := p.To
	if to == "" {
		to = DefaultTo
	}
	from, to, err := timeutil.ResolveRange(from, to)
	if err != nil {
		return nil, dderr.New(dderr.KindBadQuery, err.Error())
	}

	limit := DefaultLimit
	if p.Limit != nil {
		limit = *p.Limit
		if limit < MinLimit {
			limit = MinLimit
		} else if limit > MaxLimit {
			limit = MaxLimit
		}
	}

	format := FormatMarkdown
	switch p.Format {
	case "", string(FormatMarkdown):
	case string(FormatJSON):
		format = FormatJSON
	default:
		return nil, dderr.New(dderr.KindBadQuery, fmt.Sprintf("response_format must be %q or %q, got %q", FormatMarkdown, FormatJSON, p.Format))
	}

	return &Request{
		Query:  q,
		From:   from,
		To:     to,
		Limit:  limit,
		Format: format,
	}, nil
}
