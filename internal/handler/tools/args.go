package tools

import (
	"fmt"
	"strconv"

	"github.com/datadog-community/datadog-mcp-server/pkg/dderr"
	"github.com/datadog-community/datadog-mcp-server/pkg/query"
)

// parseSearchArgs turns raw tool arguments into a validated search
// request. Both search tools take the same parameter set.
func parseSearchArgs(args map[string]any) (*query.Request, error) {
	p := query.Params{}
	if v, ok := args["query"].(string); ok {
		p.Query = v
	}
	if v, ok := args["from"].(string); ok {
		p.From = v
	}
	if v, ok := args["to"].(string); ok {
		p.To = v
	}
	if v, ok := args["response_format"].(string); ok {
		p.Format = v
	}

	limit, err := intArg(args, "limit")
	if err != nil {
		return nil, err
	}
	p.Limit = limit

	return query.Build(p)
}

// intArg reads an optional integer argument that may arrive as a JSON
// number or a numeric string. Returns nil when absent.
func intArg(args map[string]any, name string) (*int, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case float64:
		n := int(v)
		return &n, nil
	case int:
		return &v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, dderr.New(dderr.KindBadQuery, fmt.Sprintf("%q must be an integer, got %q", name, v))
		}
		return &n, nil
	default:
		return nil, dderr.New(dderr.KindBadQuery, fmt.Sprintf("%q must be an integer", name))
	}
}
