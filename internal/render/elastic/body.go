package elastic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/kailas-cloud/restql/internal/domain/query/node"
	"github.com/kailas-cloud/restql/internal/domain/query/sortkey"
)

// Compiled is what a search request body is rendered from.
type Compiled interface {
	Query() node.Node
	Sort() []sortkey.Key
	Limit() int
	// SearchAfter holds the decoded cursor values, nil on the first page.
	SearchAfter() []any
	// Backward reports a before-cursor: sort is reversed and hits must be flipped back.
	Backward() bool
}

// Sort renders sort keys. reverse flips every direction.
func Sort(keys []sortkey.Key, reverse bool) (json.RawMessage, error) {
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		if reverse {
			k = k.Reversed()
		}
		body := object{"order": string(k.Direction())}
		if nested := nestedSort(k.Scopes()); nested != nil {
			body["nested"] = nested
		}
		out = append(out, object{k.Field(): body})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal sort: %w", err)
	}
	return data, nil
}

// nestedSort chains scopes outermost first: {path: a, nested: {path: a.b}}.
func nestedSort(scopes []string) object {
	var inner object
	for i := len(scopes) - 1; i >= 0; i-- {
		cur := object{"path": scopes[i]}
		if inner != nil {
			cur["nested"] = inner
		}
		inner = cur
	}
	return inner
}

// Body renders a complete _search request body.
func Body(c Compiled) ([]byte, error) {
	q, err := Query(c.Query())
	if err != nil {
		return nil, err
	}
	body, err := sjson.SetRawBytes([]byte(`{}`), "query", q)
	if err != nil {
		return nil, fmt.Errorf("set query: %w", err)
	}
	if keys := c.Sort(); len(keys) > 0 {
		s, err := Sort(keys, c.Backward())
		if err != nil {
			return nil, err
		}
		if body, err = sjson.SetRawBytes(body, "sort", s); err != nil {
			return nil, fmt.Errorf("set sort: %w", err)
		}
	}
	if c.Limit() > 0 {
		if body, err = sjson.SetBytes(body, "size", c.Limit()); err != nil {
			return nil, fmt.Errorf("set size: %w", err)
		}
	}
	if after := c.SearchAfter(); len(after) > 0 {
		if body, err = sjson.SetBytes(body, "search_after", after); err != nil {
			return nil, fmt.Errorf("set search_after: %w", err)
		}
	}
	return body, nil
}

// CountBody renders a _count request body.
func CountBody(n node.Node) ([]byte, error) {
	q, err := Query(n)
	if err != nil {
		return nil, err
	}
	body, err := sjson.SetRawBytes([]byte(`{}`), "query", q)
	if err != nil {
		return nil, fmt.Errorf("set query: %w", err)
	}
	return body, nil
}

// Pretty indents a rendered body for display.
func Pretty(body []byte) string {
	return strings.TrimRight(string(pretty.Pretty(body)), "\n")
}
