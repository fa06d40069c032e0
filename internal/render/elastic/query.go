// Package elastic renders compiled query trees and sort keys as Elasticsearch query DSL.
package elastic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/restql/internal/domain/query/node"
	"github.com/kailas-cloud/restql/internal/domain/query/operator"
)

type object = map[string]any

// Query renders n as a query DSL clause.
func Query(n node.Node) (json.RawMessage, error) {
	q, err := render(n)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}
	return data, nil
}

func render(n node.Node) (object, error) {
	if n == nil || node.IsMatchAll(n) {
		return object{"match_all": object{}}, nil
	}
	switch v := n.(type) {
	case node.Leaf:
		return leaf(v)
	case node.Bool:
		return boolean(v)
	case node.Nested:
		child, err := render(v.Child())
		if err != nil {
			return nil, err
		}
		return object{"nested": object{"path": v.Path(), "query": child}}, nil
	default:
		return nil, fmt.Errorf("unsupported node %T", n)
	}
}

func boolean(b node.Bool) (object, error) {
	children := b.Children()
	clauses := make([]any, 0, len(children))
	for _, c := range children {
		q, err := render(c)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, q)
	}
	if b.Op() == operator.Or {
		return object{"bool": object{"should": clauses, "minimum_should_match": 1}}, nil
	}
	return object{"bool": object{"filter": clauses}}, nil
}

func leaf(l node.Leaf) (object, error) {
	op := l.Op()
	if op == operator.MultiMatch {
		return object{"multi_match": object{"query": l.Value(), "fields": l.FieldNames()}}, nil
	}

	q, err := positive(l.Field(), op.Positive(), l)
	if err != nil {
		return nil, err
	}
	if op.IsNegated() {
		return object{"bool": object{"must_not": []any{q}}}, nil
	}
	return q, nil
}

func positive(field string, op operator.Operator, l node.Leaf) (object, error) {
	value := l.Value()
	switch op {
	case operator.Eq:
		return object{"term": object{field: object{"value": value}}}, nil
	case operator.Eqi:
		return object{"term": object{field: object{"value": value, "case_insensitive": true}}}, nil
	case operator.In:
		return object{"terms": object{field: l.Values()}}, nil
	case operator.Lt, operator.Lte, operator.Gt, operator.Gte:
		return object{"range": object{field: object{strings.TrimPrefix(op.Token(), "$"): value}}}, nil
	case operator.Between:
		vs := l.Values()
		if len(vs) != 2 {
			return nil, fmt.Errorf("between on %s needs two bounds, got %d", field, len(vs))
		}
		return object{"range": object{field: object{"gte": vs[0], "lte": vs[1]}}}, nil
	case operator.Contains, operator.Containsi:
		return wildcard(field, "*"+escapeWildcard(fmt.Sprint(value))+"*", op.CaseInsensitive()), nil
	case operator.EndsWith:
		return wildcard(field, "*"+escapeWildcard(fmt.Sprint(value)), false), nil
	case operator.StartsWith, operator.Prefix:
		return object{"prefix": object{field: object{"value": value}}}, nil
	default:
		return nil, fmt.Errorf("operator %s cannot be rendered", op)
	}
}

func wildcard(field, pattern string, caseInsensitive bool) object {
	body := object{"value": pattern}
	if caseInsensitive {
		body["case_insensitive"] = true
	}
	return object{"wildcard": object{field: body}}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string { return wildcardEscaper.Replace(s) }
