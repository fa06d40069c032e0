// Package sorting compiles sort expressions ("lastName desc, age") into sort keys.
package sorting

import (
	"strings"

	"github.com/kailas-cloud/restql/internal/domain/query/sortkey"
	"github.com/kailas-cloud/restql/internal/domain/schema"
	"github.com/kailas-cloud/restql/internal/domain/violation"
)

// DefaultDepth is the schema depth sort fields may reach.
const DefaultDepth = 3

// FieldResolver looks dotted field paths up against a shape.
type FieldResolver interface {
	Field(shape schema.Shape, dotted string, maxDepth int) (schema.Path, error)
}

// Translator compiles sort expressions.
type Translator struct {
	fields FieldResolver
	depth  int
}

// New creates a Translator. depth <= 0 selects DefaultDepth.
func New(fields FieldResolver, depth int) *Translator {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Translator{fields: fields, depth: depth}
}

// Compile parses comma-separated "field[ direction]" pairs. Every problem is reported in
// one *violation.Error.
func (t *Translator) Compile(expr string, root schema.Shape) ([]sortkey.Key, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	var (
		set  violation.Set
		keys []sortkey.Key
		seen = make(map[string]bool)
	)
	for _, pair := range strings.Split(expr, ",") {
		pair = strings.TrimSpace(pair)
		parts := strings.Fields(pair)
		if len(parts) == 0 || len(parts) > 2 {
			set.Add(invalid(violation.RuleSortMalformed, pair))
			continue
		}

		dir := sortkey.Asc
		if len(parts) == 2 {
			d, ok := sortkey.ParseDirection(parts[1])
			if !ok {
				set.Add(invalid(violation.RuleSortDirection, pair))
				continue
			}
			dir = d
		}

		path, err := t.fields.Field(root, parts[0], t.depth)
		if err != nil {
			set.Add(violation.Violation{
				Field:    violation.FieldSort,
				Kind:     violation.Existence,
				Negative: true,
				Rule:     violation.RuleUnknownField,
				Clause:   pair,
			})
			continue
		}
		if !path.Kind.IsScalar() {
			set.Add(invalid(violation.RuleSortNotScalar, pair))
			continue
		}
		if seen[path.Name] {
			set.Add(violation.Violation{
				Field:  violation.FieldSort,
				Kind:   violation.Redundant,
				Rule:   violation.RuleSortDuplicate,
				Clause: pair,
			})
			continue
		}
		seen[path.Name] = true
		keys = append(keys, sortkey.New(path, dir))
	}

	if err := set.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func invalid(rule violation.Rule, pair string) violation.Violation {
	return violation.Violation{
		Field:    violation.FieldSort,
		Kind:     violation.ValidFormat,
		Negative: true,
		Rule:     rule,
		Clause:   pair,
	}
}
