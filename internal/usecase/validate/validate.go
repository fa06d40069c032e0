// Package validate enforces the filter grammar and pagination rules of a list request.
package validate

import (
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/kailas-cloud/restql/internal/domain/query/clause"
	"github.com/kailas-cloud/restql/internal/domain/query/cursor"
	"github.com/kailas-cloud/restql/internal/domain/query/operator"
	"github.com/kailas-cloud/restql/internal/domain/schema"
	"github.com/kailas-cloud/restql/internal/domain/violation"
)

// Defaults.
const (
	DefaultDepth      = 3
	DefaultMaxClauses = 32
)

// Validator checks tokenized filter clauses against a root shape.
type Validator struct {
	fields     FieldResolver
	depth      int
	maxClauses int
}

// Option customizes a Validator.
type Option func(*Validator)

// WithDepth sets the schema depth filters may reach.
func WithDepth(depth int) Option {
	return func(v *Validator) { v.depth = depth }
}

// WithMaxClauses caps the number of clauses per request (0 disables the cap).
func WithMaxClauses(n int) Option {
	return func(v *Validator) { v.maxClauses = n }
}

// New creates a Validator.
func New(fields FieldResolver, opts ...Option) *Validator {
	v := &Validator{fields: fields, depth: DefaultDepth, maxClauses: DefaultMaxClauses}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Filters validates every clause and returns a *violation.Error listing all failures.
// Each clause contributes at most one violation, for the first rule it breaks.
func (v *Validator) Filters(clauses []clause.Clause, root schema.Shape) error {
	var set violation.Set
	if v.maxClauses > 0 && len(clauses) > v.maxClauses {
		set.Add(violation.InvalidFilter(violation.RuleTooManyClauses, ""))
	}

	valid := make([]clause.Clause, 0, len(clauses))
	for _, c := range clauses {
		if rule, bad := v.check(c, root); bad {
			set.Add(violation.InvalidFilter(rule, c.Raw()))
			continue
		}
		valid = append(valid, c)
	}

	set.Add(duplicates(clauses)...)
	set.Add(betweenBounds(valid)...)
	return set.Err()
}

// Cursor rejects a request carrying both a before and an after cursor.
func (v *Validator) Cursor(p cursor.Pair) error {
	if !p.Conflicting() {
		return nil
	}
	var set violation.Set
	set.Add(violation.Violation{
		Field: violation.FieldCursor,
		Kind:  violation.Redundant,
		Rule:  violation.RuleCursorBoth,
	})
	return set.Err()
}

func (v *Validator) check(c clause.Clause, root schema.Shape) (violation.Rule, bool) {
	key := c.CleanKey()
	if len(key) < 1 || len(c.FieldPath()) == 0 {
		return violation.RuleStructure, true
	}
	if !indexed(key) {
		return violation.RuleArrayIndex, true
	}
	if logicalTail(key) {
		return violation.RuleLogicalTail, true
	}
	op, ok := terminal(key)
	if !ok {
		return violation.RuleMissingOp, true
	}

	path, err := v.fields.Field(root, c.Field(), v.depth)
	if err != nil {
		return violation.RuleUnknownField, true
	}
	if !typed(path.Kind, op, c.Value()) {
		return violation.RuleTypeMismatch, true
	}
	return "", false
}

// indexed reports whether every array operator is followed by a positional index, and
// every logical operator that is not the final key token likewise.
func indexed(key []string) bool {
	for i, tok := range key {
		op, ok := operator.Parse(tok)
		if !ok {
			continue
		}
		needs := op.IsArray() || (op.IsLogical() && i < len(key)-1)
		if needs && (i+1 >= len(key) || !clause.IsPosition(key[i+1])) {
			return false
		}
	}
	return true
}

// logicalTail reports a key ending on a junction with no predicate after it.
func logicalTail(key []string) bool {
	n := len(key)
	if operator.IsLogical(key[n-1]) {
		return true
	}
	return n >= 2 && clause.IsPosition(key[n-1]) && operator.IsLogical(key[n-2])
}

func terminal(key []string) (operator.Operator, bool) {
	n := len(key)
	if n >= 2 && clause.IsPosition(key[n-1]) {
		if op, ok := operator.Parse(key[n-2]); ok && op.IsArray() {
			return op, true
		}
	}
	op, ok := operator.Parse(key[n-1])
	if !ok || !op.IsComparison() {
		return 0, false
	}
	return op, true
}

func typed(kind schema.Kind, op operator.Operator, value string) bool {
	if !kind.IsScalar() {
		return false
	}
	if op.StringOnly() && !kind.IsText() {
		return false
	}
	switch {
	case kind.IsNumeric():
		if strings.TrimSpace(value) == "" {
			return false
		}
		_, err := cast.ToFloat64E(value)
		return err == nil
	case kind == schema.Bool:
		_, err := cast.ToBoolE(value)
		return err == nil
	default:
		return true
	}
}

func duplicates(clauses []clause.Clause) []violation.Violation {
	var out []violation.Violation
	counts := make(map[string]int, len(clauses))
	for _, c := range clauses {
		key := c.NormalizedKey()
		counts[key]++
		if counts[key] == 2 {
			out = append(out, violation.InvalidFilter(violation.RuleDuplicate, c.Raw()))
		}
	}
	return out
}

// betweenBounds requires each $between to carry exactly positions 0 and 1.
func betweenBounds(clauses []clause.Clause) []violation.Violation {
	type group struct {
		raw       string
		positions []int
	}
	var order []string
	groups := make(map[string]*group)
	for _, c := range clauses {
		key := c.CleanKey()
		n := len(key)
		if n < 2 {
			continue
		}
		if op, ok := operator.Parse(key[n-2]); !ok || op != operator.Between {
			continue
		}
		pos, _ := clause.Position(key[n-1])
		slot := strings.ToLower(strings.Join(key[:n-1], "."))
		g, ok := groups[slot]
		if !ok {
			g = &group{raw: c.Raw()}
			groups[slot] = g
			order = append(order, slot)
		}
		g.positions = append(g.positions, pos)
	}

	var out []violation.Violation
	for _, slot := range order {
		g := groups[slot]
		slices.Sort(g.positions)
		if !slices.Equal(slices.Compact(g.positions), []int{0, 1}) {
			out = append(out, violation.InvalidFilter(violation.RuleBetweenBounds, g.raw))
		}
	}
	return out
}
