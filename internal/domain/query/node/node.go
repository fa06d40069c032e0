// Package node is the compiled query tree shared by the filter, sort and search
// translators. Nodes are immutable: constructors copy their inputs and accessors
// return copies.
package node

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/restql/internal/domain/query/operator"
)

// Kind tags a node.
type Kind int

// Node kinds.
const (
	KindMatchAll Kind = iota + 1
	KindLeaf
	KindBool
	KindNested
)

// Node is a compiled query tree node.
type Node interface {
	Kind() Kind
	// FieldNames returns every leaf field below the node, in tree order.
	FieldNames() []string
	String() string
	isNode()
}

// --- MatchAll ---

type matchAll struct{}

// MatchAll returns the always-true node.
func MatchAll() Node { return matchAll{} }

func (matchAll) Kind() Kind           { return KindMatchAll }
func (matchAll) FieldNames() []string { return nil }
func (matchAll) String() string       { return "match_all" }
func (matchAll) isNode()              {}

// IsMatchAll reports whether n is nil or the always-true node.
func IsMatchAll(n Node) bool {
	return n == nil || n.Kind() == KindMatchAll
}

// --- Leaf ---

// Leaf is a single predicate: field(s), operator and operand.
type Leaf struct {
	fields []string
	op     operator.Operator
	value  any
}

// NewLeaf creates a single-field predicate.
func NewLeaf(field string, op operator.Operator, value any) Leaf {
	return Leaf{fields: []string{field}, op: op, value: copyValue(value)}
}

// NewMultiMatch creates a full-text match over several fields.
func NewMultiMatch(fields []string, query string) Leaf {
	return Leaf{fields: append([]string(nil), fields...), op: operator.MultiMatch, value: query}
}

// NewPrefix creates a prefix match on one field.
func NewPrefix(field, value string) Leaf {
	return Leaf{fields: []string{field}, op: operator.Prefix, value: value}
}

// Kind implements Node.
func (Leaf) Kind() Kind { return KindLeaf }

// Field returns the first (usually only) field.
func (l Leaf) Field() string {
	if len(l.fields) == 0 {
		return ""
	}
	return l.fields[0]
}

// FieldNames implements Node.
func (l Leaf) FieldNames() []string { return append([]string(nil), l.fields...) }

// Op returns the operator.
func (l Leaf) Op() operator.Operator { return l.op }

// Value returns the operand. Slices are copied.
func (l Leaf) Value() any { return copyValue(l.value) }

// Values returns the operand as a list (single operands become a one-element list).
func (l Leaf) Values() []any {
	if vs, ok := l.value.([]any); ok {
		return append([]any(nil), vs...)
	}
	return []any{l.value}
}

// String implements Node.
func (l Leaf) String() string {
	return fmt.Sprintf("%s(%s):%v", l.op, strings.Join(l.fields, ","), l.value)
}

func (Leaf) isNode() {}

// --- Bool ---

// Bool combines children with AND or OR.
type Bool struct {
	op       operator.Operator
	children []Node
}

// And creates a conjunction.
func And(children ...Node) Bool { return newBool(operator.And, children) }

// Or creates a disjunction.
func Or(children ...Node) Bool { return newBool(operator.Or, children) }

func newBool(op operator.Operator, children []Node) Bool {
	kept := make([]Node, 0, len(children))
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return Bool{op: op, children: kept}
}

// Kind implements Node.
func (Bool) Kind() Kind { return KindBool }

// Op returns operator.And or operator.Or.
func (b Bool) Op() operator.Operator { return b.op }

// Children returns a copy of the child list.
func (b Bool) Children() []Node { return append([]Node(nil), b.children...) }

// Len returns the number of children.
func (b Bool) Len() int { return len(b.children) }

// FieldNames implements Node.
func (b Bool) FieldNames() []string {
	var out []string
	for _, c := range b.children {
		out = append(out, c.FieldNames()...)
	}
	return out
}

// String implements Node.
func (b Bool) String() string {
	parts := make([]string, len(b.children))
	for i, c := range b.children {
		parts[i] = c.String()
	}
	name := "AND"
	if b.op == operator.Or {
		name = "OR"
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func (Bool) isNode() {}

// --- Nested ---

// Nested restricts its child to a single element of the nested collection at path.
type Nested struct {
	path  string
	child Node
}

// NewNested creates a nested scope. Every field below child must live under path.
func NewNested(path string, child Node) (Nested, error) {
	if path == "" {
		return Nested{}, fmt.Errorf("nested path is required")
	}
	if child == nil {
		return Nested{}, fmt.Errorf("nested scope %q requires a child", path)
	}
	for _, f := range child.FieldNames() {
		if !strings.HasPrefix(f, path+".") {
			return Nested{}, fmt.Errorf("field %q is outside nested scope %q", f, path)
		}
	}
	if inner, ok := child.(Nested); ok && !strings.HasPrefix(inner.path, path+".") {
		return Nested{}, fmt.Errorf("nested scope %q is not below %q", inner.path, path)
	}
	return Nested{path: path, child: child}, nil
}

// MustNested calls NewNested and panics on error.
func MustNested(path string, child Node) Nested {
	n, err := NewNested(path, child)
	if err != nil {
		panic(err)
	}
	return n
}

// Wrap wraps child in one scope per path, outermost first. No paths returns child.
func Wrap(child Node, scopes []string) (Node, error) {
	out := child
	for i := len(scopes) - 1; i >= 0; i-- {
		n, err := NewNested(scopes[i], out)
		if err != nil {
			return nil, err
		}
		out = n
	}
	return out, nil
}

// Kind implements Node.
func (Nested) Kind() Kind { return KindNested }

// Path returns the nested collection path.
func (n Nested) Path() string { return n.path }

// Child returns the scoped node.
func (n Nested) Child() Node { return n.child }

// FieldNames implements Node.
func (n Nested) FieldNames() []string { return n.child.FieldNames() }

// String implements Node.
func (n Nested) String() string { return "nested(" + n.path + ", " + n.child.String() + ")" }

func (Nested) isNode() {}

// --- helpers ---

// Simplify unwraps single-child groups and drops always-true children of AND.
// An OR containing MatchAll is itself MatchAll. An empty group becomes MatchAll.
func Simplify(n Node) Node {
	b, ok := n.(Bool)
	if !ok {
		return n
	}
	kept := make([]Node, 0, len(b.children))
	for _, c := range b.children {
		c = Simplify(c)
		if IsMatchAll(c) {
			if b.op == operator.Or {
				return MatchAll()
			}
			continue
		}
		kept = append(kept, c)
	}
	switch len(kept) {
	case 0:
		return MatchAll()
	case 1:
		return kept[0]
	default:
		return newBool(b.op, kept)
	}
}

// Walk visits n and every descendant depth-first. Returning false skips children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case Bool:
		for _, c := range v.children {
			Walk(c, fn)
		}
	case Nested:
		Walk(v.child, fn)
	}
}

func copyValue(v any) any {
	if vs, ok := v.([]any); ok {
		return append([]any(nil), vs...)
	}
	return v
}
