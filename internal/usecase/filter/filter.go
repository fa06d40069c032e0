// Package filter compiles validated filter clauses into a query tree.
//
// Sibling clauses are ANDed. "$and.N" and "$or.N" open a junction whose indexed branches
// are each an implicit AND of the clauses routed into them. Array operators collect their
// positional operands into one predicate.
package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/kailas-cloud/restql/internal/domain/query/clause"
	"github.com/kailas-cloud/restql/internal/domain/query/node"
	"github.com/kailas-cloud/restql/internal/domain/query/operator"
	"github.com/kailas-cloud/restql/internal/domain/schema"
)

// DefaultDepth is the schema depth filters may reach.
const DefaultDepth = 3

// FieldResolver looks dotted field paths up against a shape.
type FieldResolver interface {
	Field(shape schema.Shape, dotted string, maxDepth int) (schema.Path, error)
}

// Translator compiles filter clauses.
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

// Compile turns clauses into a node tree. Clauses are expected to be validated; grammar
// problems still surface as errors rather than panics.
func (t *Translator) Compile(clauses []clause.Clause, root schema.Shape) (node.Node, error) {
	if len(clauses) == 0 {
		return node.MatchAll(), nil
	}
	tree := newGroup()
	for _, c := range clauses {
		if err := t.place(tree, c, root); err != nil {
			return nil, fmt.Errorf("compile filter %q: %w", c.Raw(), err)
		}
	}
	n, err := tree.build()
	if err != nil {
		return nil, err
	}
	return node.Simplify(n), nil
}

func (t *Translator) place(g *group, c clause.Clause, root schema.Shape) error {
	key := c.CleanKey()
	i := 0
	for i < len(key) {
		op, ok := operator.Parse(key[i])
		if !ok || !op.IsLogical() {
			break
		}
		if i+1 >= len(key) {
			return fmt.Errorf("junction %s has no branch index", key[i])
		}
		branch, ok := clause.Position(key[i+1])
		if !ok {
			return fmt.Errorf("junction %s has no branch index", key[i])
		}
		g = g.junction(op).branch(branch)
		i += 2
	}

	var fieldPath []string
	for ; i < len(key); i++ {
		if operator.IsComparison(key[i]) {
			break
		}
		fieldPath = append(fieldPath, key[i])
	}
	if i >= len(key) || len(fieldPath) == 0 {
		return fmt.Errorf("missing field or operator")
	}
	op, _ := operator.Parse(key[i])
	position := -1
	if op.IsArray() {
		if i+1 >= len(key) {
			return fmt.Errorf("%s has no positional index", op)
		}
		p, ok := clause.Position(key[i+1])
		if !ok {
			return fmt.Errorf("%s has no positional index", op)
		}
		position = p
	}

	path, err := t.fields.Field(root, strings.Join(fieldPath, "."), t.depth)
	if err != nil {
		return err
	}
	value, err := typedValue(path.Kind, c.Value())
	if err != nil {
		return err
	}
	g.leaf(path, op).set(position, value)
	return nil
}

func typedValue(kind schema.Kind, raw string) (any, error) {
	switch {
	case kind.IsNumeric():
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("value %q is not numeric: %w", raw, err)
		}
		return v, nil
	case kind == schema.Bool:
		v, err := cast.ToBoolE(raw)
		if err != nil {
			return nil, fmt.Errorf("value %q is not boolean: %w", raw, err)
		}
		return v, nil
	default:
		return raw, nil
	}
}

// group collects the predicates of one AND level while clauses are placed.
type group struct {
	slots     []*slot
	slotIndex map[string]*slot
	junctions []*junction
	joinIndex map[operator.Operator]*junction
}

func newGroup() *group {
	return &group{slotIndex: map[string]*slot{}, joinIndex: map[operator.Operator]*junction{}}
}

func (g *group) leaf(path schema.Path, op operator.Operator) *slot {
	key := strings.ToLower(path.Name) + "\x00" + op.Token()
	if s, ok := g.slotIndex[key]; ok {
		return s
	}
	s := &slot{path: path, op: op, values: map[int]any{}}
	g.slotIndex[key] = s
	g.slots = append(g.slots, s)
	return s
}

func (g *group) junction(op operator.Operator) *junction {
	if j, ok := g.joinIndex[op]; ok {
		return j
	}
	j := &junction{op: op, branches: map[int]*group{}}
	g.joinIndex[op] = j
	g.junctions = append(g.junctions, j)
	return j
}

func (g *group) build() (node.Node, error) {
	children := make([]node.Node, 0, len(g.slots)+len(g.junctions))
	for _, s := range g.slots {
		n, err := s.build()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	for _, j := range g.junctions {
		n, err := j.build()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return node.And(children...), nil
}

type junction struct {
	op       operator.Operator
	branches map[int]*group
}

func (j *junction) branch(i int) *group {
	if g, ok := j.branches[i]; ok {
		return g
	}
	g := newGroup()
	j.branches[i] = g
	return g
}

func (j *junction) build() (node.Node, error) {
	order := make([]int, 0, len(j.branches))
	for i := range j.branches {
		order = append(order, i)
	}
	slices.Sort(order)

	children := make([]node.Node, 0, len(order))
	for _, i := range order {
		n, err := j.branches[i].build()
		if err != nil {
			return nil, err
		}
		children = append(children, node.Simplify(n))
	}
	if j.op == operator.Or {
		return node.Or(children...), nil
	}
	return node.And(children...), nil
}

// slot is one field/operator predicate; array operators fill it position by position.
type slot struct {
	path   schema.Path
	op     operator.Operator
	values map[int]any
}

func (s *slot) set(position int, v any) { s.values[position] = v }

func (s *slot) build() (node.Node, error) {
	var value any
	if s.op.IsArray() {
		positions := make([]int, 0, len(s.values))
		for p := range s.values {
			positions = append(positions, p)
		}
		slices.Sort(positions)
		list := make([]any, len(positions))
		for i, p := range positions {
			list[i] = s.values[p]
		}
		if s.op == operator.Between && len(list) != 2 {
			return nil, fmt.Errorf("%s on %s needs exactly two bounds", s.op, s.path.Name)
		}
		value = list
	} else {
		value = s.values[-1]
	}
	return node.Wrap(node.NewLeaf(s.path.ExactField(), s.op, value), s.path.Scopes)
}
