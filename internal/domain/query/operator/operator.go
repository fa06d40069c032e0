// Package operator is the closed catalog of filter, logical and text-search operators.
package operator

import "strings"

// Category classifies an operator.
type Category int

// Operator categories.
const (
	// Comparison operators terminate a filter clause.
	Comparison Category = iota + 1
	// Array operators are comparison operators followed by a positional index.
	Array
	// Logical operators open an indexed junction ($and.0, $or.1).
	Logical
	// Text operators are produced by the search translator only.
	Text
)

// Operator is a catalog entry. The zero value is not a valid operator.
type Operator int

// Catalog entries.
const (
	Eq Operator = iota + 1
	Eqi
	Ne
	Nei
	In
	NotIn
	Lt
	Lte
	Gt
	Gte
	Between
	Contains
	Containsi
	NotContains
	NotContainsi
	StartsWith
	EndsWith

	And
	Or

	MultiMatch
	Prefix
)

type entry struct {
	token    string
	category Category
	negated  bool
}

var catalog = map[Operator]entry{
	Eq:           {"$eq", Comparison, false},
	Eqi:          {"$eqi", Comparison, false},
	Ne:           {"$ne", Comparison, true},
	Nei:          {"$nei", Comparison, true},
	In:           {"$in", Array, false},
	NotIn:        {"$notin", Comparison, true},
	Lt:           {"$lt", Comparison, false},
	Lte:          {"$lte", Comparison, false},
	Gt:           {"$gt", Comparison, false},
	Gte:          {"$gte", Comparison, false},
	Between:      {"$between", Array, false},
	Contains:     {"$contains", Comparison, false},
	Containsi:    {"$containsi", Comparison, false},
	NotContains:  {"$notcontains", Comparison, true},
	NotContainsi: {"$notcontainsi", Comparison, true},
	StartsWith:   {"$startswith", Comparison, false},
	EndsWith:     {"$endswith", Comparison, false},
	And:          {"$and", Logical, false},
	Or:           {"$or", Logical, false},
	MultiMatch:   {"multi_match", Text, false},
	Prefix:       {"prefix", Text, false},
}

var byToken = func() map[string]Operator {
	m := make(map[string]Operator, len(catalog))
	for op, e := range catalog {
		if e.category != Text {
			m[e.token] = op
		}
	}
	return m
}()

// Parse looks up a wire token case-insensitively. Text operators have no wire token.
func Parse(token string) (Operator, bool) {
	op, ok := byToken[strings.ToLower(token)]
	return op, ok
}

// IsComparison reports whether token is a comparison operator (array operators included).
func IsComparison(token string) bool {
	op, ok := Parse(token)
	return ok && op.IsComparison()
}

// IsArrayOperator reports whether token is an operator requiring a positional index.
func IsArrayOperator(token string) bool {
	op, ok := Parse(token)
	return ok && op.IsArray()
}

// IsLogical reports whether token is $and or $or.
func IsLogical(token string) bool {
	op, ok := Parse(token)
	return ok && op.IsLogical()
}

// Category returns the operator category, 0 for invalid operators.
func (o Operator) Category() Category { return catalog[o].category }

// Token returns the wire form ("$eq") or the text operator name.
func (o Operator) Token() string { return catalog[o].token }

// String implements fmt.Stringer.
func (o Operator) String() string {
	if t := o.Token(); t != "" {
		return t
	}
	return "invalid"
}

// IsValid reports whether o is a catalog entry.
func (o Operator) IsValid() bool {
	_, ok := catalog[o]
	return ok
}

// IsComparison reports whether o may terminate a filter clause.
func (o Operator) IsComparison() bool {
	c := o.Category()
	return c == Comparison || c == Array
}

// IsArray reports whether o requires a positional index.
func (o Operator) IsArray() bool { return o.Category() == Array }

// IsLogical reports whether o is a junction operator.
func (o Operator) IsLogical() bool { return o.Category() == Logical }

// IsNegated reports whether o matches the complement of its positive form.
func (o Operator) IsNegated() bool { return catalog[o].negated }

// Positive returns the non-negated form of o ($ne -> $eq, $notin -> $in).
func (o Operator) Positive() Operator {
	switch o {
	case Ne:
		return Eq
	case Nei:
		return Eqi
	case NotIn:
		return In
	case NotContains:
		return Contains
	case NotContainsi:
		return Containsi
	default:
		return o
	}
}

// CaseInsensitive reports whether o compares case-insensitively.
func (o Operator) CaseInsensitive() bool {
	switch o {
	case Eqi, Nei, Containsi, NotContainsi:
		return true
	default:
		return false
	}
}

// StringOnly reports whether o only applies to text properties.
func (o Operator) StringOnly() bool {
	switch o.Positive() {
	case Eqi, Contains, Containsi, StartsWith, EndsWith:
		return true
	default:
		return false
	}
}

// Comparisons returns every comparison operator in catalog order.
func Comparisons() []Operator {
	out := make([]Operator, 0, EndsWith)
	for op := Eq; op <= EndsWith; op++ {
		out = append(out, op)
	}
	return out
}
