// Package violation holds structured, localizable query validation failures.
package violation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/huandu/xstrings"

	"github.com/kailas-cloud/restql/internal/domain"
)

// Subject is the object every query-parameter violation belongs to.
const Subject = "QueryParam"

// Request parameter names violations point at.
const (
	FieldFilter = "Filter"
	FieldSort   = "Sort"
	FieldSearch = "Search"
	FieldCursor = "Cursor"
	FieldLimit  = "Limit"
)

// Kind is the message family of a violation.
type Kind int

// Violation kinds.
const (
	ValidFormat Kind = iota + 1
	Redundant
	Existence
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case ValidFormat:
		return "ValidFormat"
	case Redundant:
		return "Redundant"
	case Existence:
		return "Existence"
	default:
		return "Unknown"
	}
}

// Rule names the check that failed. Rules are stable identifiers suitable for metrics.
type Rule string

// Filter rules.
const (
	RuleStructure      Rule = "structure"
	RuleArrayIndex     Rule = "array_index"
	RuleLogicalTail    Rule = "logical_tail"
	RuleMissingOp      Rule = "missing_operator"
	RuleUnknownField   Rule = "unknown_field"
	RuleTypeMismatch   Rule = "type_mismatch"
	RuleTooManyClauses Rule = "too_many_clauses"
	RuleDuplicate      Rule = "duplicate"
	RuleBetweenBounds  Rule = "between_bounds"
)

// Sort, search and cursor rules.
const (
	RuleSortMalformed   Rule = "sort_malformed"
	RuleSortDirection   Rule = "sort_direction"
	RuleSortNotScalar   Rule = "sort_not_scalar"
	RuleSortDuplicate   Rule = "sort_duplicate"
	RuleSearchField     Rule = "search_field"
	RuleCursorBoth      Rule = "cursor_both"
	RuleCursorNoSort    Rule = "cursor_without_sort"
	RuleCursorMalformed Rule = "cursor_malformed"
)

// Violation is one failed rule.
type Violation struct {
	// Field is the request parameter the violation belongs to.
	Field string
	Kind  Kind
	// Negative flips the message ("is not valid format" ⇒ "invalid format").
	Negative bool
	Rule     Rule
	// Clause is the offending raw input, when there is one.
	Clause string
}

// Key renders the message key consumed by clients, e.g. "query-param_filter_invalid-format".
func (v Violation) Key() string {
	var b strings.Builder
	b.WriteString(xstrings.ToKebabCase(Subject))
	if v.Field != "" {
		b.WriteByte('_')
		b.WriteString(xstrings.ToKebabCase(v.Field))
	}
	m := catalog[v.Kind]
	if v.Negative && m.negative == "" {
		b.WriteString("_not")
	}
	b.WriteByte('_')
	if v.Negative && m.negative != "" {
		b.WriteString(xstrings.ToKebabCase(m.negative))
	} else {
		b.WriteString(xstrings.ToKebabCase(m.key))
	}
	return strings.ToLower(b.String())
}

// String implements fmt.Stringer.
func (v Violation) String() string {
	if v.Clause == "" {
		return fmt.Sprintf("%s (%s)", v.Key(), v.Rule)
	}
	return fmt.Sprintf("%s (%s): %q", v.Key(), v.Rule, v.Clause)
}

// Error aggregates every violation found in one request.
type Error struct {
	Violations []Violation
}

// Error implements error.
func (e *Error) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s: %s", domain.ErrInvalidQuery, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match domain.ErrInvalidQuery.
func (e *Error) Unwrap() error { return domain.ErrInvalidQuery }

// From extracts the violations carried by err, if any.
func From(err error) ([]Violation, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Violations, true
	}
	return nil, false
}

// Set accumulates violations across validation stages.
type Set struct {
	items []Violation
}

// Add records violations.
func (s *Set) Add(vs ...Violation) { s.items = append(s.items, vs...) }

// Merge records the violations carried by err. Errors that carry none are returned.
func (s *Set) Merge(err error) error {
	if err == nil {
		return nil
	}
	vs, ok := From(err)
	if !ok {
		return err
	}
	s.Add(vs...)
	return nil
}

// Len returns the number of recorded violations.
func (s *Set) Len() int { return len(s.items) }

// Items returns a copy of the recorded violations.
func (s *Set) Items() []Violation { return append([]Violation(nil), s.items...) }

// Err returns nil when the set is empty, otherwise an *Error.
func (s *Set) Err() error {
	if len(s.items) == 0 {
		return nil
	}
	return &Error{Violations: s.Items()}
}

// InvalidFilter builds the aggregated filter format violation.
func InvalidFilter(rule Rule, clause string) Violation {
	return Violation{Field: FieldFilter, Kind: ValidFormat, Negative: true, Rule: rule, Clause: clause}
}
