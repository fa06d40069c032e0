// Package sortkey holds compiled sort keys.
package sortkey

import (
	"strings"

	"github.com/kailas-cloud/restql/internal/domain/schema"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection parses a direction token case-insensitively. Empty means Asc.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, true
	case "desc":
		return Desc, true
	default:
		return "", false
	}
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Key is one compiled sort key.
type Key struct {
	path      schema.Path
	direction Direction
}

// New creates a sort key.
func New(path schema.Path, dir Direction) Key {
	if dir == "" {
		dir = Asc
	}
	return Key{path: path, direction: dir}
}

// Path returns the resolved schema path.
func (k Key) Path() schema.Path { return k.path }

// Field returns the field the backend sorts on (the keyword sibling for text).
func (k Key) Field() string { return k.path.ExactField() }

// Direction returns the sort direction.
func (k Key) Direction() Direction { return k.direction }

// Scopes returns the nested-collection scopes, outermost first.
func (k Key) Scopes() []string { return append([]string(nil), k.path.Scopes...) }

// Reversed returns the key with the opposite direction.
func (k Key) Reversed() Key { return Key{path: k.path, direction: k.direction.Reverse()} }

// String renders "field dir".
func (k Key) String() string { return k.Field() + " " + string(k.direction) }
