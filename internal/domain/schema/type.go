// Package schema describes record shapes explicitly: a type is a named list of
// properties, each scalar or pointing at a nested element type.
package schema

import (
	"fmt"
	"strings"
)

// Shape is what the query compiler needs from a record definition.
type Shape interface {
	Name() string
	Properties() []Property
}

// Property is an immutable value object describing one property of a Shape.
type Property struct {
	name    string
	kind    Kind
	elem    Shape
	keyword string
}

// NewProperty creates a Property. elem is required for object and collection kinds.
func NewProperty(name string, kind Kind, elem Shape, opts ...PropertyOption) Property {
	p := Property{name: name, kind: kind, elem: elem}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// PropertyOption customizes a Property.
type PropertyOption func(*Property)

// WithKeyword names the non-analyzed sibling sub-field used for sorting and exact matching.
func WithKeyword(name string) PropertyOption {
	return func(p *Property) { p.keyword = name }
}

// Name returns the declared property name.
func (p Property) Name() string { return p.name }

// Kind returns the declared kind.
func (p Property) Kind() Kind { return p.kind }

// Elem returns the nested element shape (nil for scalars).
func (p Property) Elem() Shape { return p.elem }

// Keyword returns the explicit keyword sub-field name, or "" for the default.
func (p Property) Keyword() string { return p.keyword }

// Type is a registered record shape. It is built fluently and sealed on registration;
// sealed types are read-only and safe for concurrent use.
type Type struct {
	name   string
	index  string
	props  []Property
	sealed bool
}

var _ Shape = (*Type)(nil)

// NewType starts a type definition.
func NewType(name string) *Type {
	return &Type{name: name}
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Index returns the backend index name (defaults to the type name).
func (t *Type) Index() string {
	if t.index == "" {
		return t.name
	}
	return t.index
}

// Properties returns a copy of the declared properties in declaration order.
func (t *Type) Properties() []Property {
	return append([]Property(nil), t.props...)
}

// Sealed reports whether the type has been registered.
func (t *Type) Sealed() bool { return t.sealed }

// WithIndex sets the backend index name.
func (t *Type) WithIndex(name string) *Type {
	t.mustBeOpen()
	t.index = name
	return t
}

// String adds a text property.
func (t *Type) String(name string, opts ...PropertyOption) *Type {
	return t.add(NewProperty(name, String, nil, opts...))
}

// Number adds a numeric property.
func (t *Type) Number(name string) *Type { return t.add(NewProperty(name, Number, nil)) }

// Enum adds an enum property (filtered by ordinal).
func (t *Type) Enum(name string) *Type { return t.add(NewProperty(name, Enum, nil)) }

// Bool adds a boolean property.
func (t *Type) Bool(name string) *Type { return t.add(NewProperty(name, Bool, nil)) }

// Time adds a timestamp property.
func (t *Type) Time(name string) *Type { return t.add(NewProperty(name, Time, nil)) }

// Object adds a single nested object of type elem.
func (t *Type) Object(name string, elem *Type) *Type {
	return t.add(NewProperty(name, Object, shapeOf(elem)))
}

// Collection adds a nested collection whose elements are of type elem.
func (t *Type) Collection(name string, elem *Type) *Type {
	return t.add(NewProperty(name, Collection, shapeOf(elem)))
}

// shapeOf keeps a nil *Type from becoming a non-nil Shape.
func shapeOf(t *Type) Shape {
	if t == nil {
		return nil
	}
	return t
}

// Add appends a prepared property.
func (t *Type) Add(p Property) *Type { return t.add(p) }

func (t *Type) add(p Property) *Type {
	t.mustBeOpen()
	t.props = append(t.props, p)
	return t
}

func (t *Type) mustBeOpen() {
	if t.sealed {
		panic(fmt.Sprintf("schema: type %q is sealed", t.name))
	}
}

// Validate checks the type definition. Nested element types are not descended into.
func (t *Type) Validate() error {
	if strings.TrimSpace(t.name) == "" {
		return fmt.Errorf("type name is required")
	}
	seen := make(map[string]string, len(t.props))
	for _, p := range t.props {
		if strings.TrimSpace(p.name) == "" {
			return fmt.Errorf("type %s: property name is required", t.name)
		}
		if strings.ContainsAny(p.name, ".[]$ ") {
			return fmt.Errorf("type %s: property name %q contains reserved characters", t.name, p.name)
		}
		key := strings.ToLower(WireName(p.name))
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("type %s: property %q collides with %q", t.name, p.name, prev)
		}
		seen[key] = p.name
		if !p.kind.IsValid() {
			return fmt.Errorf("type %s: invalid kind %q for %q", t.name, p.kind, p.name)
		}
		if p.kind.IsNested() && p.elem == nil {
			return fmt.Errorf("type %s: %s property %q requires an element type", t.name, p.kind, p.name)
		}
		if !p.kind.IsNested() && p.elem != nil {
			return fmt.Errorf("type %s: scalar property %q cannot have an element type", t.name, p.name)
		}
		if p.keyword != "" && p.kind != String {
			return fmt.Errorf("type %s: keyword is only allowed on string property %q", t.name, p.name)
		}
	}
	return nil
}

func (t *Type) seal() { t.sealed = true }
