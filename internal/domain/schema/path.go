package schema

import "strings"

// Container tells where a resolved path lives relative to the root type.
type Container int

// Path containers.
const (
	// Root paths are properties of the root type itself.
	Root Container = iota + 1
	// InObject paths sit under at least one nested object and no collection.
	InObject
	// InCollection paths sit under at least one nested collection.
	InCollection
)

// String implements fmt.Stringer.
func (c Container) String() string {
	switch c {
	case Root:
		return "property"
	case InObject:
		return "object"
	case InCollection:
		return "array"
	default:
		return "unknown"
	}
}

// Path is a resolved dotted property path.
type Path struct {
	// Name is the dotted wire path, root to leaf.
	Name string
	// Kind is the kind of the terminal property.
	Kind Kind
	// Container classifies the nesting above the terminal property.
	Container Container
	// Scopes lists every nested-collection prefix crossed to reach the terminal,
	// outermost first. Each is a strict prefix of Name.
	Scopes []string
	// Keyword is the dotted non-analyzed sibling for text paths ("" otherwise).
	Keyword string
	// Elem is the element shape for object and collection terminals.
	Elem Shape
}

// Segments splits the path into its wire segments.
func (p Path) Segments() []string { return strings.Split(p.Name, ".") }

// Parent returns the path minus its final segment ("" for root properties).
func (p Path) Parent() string {
	i := strings.LastIndexByte(p.Name, '.')
	if i < 0 {
		return ""
	}
	return p.Name[:i]
}

// Leaf returns the final segment.
func (p Path) Leaf() string {
	return p.Name[strings.LastIndexByte(p.Name, '.')+1:]
}

// IsTopLevel reports whether the path is a property of the root type.
func (p Path) IsTopLevel() bool { return p.Container == Root }

// ExactField returns the field used for sorting and exact matching.
func (p Path) ExactField() string {
	if p.Keyword != "" {
		return p.Keyword
	}
	return p.Name
}

// ScopesFor returns the collection scopes that contain prefix, outermost first.
func (p Path) ScopesFor(prefix string) []string {
	var out []string
	for _, s := range p.Scopes {
		if s == prefix || strings.HasPrefix(prefix, s+".") {
			out = append(out, s)
		}
	}
	return out
}
