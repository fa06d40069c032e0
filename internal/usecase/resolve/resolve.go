// Package resolve walks schema shapes into dotted, classified property paths.
//
// Recursion is depth limited: the root's properties are visited at maxDepth, each
// nested object or collection level at one less, and walking stops once the remaining
// depth drops below zero. Properties beyond the limit are omitted silently, so a filter
// on a too-deep field fails later as an unknown field rather than as a depth error.
package resolve

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/restql/internal/domain"
	"github.com/kailas-cloud/restql/internal/domain/schema"
	"github.com/kailas-cloud/restql/internal/metrics"
)

// DefaultKeywordSuffix is appended to a text leaf to name its non-analyzed sibling.
const DefaultKeywordSuffix = "Raw"

// UnknownFieldError reports a dotted path that does not resolve against a shape.
type UnknownFieldError struct {
	Type  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s: %q on %s", domain.ErrUnknownField, e.Field, e.Type)
}

// Unwrap lets errors.Is match domain.ErrUnknownField.
func (e *UnknownFieldError) Unwrap() error { return domain.ErrUnknownField }

// Resolver resolves and caches schema paths per (type name, depth).
// Cached results are never mutated and safe to share between requests.
type Resolver struct {
	naming        func(string) string
	keywordSuffix string

	entries sync.Map // cacheKey -> *entry
	group   singleflight.Group
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithNaming overrides the wire naming convention (camelCase by default).
func WithNaming(fn func(string) string) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.naming = fn
		}
	}
}

// WithKeywordSuffix overrides DefaultKeywordSuffix.
func WithKeywordSuffix(suffix string) Option {
	return func(r *Resolver) {
		if suffix != "" {
			r.keywordSuffix = suffix
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{naming: schema.WireName, keywordSuffix: DefaultKeywordSuffix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type entry struct {
	paths []schema.Path
	index map[string]int // lowercased name -> position in paths
}

// Resolve returns every string-valued leaf reachable within maxDepth.
func (r *Resolver) Resolve(shape schema.Shape, maxDepth int) []schema.Path {
	e := r.load(shape, maxDepth)
	out := make([]schema.Path, 0, len(e.paths))
	for _, p := range e.paths {
		if p.Kind == schema.String {
			out = append(out, clonePath(p))
		}
	}
	return out
}

// Fields returns every path reachable within maxDepth: scalars plus the object and
// collection properties themselves, in schema declaration order (depth first).
func (r *Resolver) Fields(shape schema.Shape, maxDepth int) []schema.Path {
	e := r.load(shape, maxDepth)
	out := make([]schema.Path, len(e.paths))
	for i, p := range e.paths {
		out[i] = clonePath(p)
	}
	return out
}

// Field looks a dotted path up case-insensitively among Fields(shape, maxDepth).
func (r *Resolver) Field(shape schema.Shape, dotted string, maxDepth int) (schema.Path, error) {
	e := r.load(shape, maxDepth)
	i, ok := e.index[strings.ToLower(dotted)]
	if !ok {
		return schema.Path{}, &UnknownFieldError{Type: shapeName(shape), Field: dotted}
	}
	return clonePath(e.paths[i]), nil
}

// ResolveGiven resolves explicit dotted paths without a depth limit. It fails on the
// first path naming a property that does not exist at that position.
func (r *Resolver) ResolveGiven(shape schema.Shape, dotted []string) ([]schema.Path, error) {
	out := make([]schema.Path, 0, len(dotted))
	for _, d := range dotted {
		p, err := r.descend(shape, d)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Resolver) descend(shape schema.Shape, dotted string) (schema.Path, error) {
	unknown := &UnknownFieldError{Type: shapeName(shape), Field: dotted}
	segments := strings.Split(dotted, ".")

	cur := shape
	at := level{container: schema.Root}
	var path schema.Path
	for i, seg := range segments {
		if cur == nil || seg == "" {
			return schema.Path{}, unknown
		}
		prop, ok := r.lookup(cur, seg)
		if !ok {
			return schema.Path{}, unknown
		}
		path = r.pathOf(at, prop)
		if i == len(segments)-1 {
			break
		}
		if !prop.Kind().IsNested() {
			return schema.Path{}, unknown
		}
		at = at.descend(path)
		cur = prop.Elem()
	}
	return path, nil
}

func (r *Resolver) lookup(shape schema.Shape, segment string) (schema.Property, bool) {
	for _, p := range shape.Properties() {
		if strings.EqualFold(r.naming(p.Name()), segment) {
			return p, true
		}
	}
	return schema.Property{}, false
}

type cacheKey struct {
	name  string
	depth int
}

func (r *Resolver) load(shape schema.Shape, maxDepth int) *entry {
	if shape == nil {
		return &entry{index: map[string]int{}}
	}
	key := cacheKey{name: shape.Name(), depth: maxDepth}
	if v, ok := r.entries.Load(key); ok {
		metrics.SchemaCacheTotal.WithLabelValues("hit").Inc()
		return v.(*entry)
	}

	v, _, _ := r.group.Do(key.name+"\x00"+strconv.Itoa(key.depth), func() (any, error) {
		if v, ok := r.entries.Load(key); ok {
			return v, nil
		}
		metrics.SchemaCacheTotal.WithLabelValues("miss").Inc()
		e := r.build(shape, maxDepth)
		r.entries.Store(key, e)
		return e, nil
	})
	return v.(*entry)
}

func (r *Resolver) build(shape schema.Shape, maxDepth int) *entry {
	var paths []schema.Path
	r.walk(shape, level{container: schema.Root}, maxDepth, &paths)

	index := make(map[string]int, len(paths))
	for i, p := range paths {
		key := strings.ToLower(p.Name)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	return &entry{paths: paths, index: index}
}

func (r *Resolver) walk(shape schema.Shape, at level, depth int, out *[]schema.Path) {
	if shape == nil || depth < 0 {
		return
	}
	for _, prop := range shape.Properties() {
		p := r.pathOf(at, prop)
		*out = append(*out, p)
		if prop.Kind().IsNested() {
			r.walk(prop.Elem(), at.descend(p), depth-1, out)
		}
	}
}

// level is the position of a walk inside the shape graph.
type level struct {
	prefix    string
	container schema.Container
	scopes    []string
}

func (l level) descend(p schema.Path) level {
	next := level{prefix: p.Name, container: l.container, scopes: l.scopes}
	switch p.Kind {
	case schema.Collection:
		next.container = schema.InCollection
		next.scopes = append(append([]string(nil), l.scopes...), p.Name)
	case schema.Object:
		if next.container == schema.Root {
			next.container = schema.InObject
		}
	}
	return next
}

func (r *Resolver) pathOf(at level, prop schema.Property) schema.Path {
	leaf := r.naming(prop.Name())
	p := schema.Path{
		Name:      join(at.prefix, leaf),
		Kind:      prop.Kind(),
		Container: at.container,
		Scopes:    append([]string(nil), at.scopes...),
		Elem:      prop.Elem(),
	}
	if prop.Kind().IsText() {
		if kw := prop.Keyword(); kw != "" {
			p.Keyword = join(at.prefix, kw)
		} else {
			p.Keyword = join(p.Name, leaf+r.keywordSuffix)
		}
	}
	return p
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func clonePath(p schema.Path) schema.Path {
	p.Scopes = append([]string(nil), p.Scopes...)
	return p
}

func shapeName(s schema.Shape) string {
	if s == nil {
		return "<nil>"
	}
	return s.Name()
}
