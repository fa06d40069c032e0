package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kailas-cloud/restql/internal/domain"
)

// Registry maps type names to sealed types. Lookups are case-insensitive.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register validates and seals the given types. Either all are registered or none.
func (r *Registry) Register(types ...*Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]*Type, len(types))
	for _, t := range types {
		if t == nil {
			return fmt.Errorf("%w: nil type", domain.ErrInvalidSchema)
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
		}
		key := strings.ToLower(t.name)
		if _, ok := r.types[key]; ok {
			return fmt.Errorf("%w: type %q already registered", domain.ErrInvalidSchema, t.name)
		}
		if _, ok := batch[key]; ok {
			return fmt.Errorf("%w: type %q declared twice", domain.ErrInvalidSchema, t.name)
		}
		batch[key] = t
	}
	for key, t := range batch {
		t.seal()
		r.types[key] = t
	}
	return nil
}

// MustRegister calls Register and panics on error.
func (r *Registry) MustRegister(types ...*Type) *Registry {
	if err := r.Register(types...); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the registered type by name.
func (r *Registry) Lookup(name string) (Shape, error) {
	t, err := r.Type(name)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Type is Lookup returning the concrete type.
func (r *Registry) Type(name string) (*Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTypeNotFound, name)
	}
	return t, nil
}

// Names returns registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for _, t := range r.types {
		names = append(names, t.name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}
