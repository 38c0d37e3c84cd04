package render

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores dialects by name, providing discovery and duplication
// safeguards.
type Registry struct {
	mu       sync.RWMutex
	dialects map[string]Dialect
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		dialects: make(map[string]Dialect),
	}
}

// DefaultRegistry returns a registry holding the built-in dialects.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.MustRegister(TelegramHTML())
	reg.MustRegister(Markdown())
	reg.MustRegister(Plain())
	return reg
}

// Register adds a dialect by its Name(). Duplicate names return an error.
func (r *Registry) Register(dialect Dialect) error {
	if dialect == nil {
		return fmt.Errorf("render: dialect is required")
	}
	name := dialect.Name()
	if name == "" {
		return fmt.Errorf("render: dialect name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.dialects[name]; exists {
		return fmt.Errorf("render: dialect %q already registered", name)
	}

	r.dialects[name] = dialect
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(dialect Dialect) {
	if err := r.Register(dialect); err != nil {
		panic(err)
	}
}

// Get retrieves a dialect by name.
func (r *Registry) Get(name string) (Dialect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dialect, ok := r.dialects[name]
	if !ok {
		return nil, fmt.Errorf("render: dialect %q not found", name)
	}
	return dialect, nil
}

// List returns a sorted list of dialect names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.dialects))
	for name := range r.dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a dialect is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.dialects[name]
	return ok
}
