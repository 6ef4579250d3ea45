package action

import (
	"fmt"
	"sort"
	"sync"
)

// DuplicateActionError is returned when a type is registered twice.
// Registration never shadows an earlier handler.
type DuplicateActionError struct {
	Type string
}

func (e *DuplicateActionError) Error() string {
	return fmt.Sprintf("action type %q already registered", e.Type)
}

// UnknownActionError is returned when a type has no registered handler.
type UnknownActionError struct {
	Type string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action type %q", e.Type)
}

// Registry maps action type names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler for typ.
func (r *Registry) Register(typ string, h Handler) error {
	if typ == "" {
		return fmt.Errorf("register: empty action type")
	}
	if h == nil {
		return fmt.Errorf("register %q: nil handler", typ)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[typ]; exists {
		return &DuplicateActionError{Type: typ}
	}
	r.handlers[typ] = h
	return nil
}

// MustRegister is Register for startup wiring; it panics on error.
func (r *Registry) MustRegister(typ string, h Handler) {
	if err := r.Register(typ, h); err != nil {
		panic(err)
	}
}

// Resolve returns the handler for typ.
func (r *Registry) Resolve(typ string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[typ]
	if !ok {
		return nil, &UnknownActionError{Type: typ}
	}
	return h, nil
}

// Has reports whether typ is registered.
func (r *Registry) Has(typ string) bool {
	_, err := r.Resolve(typ)
	return err == nil
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
