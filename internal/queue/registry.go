package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// HandlerFunc executes one job given its raw payload.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Registry maps job kinds to handlers. It is populated at startup and is
// safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Register binds kind to h. Registering a kind twice panics.
func (r *Registry) Register(kind string, h HandlerFunc) {
	if kind == "" || h == nil {
		panic("queue: Register requires a kind and a handler")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.handlers[kind]; dup {
		panic(fmt.Sprintf("queue: handler for %q already registered", kind))
	}
	r.handlers[kind] = h
}

func (r *Registry) Lookup(kind string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[kind]
	return h, ok
}

func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Handle registers a typed handler for the kind of T. The payload is
// decoded into T before fn runs; a decode failure is a SerializationError.
func Handle[T Descriptor](r *Registry, fn func(ctx context.Context, job T) error) {
	var zero T
	kind := zero.Kind()

	r.Register(kind, func(ctx context.Context, payload json.RawMessage) error {
		var job T
		if err := json.Unmarshal(payload, &job); err != nil {
			return &SerializationError{Kind: kind, Err: err}
		}
		return fn(ctx, job)
	})
}
