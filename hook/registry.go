// Package hook implements the mutation hook registry: ordered middleware
// callbacks registered per hook name and invoked sequentially. Any
// handler error short-circuits the chain and aborts the calling
// operation.
package hook

import (
	"context"
	"sync"

	"github.com/goliatone/go-entity-manager/storage"
)

// Hook names invoked by the entity manager around mutations.
const (
	PreSave    = "presave"
	PostSave   = "postsave"
	PreDelete  = "predelete"
	PostDelete = "postdelete"
)

// Event is the mutable context value handlers receive. Handlers may edit
// Data before the storage call (presave) or inspect Record after it
// (postsave, postdelete).
type Event struct {
	// Entity is the manager name the mutation runs against.
	Entity string

	// Action is the mutation verb: "create", "update", "patch", "delete".
	Action string

	// ID is the target record id; empty on create.
	ID string

	// Data is the payload sent to storage.
	Data storage.Record

	// Record is the storage response, set for post hooks.
	Record storage.Record
}

// Handler processes one hook invocation. Returning an error aborts the
// remaining handlers and the operation that triggered the hook.
type Handler func(ctx context.Context, e *Event) error

// Registry holds handlers per hook name. The zero value is not usable;
// call NewRegistry.
type Registry struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string][]registration
}

type registration struct {
	id int
	fn Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]registration)}
}

// Register appends a handler for the named hook and returns an
// unsubscribe closure. Handlers run in registration order.
func (r *Registry) Register(name string, h Handler) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.handlers[name] = append(r.handlers[name], registration{id: id, fn: h})
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		regs := r.handlers[name]
		for i, reg := range regs {
			if reg.id == id {
				r.handlers[name] = append(regs[:i:i], regs[i+1:]...)
				return
			}
		}
	}
}

// Invoke runs the named hook's handlers sequentially, passing each the
// same event. The first error stops the chain and is returned.
func (r *Registry) Invoke(ctx context.Context, name string, e *Event) error {
	r.mu.RLock()
	regs := append([]registration(nil), r.handlers[name]...)
	r.mu.RUnlock()

	for _, reg := range regs {
		if err := reg.fn(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Invoker is the slice of the registry the entity manager consumes.
type Invoker interface {
	Invoke(ctx context.Context, name string, e *Event) error
}

// Nop satisfies Invoker and runs nothing.
type Nop struct{}

// Invoke implements Invoker.
func (Nop) Invoke(context.Context, string, *Event) error { return nil }
