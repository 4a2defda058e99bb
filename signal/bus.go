// Package signal defines the lifecycle signal bus the entity manager
// emits into. Emission is fire-and-forget: the manager never consumes a
// return value and never blocks on subscribers.
package signal

import "sync"

// DataInvalidated is the generic signal emitted whenever a mutation
// invalidates cached entity data. The payload is the entity name.
const DataInvalidated = "data:invalidated"

// Entity lifecycle actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Bus receives signals from entity managers.
type Bus interface {
	// Emit publishes a named signal with an arbitrary payload.
	Emit(name string, payload any)

	// EmitEntity publishes an entity lifecycle signal.
	EmitEntity(entity, action string, data any)
}

// Nop drops every signal.
type Nop struct{}

func (Nop) Emit(string, any)               {}
func (Nop) EmitEntity(string, string, any) {}

// EntityEvent is the payload Dispatcher delivers for EmitEntity.
type EntityEvent struct {
	Entity string
	Action string
	Data   any
}

// Dispatcher is a small in-process Bus for applications that do not
// bring their own. Subscribers run synchronously in subscription order;
// panics are the subscriber's problem.
type Dispatcher struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
}

type subscription struct {
	id int
	fn func(payload any)
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[string][]subscription)}
}

// Subscribe registers a callback for the named signal and returns an
// unsubscribe closure. Entity lifecycle signals are delivered under
// "<entity>:<action>" with an EntityEvent payload.
func (d *Dispatcher) Subscribe(name string, fn func(payload any)) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.subs[name] = append(d.subs[name], subscription{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		subs := d.subs[name]
		for i, s := range subs {
			if s.id == id {
				d.subs[name] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit implements Bus.
func (d *Dispatcher) Emit(name string, payload any) {
	d.mu.RLock()
	subs := append([]subscription(nil), d.subs[name]...)
	d.mu.RUnlock()
	for _, s := range subs {
		s.fn(payload)
	}
}

// EmitEntity implements Bus.
func (d *Dispatcher) EmitEntity(entity, action string, data any) {
	d.Emit(entity+":"+action, EntityEvent{Entity: entity, Action: action, Data: data})
}
