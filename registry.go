package zephyr

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Registry holds listeners grouped by event type. Listeners for a type keep
// their registration order, and each listener ID appears under exactly one
// event type at a time. All methods are safe for concurrent use: reads
// return snapshots, so an in-flight dispatch never observes a partially
// mutated list.
type Registry struct {
	mu     sync.RWMutex
	byType map[string][]Descriptor
	byID   map[string]string // listener ID → event type
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[string][]Descriptor),
		byID:   make(map[string]string),
	}
}

// Register validates and adds a listener, returning its effective ID.
// An empty descriptor ID is assigned a generated one. Registering an ID that
// already exists fails with *DuplicateListenerError.
func (r *Registry) Register(d Descriptor) (string, error) {
	if err := d.validate(); err != nil {
		return "", err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Kind == KindWebhook {
		d.Webhook = d.Webhook.withDefaults()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[d.ID]; exists {
		return "", &DuplicateListenerError{ID: d.ID}
	}
	r.byType[d.EventType] = append(r.byType[d.EventType], d)
	r.byID[d.ID] = d.EventType
	return d.ID, nil
}

// Unregister removes the listener with the given ID, preserving the order of
// the remaining listeners. Unknown IDs fail with *NotFoundError.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	eventType, ok := r.byID[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	delete(r.byID, id)

	list := r.byType[eventType]
	for i := range list {
		if list[i].ID == id {
			r.byType[eventType] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(r.byType[eventType]) == 0 {
		delete(r.byType, eventType)
	}
	return nil
}

// ListenersFor returns a point-in-time copy of the listeners registered for
// eventType, in registration order. Nil when the type has no listeners.
func (r *Registry) ListenersFor(eventType string) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byType[eventType]
	if len(list) == 0 {
		return nil
	}
	out := make([]Descriptor, len(list))
	copy(out, list)
	return out
}

// All returns a snapshot of every registered listener, grouped by event type
// (types sorted) and in registration order within each type.
func (r *Registry) All() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	sort.Strings(types)

	out := make([]Descriptor, 0, len(r.byID))
	for _, t := range types {
		out = append(out, r.byType[t]...)
	}
	return out
}

// EventTypes returns the sorted event types that currently have listeners.
func (r *Registry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Len returns the total number of registered listeners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
