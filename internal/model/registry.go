package model

import (
	"log/slog"
	"sync"
)

// Registry owns all live entities for a session. Iteration follows insertion
// order so AI updates are reproducible within a run. Remove is idempotent:
// delayed cleanup and immediate zeroing may both touch the same entity.
type Registry struct {
	mu       sync.RWMutex
	entities map[ID]*Entity
	order    []ID
	byBody   map[BodyID]ID
	nextID   ID
}

// NewRegistry creates an empty entity registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[ID]*Entity),
		byBody:   make(map[BodyID]ID),
		nextID:   1,
	}
}

// Add assigns the entity a fresh id, indexes it, and returns the id.
func (r *Registry) Add(e *Entity) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	e.ID = id

	r.entities[id] = e
	r.order = append(r.order, id)
	if e.Body != 0 {
		r.byBody[e.Body] = id
	}
	return id
}

// Get returns the entity with the given id.
func (r *Registry) Get(id ID) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[id]
	return e, ok
}

// GetByBody resolves a physics body back to its owning entity.
// Used by combat to classify raycast hits.
func (r *Registry) GetByBody(body BodyID) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byBody[body]
	if !ok {
		return nil, false
	}
	e, ok := r.entities[id]
	return e, ok
}

// Remove deletes the entity and its body index. Safe to call twice;
// the second call is a no-op returning false.
func (r *Registry) Remove(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entities[id]
	if !ok {
		return false
	}
	delete(r.entities, id)
	if e.Body != 0 {
		delete(r.byBody, e.Body)
	}
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	slog.Debug("entity removed", "id", id, "kind", e.Kind, "name", e.Name)
	return true
}

// ForEach visits live entities in insertion order. The callback must not
// add or remove entities; collect ids and mutate after iteration instead.
func (r *Registry) ForEach(fn func(*Entity) bool) {
	r.mu.RLock()
	snapshot := make([]*Entity, 0, len(r.order))
	for _, id := range r.order {
		if e, ok := r.entities[id]; ok {
			snapshot = append(snapshot, e)
		}
	}
	r.mu.RUnlock()

	for _, e := range snapshot {
		if !fn(e) {
			return
		}
	}
}

// Count returns the number of live entities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}
