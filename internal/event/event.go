package event

import (
	"sync"

	"github.com/ashmelev/frostline/internal/model"
)

// Event is a typed cross-component notification. Events are queued during a
// tick and drained once by the orchestrator, preserving at-least-once,
// same-tick FIFO delivery. This replaces a process-wide publish/subscribe bus.
type Event interface {
	event()
}

// HealthChanged reports a change of current or max health.
type HealthChanged struct {
	OwnerID  model.ID
	IsPlayer bool
	Current  float64
	Max      float64
}

// Death reports the first (and only) depletion of an entity's health this life.
type Death struct {
	OwnerID  model.ID
	IsPlayer bool
}

// ModifierExpired reports a timed stat modifier running out.
type ModifierExpired struct {
	OwnerID model.ID
	Stat    string
	Value   float64
}

// EnemyDied reports an enemy instance death. Consumed by the spawner for
// population accounting and by loot/XP collaborators.
type EnemyDied struct {
	InstanceID model.ID
	TemplateID string
	XPReward   int
	Position   model.Vec3
}

// Animation asks the render side to play a clip on an entity.
type Animation struct {
	OwnerID model.ID
	Clip    string
}

func (HealthChanged) event()   {}
func (Death) event()           {}
func (ModifierExpired) event() {}
func (EnemyDied) event()       {}
func (Animation) event()       {}

// Sink accepts events for later delivery.
type Sink interface {
	Push(Event)
}

// Queue is a FIFO event buffer drained once per tick.
type Queue struct {
	mu      sync.Mutex
	pending []Event
}

// NewQueue creates an empty event queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event to the queue.
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, e)
}

// Drain returns all pending events in push order and clears the queue.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	drained := q.pending
	q.pending = nil
	return drained
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
