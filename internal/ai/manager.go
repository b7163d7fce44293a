package ai

import (
	"log/slog"
	"sync"

	"github.com/ashmelev/frostline/internal/model"
)

// Manager ticks all registered machines in registration order. The order is
// stable within a run so test scenarios replay identically; the enemies
// themselves are advanced strictly sequentially inside one tick.
type Manager struct {
	mu       sync.Mutex
	machines map[model.ID]*Machine
	order    []model.ID
}

// NewManager creates an empty AI manager.
func NewManager() *Manager {
	return &Manager{
		machines: make(map[model.ID]*Machine),
	}
}

// Register attaches a machine to an enemy instance id.
func (m *Manager) Register(id model.ID, machine *Machine) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.machines[id]; exists {
		slog.Warn("AI machine already registered, replacing", "id", id)
		m.machines[id] = machine
		return
	}

	m.machines[id] = machine
	m.order = append(m.order, id)

	if IsDebugEnabled() {
		slog.Debug("AI machine registered",
			"id", id,
			"enemy", machine.Enemy().Name,
			"state", machine.State())
	}
}

// Unregister detaches the machine for an enemy. Safe to call twice.
func (m *Manager) Unregister(id model.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.machines[id]; !ok {
		return
	}
	delete(m.machines, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	if IsDebugEnabled() {
		slog.Debug("AI machine unregistered", "id", id)
	}
}

// Get returns the machine for an enemy instance id.
func (m *Manager) Get(id model.ID) (*Machine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	machine, ok := m.machines[id]
	return machine, ok
}

// Count returns the number of registered machines.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.machines)
}

// TickAll advances every machine by delta seconds in registration order.
// An enemy missing its stats or health component is skipped for the tick
// with a warning; it stays inert rather than halting the shared update.
func (m *Manager) TickAll(delta float64) {
	m.mu.Lock()
	ordered := make([]*Machine, 0, len(m.order))
	for _, id := range m.order {
		if machine, ok := m.machines[id]; ok {
			ordered = append(ordered, machine)
		}
	}
	m.mu.Unlock()

	for _, machine := range ordered {
		enemy := machine.Enemy()
		if enemy.Stats == nil || enemy.Health == nil {
			slog.Warn("enemy missing stats or health, skipping AI tick",
				"id", enemy.ID,
				"name", enemy.Name)
			continue
		}
		machine.Tick(delta)
	}
}
