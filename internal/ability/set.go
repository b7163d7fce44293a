package ability

import "log/slog"

// Set tracks the abilities one entity knows and their cooldown timers.
// Cooldowns advance by explicit delta seconds, never by wall clock.
type Set struct {
	known     map[string]struct{}
	cooldowns map[string]float64 // seconds remaining; absent means ready
}

// NewSet creates an empty ability set.
func NewSet() *Set {
	return &Set{
		known:     make(map[string]struct{}),
		cooldowns: make(map[string]float64),
	}
}

// Learn adds an ability id. Learning a known ability is a no-op.
func (s *Set) Learn(id string) {
	if _, ok := s.known[id]; ok {
		return
	}
	s.known[id] = struct{}{}
	slog.Debug("ability learned", "ability", id)
}

// Forget removes an ability and any pending cooldown.
func (s *Set) Forget(id string) {
	delete(s.known, id)
	delete(s.cooldowns, id)
}

// Knows reports whether the ability id has been learned.
func (s *Set) Knows(id string) bool {
	_, ok := s.known[id]
	return ok
}

// Ready reports whether the ability is known and off cooldown.
func (s *Set) Ready(id string) bool {
	if !s.Knows(id) {
		return false
	}
	return s.cooldowns[id] <= 0
}

// Remaining returns the cooldown seconds left for an ability.
func (s *Set) Remaining(id string) float64 {
	r := s.cooldowns[id]
	if r < 0 {
		return 0
	}
	return r
}

// TriggerCooldown starts the cooldown timer after a successful cast.
func (s *Set) TriggerCooldown(id string, seconds float64) {
	if seconds <= 0 {
		delete(s.cooldowns, id)
		return
	}
	s.cooldowns[id] = seconds
}

// Tick advances all cooldown timers by delta seconds.
func (s *Set) Tick(delta float64) {
	if delta <= 0 {
		return
	}
	for id, remaining := range s.cooldowns {
		remaining -= delta
		if remaining <= 0 {
			delete(s.cooldowns, id)
		} else {
			s.cooldowns[id] = remaining
		}
	}
}

// Count returns the number of known abilities.
func (s *Set) Count() int {
	return len(s.known)
}
