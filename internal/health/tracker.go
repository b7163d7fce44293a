package health

import "log/slog"

// ReductionFunc returns the owner's current damage reduction (0..0.9).
// Injected from the owner's stat model; nil means no reduction.
type ReductionFunc func() float64

// ChangedFunc is called whenever current or max health actually changes.
type ChangedFunc func(current, max float64)

// DeathFunc is called exactly once per life, when health first reaches zero.
type DeathFunc func()

// Tracker owns current/max health for one entity. The death notification
// fires at most once per life; Reset arms it again for revive paths.
type Tracker struct {
	max     float64
	current float64

	deathFired bool

	reduction ReductionFunc
	onChanged ChangedFunc
	onDeath   DeathFunc
}

// NewTracker creates a tracker at full health. Max is clamped to at least 1.
func NewTracker(max float64) *Tracker {
	if max < 1 {
		max = 1
	}
	return &Tracker{max: max, current: max}
}

// SetReductionFunc sets the damage reduction lookup.
func (t *Tracker) SetReductionFunc(fn ReductionFunc) {
	t.reduction = fn
}

// SetChangedFunc sets the health-changed notification callback.
func (t *Tracker) SetChangedFunc(fn ChangedFunc) {
	t.onChanged = fn
}

// SetDeathFunc sets the death notification callback.
func (t *Tracker) SetDeathFunc(fn DeathFunc) {
	t.onDeath = fn
}

// Current returns current health.
func (t *Tracker) Current() float64 {
	return t.current
}

// Max returns max health.
func (t *Tracker) Max() float64 {
	return t.max
}

// IsDead reports whether health is depleted.
func (t *Tracker) IsDead() bool {
	return t.current <= 0
}

// TakeDamage applies incoming damage after reduction and returns whether the
// hit was lethal. Calls after death return true immediately without mutating
// state or re-firing the death notification.
func (t *Tracker) TakeDamage(amount float64) bool {
	if t.IsDead() {
		return true
	}
	if amount <= 0 {
		return false
	}

	reduction := 0.0
	if t.reduction != nil {
		reduction = t.reduction()
	}
	if reduction < 0 {
		reduction = 0
	} else if reduction > 0.9 {
		reduction = 0.9
	}

	final := amount * (1 - reduction)
	old := t.current
	t.current -= final
	if t.current < 0 {
		t.current = 0
	}

	if t.current != old && t.onChanged != nil {
		t.onChanged(t.current, t.max)
	}

	if t.current <= 0 {
		if !t.deathFired {
			t.deathFired = true
			if t.onDeath != nil {
				t.onDeath()
			}
		}
		return true
	}
	return false
}

// Heal restores health up to max. No-op when dead or amount is not positive.
func (t *Tracker) Heal(amount float64) {
	if t.IsDead() || amount <= 0 {
		return
	}

	old := t.current
	t.current += amount
	if t.current > t.max {
		t.current = t.max
	}

	if t.current != old && t.onChanged != nil {
		t.onChanged(t.current, t.max)
	}
}

// Reset restores full health and re-arms the death notification.
// Used by respawn and revive paths.
func (t *Tracker) Reset() {
	old := t.current
	t.current = t.max
	t.deathFired = false

	if t.current != old && t.onChanged != nil {
		t.onChanged(t.current, t.max)
	}
}

// UpdateMaxHealth replaces max health (clamped to at least 1), re-clamps
// current, and emits health-changed unconditionally so observers pick up the
// new ceiling even when current is untouched.
func (t *Tracker) UpdateMaxHealth(newMax float64) {
	if newMax < 1 {
		slog.Warn("max health below 1, clamping", "requested", newMax)
		newMax = 1
	}

	t.max = newMax
	if t.current > t.max {
		t.current = t.max
	}

	if t.onChanged != nil {
		t.onChanged(t.current, t.max)
	}
}
