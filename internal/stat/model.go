package stat

import (
	"fmt"
	"log/slog"
)

// Modifier is a timed contribution to one stat. Infinite modifiers never
// expire through Tick and must be removed explicitly by id.
type Modifier struct {
	ID        string
	Stat      ID
	Value     float64
	Kind      Kind
	Remaining float64 // seconds; meaningless when Infinite
	Infinite  bool
}

// EquipmentBonus is a persistent contribution keyed by its source item.
// No duration: it lasts until the source is unequipped.
type EquipmentBonus struct {
	Stat  ID
	Value float64
	Kind  Kind
}

// ExpiredFunc is called when a timed modifier runs out.
// Injected by the entity assembly to publish modifier-expired notifications.
type ExpiredFunc func(stat ID, value float64)

// MaxHealthFunc receives the recomputed max health. Injected so the model can
// push updates into the owner's health tracker (one-way: stats → health).
type MaxHealthFunc func(newMax float64)

// Model owns base and derived stats for one entity. Recalculation is
// pull-based: every mutation of modifiers or equipment triggers a full
// recompute rather than an incremental delta.
type Model struct {
	base    ValueSet
	current ValueSet

	modifiers []Modifier // insertion order preserved
	equipment map[string]EquipmentBonus

	onExpired   ExpiredFunc
	onMaxHealth MaxHealthFunc

	nextModID int
	// lastPushedMax dedupes max-health pushes: the linked tracker is only
	// updated when the derived value actually changes.
	lastPushedMax float64
}

// NewModel creates a stat model seeded with base values and computes the
// initial current set.
func NewModel(base ValueSet) *Model {
	m := &Model{
		base:      base,
		equipment: make(map[string]EquipmentBonus),
	}
	m.Recalculate()
	return m
}

// SetExpiredFunc sets the modifier-expired notification callback.
func (m *Model) SetExpiredFunc(fn ExpiredFunc) {
	m.onExpired = fn
}

// SetMaxHealthFunc sets the max-health push callback. The current derived
// max becomes the push baseline: the tracker is expected to be constructed
// with it, so only later changes are pushed.
func (m *Model) SetMaxHealthFunc(fn MaxHealthFunc) {
	m.onMaxHealth = fn
	m.lastPushedMax = m.current[MaxHealth]
}

// Base returns the base value of a stat.
func (m *Model) Base(id ID) float64 {
	if id >= Count {
		return 0
	}
	return m.base[id]
}

// Current returns the derived value of a stat after all modifiers and clamps.
func (m *Model) Current(id ID) float64 {
	if id >= Count {
		return 0
	}
	return m.current[id]
}

// CurrentSet returns a copy of all derived stat values.
func (m *Model) CurrentSet() ValueSet {
	return m.current
}

// SetBase replaces one base value and recomputes. Used by level-up paths.
func (m *Model) SetBase(id ID, value float64) {
	if id >= Count {
		return
	}
	m.base[id] = value
	m.Recalculate()
}

// ApplyModifier inserts a timed modifier and recomputes. An empty id is
// auto-assigned. A duplicate id overwrites the existing modifier with a
// warning (last write wins, not an error). Returns the modifier id.
func (m *Model) ApplyModifier(mod Modifier) string {
	if mod.Stat >= Count {
		slog.Warn("modifier targets unknown stat, ignored", "stat", mod.Stat, "id", mod.ID)
		return ""
	}
	if mod.ID == "" {
		m.nextModID++
		mod.ID = fmt.Sprintf("mod-%d", m.nextModID)
	}

	for i := range m.modifiers {
		if m.modifiers[i].ID == mod.ID {
			slog.Warn("duplicate modifier id, overwriting",
				"id", mod.ID,
				"stat", mod.Stat,
				"value", mod.Value)
			m.modifiers[i] = mod
			m.Recalculate()
			return mod.ID
		}
	}

	m.modifiers = append(m.modifiers, mod)
	m.Recalculate()
	return mod.ID
}

// RemoveModifier removes a modifier by id and recomputes.
// Returns whether the id was found.
func (m *Model) RemoveModifier(id string) bool {
	for i := range m.modifiers {
		if m.modifiers[i].ID == id {
			m.modifiers = append(m.modifiers[:i], m.modifiers[i+1:]...)
			m.Recalculate()
			return true
		}
	}
	return false
}

// ApplyEquipmentBonus registers a persistent bonus keyed by source id.
// Applying the same source twice is a warned no-op, which keeps double-equip
// bugs from stacking bonuses.
func (m *Model) ApplyEquipmentBonus(sourceID string, bonus EquipmentBonus) {
	if bonus.Stat >= Count {
		slog.Warn("equipment bonus targets unknown stat, ignored", "source", sourceID)
		return
	}
	if _, exists := m.equipment[sourceID]; exists {
		slog.Warn("equipment bonus already applied, ignoring", "source", sourceID)
		return
	}
	m.equipment[sourceID] = bonus
	m.Recalculate()
}

// RemoveEquipmentBonus removes the bonus for a source id and recomputes.
// Removing an unknown source is a no-op.
func (m *Model) RemoveEquipmentBonus(sourceID string) {
	if _, exists := m.equipment[sourceID]; !exists {
		return
	}
	delete(m.equipment, sourceID)
	m.Recalculate()
}

// ModifierCount returns the number of active modifiers.
func (m *Model) ModifierCount() int {
	return len(m.modifiers)
}

// Tick advances finite modifier timers by delta seconds. Expired modifiers
// are removed one at a time; each removal recomputes and fires the expired
// notification so observers see every individual expiry.
func (m *Model) Tick(delta float64) {
	if delta <= 0 {
		return
	}

	for i := 0; i < len(m.modifiers); {
		mod := &m.modifiers[i]
		if mod.Infinite {
			i++
			continue
		}
		mod.Remaining -= delta
		if mod.Remaining > 0 {
			i++
			continue
		}

		expired := *mod
		m.modifiers = append(m.modifiers[:i], m.modifiers[i+1:]...)
		m.Recalculate()

		if m.onExpired != nil {
			m.onExpired(expired.Stat, expired.Value)
		}

		slog.Debug("modifier expired",
			"id", expired.ID,
			"stat", expired.Stat,
			"value", expired.Value)
	}
}

// Recalculate derives current stats from base values. Order is fixed:
// additive contributions are summed first, then multiplicative products are
// applied, then per-stat clamps. The add-then-multiply order is the
// authoritative balance behavior; do not swap it.
func (m *Model) Recalculate() {
	var add ValueSet
	mul := unitValueSet()

	for _, mod := range m.modifiers {
		switch mod.Kind {
		case Additive:
			add[mod.Stat] += mod.Value
		case Multiplicative:
			mul[mod.Stat] *= mod.Value
		}
	}
	for _, bonus := range m.equipment {
		switch bonus.Kind {
		case Additive:
			add[bonus.Stat] += bonus.Value
		case Multiplicative:
			mul[bonus.Stat] *= bonus.Value
		}
	}

	for id := ID(0); id < Count; id++ {
		v := (m.base[id] + add[id]) * mul[id]
		m.current[id] = clampValue(id, v)
	}

	if m.onMaxHealth != nil && m.current[MaxHealth] != m.lastPushedMax {
		m.lastPushedMax = m.current[MaxHealth]
		m.onMaxHealth(m.lastPushedMax)
	}
}

func unitValueSet() ValueSet {
	var vs ValueSet
	for i := range vs {
		vs[i] = 1
	}
	return vs
}
