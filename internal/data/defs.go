package data

import (
	"fmt"
	"log/slog"

	"github.com/ashmelev/frostline/internal/model"
	"github.com/ashmelev/frostline/internal/stat"
)

// AIParams holds per-enemy-type behavior tuning.
type AIParams struct {
	IdleMin           float64 `yaml:"idle_min"`            // idle dwell range, seconds
	IdleMax           float64 `yaml:"idle_max"`
	WanderRadius      float64 `yaml:"wander_radius"`
	WanderDurationMin float64 `yaml:"wander_duration_min"`
	WanderDurationMax float64 `yaml:"wander_duration_max"`
	AttackCooldown    float64 `yaml:"attack_cooldown"` // seconds between attacks
}

// EnemyDef is the static definition of one enemy type. Read-only after load.
type EnemyDef struct {
	ID         string             `yaml:"id"`
	Name       string             `yaml:"name"`
	BaseStats  map[string]float64 `yaml:"stats"` // lower-cased stat names
	AI         AIParams           `yaml:"ai"`
	Loot       []model.LootEntry  `yaml:"loot"`
	Animations map[string]string  `yaml:"animations"` // logical action → clip name
	XPReward   int                `yaml:"xp_reward"`
	BodyRadius float64            `yaml:"body_radius"`
	BodyHeight float64            `yaml:"body_height"`
}

// BaseValueSet converts the string-keyed stats table into a stat.ValueSet.
// Unknown keys contribute nothing and are logged once per load.
func (d *EnemyDef) BaseValueSet() stat.ValueSet {
	var vs stat.ValueSet
	for name, value := range d.BaseStats {
		id, ok := stat.ParseID(name)
		if !ok {
			slog.Warn("enemy definition has unknown stat key, ignored",
				"enemy", d.ID,
				"stat", name)
			continue
		}
		vs[id] = value
	}
	return vs
}

// AbilityKind distinguishes the two supported ability archetypes.
type AbilityKind string

const (
	AbilityAttack AbilityKind = "attack" // targeted raycast attack
	AbilityBuff   AbilityKind = "buff"   // timed self modifier
)

// AbilityDef is the static definition of one ability. Exactly one of the
// bonus fields is expected for buff abilities.
type AbilityDef struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Kind     AbilityKind `yaml:"kind"`
	Cooldown float64     `yaml:"cooldown"` // seconds
	Duration float64     `yaml:"duration"` // buff duration, seconds

	DamageMultiplier float64 `yaml:"damage_multiplier"` // attack kind

	SpeedBonus           float64 `yaml:"speed_bonus"`
	DamageReductionBonus float64 `yaml:"damage_reduction_bonus"`
	ColdResistanceBonus  float64 `yaml:"cold_resistance_bonus"`
}

// BuffModifier resolves which stat a buff ability raises and by how much.
// Returns false when no bonus field is set.
func (d *AbilityDef) BuffModifier() (stat.ID, float64, bool) {
	switch {
	case d.SpeedBonus != 0:
		return stat.Speed, d.SpeedBonus, true
	case d.DamageReductionBonus != 0:
		return stat.DamageReduction, d.DamageReductionBonus, true
	case d.ColdResistanceBonus != 0:
		return stat.ColdResistance, d.ColdResistanceBonus, true
	default:
		return 0, 0, false
	}
}

// validate reports malformed ability definitions at load time.
func (d *AbilityDef) validate() error {
	switch d.Kind {
	case AbilityAttack:
		if d.DamageMultiplier <= 0 {
			return fmt.Errorf("attack ability %q needs a positive damage_multiplier", d.ID)
		}
	case AbilityBuff:
		set := 0
		if d.SpeedBonus != 0 {
			set++
		}
		if d.DamageReductionBonus != 0 {
			set++
		}
		if d.ColdResistanceBonus != 0 {
			set++
		}
		if set != 1 {
			return fmt.Errorf("buff ability %q must set exactly one bonus field, has %d", d.ID, set)
		}
	default:
		return fmt.Errorf("ability %q has unknown kind %q", d.ID, d.Kind)
	}
	return nil
}

// EquipBonusDef is an optional stat bonus an item grants while equipped.
type EquipBonusDef struct {
	Stat  string  `yaml:"stat"`
	Value float64 `yaml:"value"`
	Kind  string  `yaml:"kind"` // "additive" (default) or "multiplicative"
}

// StatBonus converts the YAML bonus row into a stat.EquipmentBonus.
// Returns false for an unknown stat name; "multiplicative" is the only kind
// spelling recognized besides the additive default.
func (b *EquipBonusDef) StatBonus() (stat.EquipmentBonus, bool) {
	id, ok := stat.ParseID(b.Stat)
	if !ok {
		slog.Warn("item bonus has unknown stat key, ignored", "stat", b.Stat)
		return stat.EquipmentBonus{}, false
	}
	kind := stat.Additive
	if b.Kind == "multiplicative" {
		kind = stat.Multiplicative
	}
	return stat.EquipmentBonus{Stat: id, Value: b.Value, Kind: kind}, true
}

// ItemDef is the static definition of one item type.
type ItemDef struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Stackable bool           `yaml:"stackable"`
	Bonus     *EquipBonusDef `yaml:"bonus"`
}

// WeightedSpawn is one enemy-type row of a zone spawn list.
type WeightedSpawn struct {
	EnemyID string  `yaml:"enemy"`
	Weight  float64 `yaml:"weight"`
}

// ZoneDef is the static configuration of one spawn zone.
type ZoneDef struct {
	ID                string          `yaml:"id"`
	Center            model.Vec3      `yaml:"center"`
	ActivationRadius  float64         `yaml:"activation_radius"`
	SpawnRadius       float64         `yaml:"spawn_radius"`
	SpawnList         []WeightedSpawn `yaml:"spawns"`
	MaxPopulation     int             `yaml:"max_population"`
	InitialSpawnCount int             `yaml:"initial_spawn_count"`
	RespawnDelay      float64         `yaml:"respawn_delay"` // seconds
}
