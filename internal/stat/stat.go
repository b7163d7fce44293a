package stat

// ID enumerates the stats tracked per entity. String-keyed config values are
// mapped through ParseID; simulation code dispatches on the enum so typos in
// content files cannot silently reach a hot path.
type ID uint8

const (
	Speed ID = iota
	RunSpeed
	Damage
	AttackRange
	PerceptionRange
	MaxHealth
	DamageReduction
	ColdResistance

	Count
)

// String returns the lower-cased canonical stat name used in content files.
func (id ID) String() string {
	switch id {
	case Speed:
		return "speed"
	case RunSpeed:
		return "runspeed"
	case Damage:
		return "damage"
	case AttackRange:
		return "attackrange"
	case PerceptionRange:
		return "perceptionrange"
	case MaxHealth:
		return "maxhealth"
	case DamageReduction:
		return "damagereduction"
	case ColdResistance:
		return "coldresistance"
	default:
		return "unknown"
	}
}

var idsByName = map[string]ID{
	"speed":           Speed,
	"runspeed":        RunSpeed,
	"damage":          Damage,
	"attackrange":     AttackRange,
	"perceptionrange": PerceptionRange,
	"maxhealth":       MaxHealth,
	"damagereduction": DamageReduction,
	"coldresistance":  ColdResistance,
}

// ParseID maps a lower-cased stat name to its enum value.
// Returns false for unknown names; callers ignore those with a warning.
func ParseID(name string) (ID, bool) {
	id, ok := idsByName[name]
	return id, ok
}

// ValueSet stores one value per stat.
type ValueSet [Count]float64

// Kind defines how a modifier contributes to a stat.
type Kind uint8

const (
	Additive       Kind = iota // summed onto the base value
	Multiplicative             // scales the additive total
)

// String returns human-readable kind name.
func (k Kind) String() string {
	if k == Multiplicative {
		return "multiplicative"
	}
	return "additive"
}

// clamp bounds per stat: a runaway modifier stack must never produce a
// zero-damage hit, a frozen entity, or reduction above 90%.
type bounds struct {
	min, max float64
}

var clamps = [Count]bounds{
	Speed:           {0.1, maxUnbounded},
	RunSpeed:        {0.1, maxUnbounded},
	Damage:          {1, maxUnbounded},
	AttackRange:     {0.5, maxUnbounded},
	PerceptionRange: {0, maxUnbounded},
	MaxHealth:       {1, maxUnbounded},
	DamageReduction: {0, 0.9},
	ColdResistance:  {0, 1},
}

const maxUnbounded = 1e18

func clampValue(id ID, v float64) float64 {
	b := clamps[id]
	if v < b.min {
		return b.min
	}
	if v > b.max {
		return b.max
	}
	return v
}
