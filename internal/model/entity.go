package model

import (
	"github.com/ashmelev/frostline/internal/ability"
	"github.com/ashmelev/frostline/internal/health"
	"github.com/ashmelev/frostline/internal/stat"
)

// ID uniquely identifies a live entity within a session.
type ID uint32

// BodyID references a physics body owned by the physics collaborator.
// Zero means the entity has no body.
type BodyID uint32

// Kind classifies an entity record.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindEnemy
	KindResourceNode
	KindCollectable
)

// String returns human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "PLAYER"
	case KindEnemy:
		return "ENEMY"
	case KindResourceNode:
		return "RESOURCE_NODE"
	case KindCollectable:
		return "COLLECTABLE"
	default:
		return "UNKNOWN"
	}
}

// LootEntry describes one row of a loot table. Each entry is rolled
// independently on death; Count is drawn uniformly from [MinCount, MaxCount].
type LootEntry struct {
	ItemID   string  `yaml:"item"`
	MinCount int     `yaml:"min"`
	MaxCount int     `yaml:"max"`
	Chance   float64 `yaml:"chance"` // 0..1
}

// Entity is a fixed record for every simulated object. Optional components
// are nil for kinds that do not carry them (a collectable has no AI stats,
// a resource node has no abilities).
type Entity struct {
	ID         ID
	Kind       Kind
	Name       string
	TemplateID string // content definition id for enemies and resource nodes

	Position Vec3
	Heading  float64 // yaw, radians
	Body     BodyID

	Stats     *stat.Model
	Health    *health.Tracker
	Abilities *ability.Set

	Loot     []LootEntry
	XPReward int

	// Depleted marks a resource node whose loot conversion already ran.
	// Guards against double-processing the same node.
	Depleted bool

	// Collectable payload.
	ItemID   string
	Quantity int
}

// IsPlayer reports whether the entity is the player.
func (e *Entity) IsPlayer() bool {
	return e.Kind == KindPlayer
}

// Alive reports whether the entity has a health tracker and is not dead.
func (e *Entity) Alive() bool {
	return e.Health != nil && !e.Health.IsDead()
}
