package gateway

import (
	"github.com/ashmelev/frostline/internal/event"
	"github.com/ashmelev/frostline/internal/model"
)

// frame is one JSON message pushed to connected clients. Type discriminates
// the payload; unused fields are omitted.
type frame struct {
	Type string `json:"type"`

	OwnerID  model.ID `json:"ownerId,omitempty"`
	IsPlayer bool     `json:"isPlayer,omitempty"`

	// Health payload. Never omitted on zero: a lethal hit reports current 0
	// and the client must see it.
	Current float64 `json:"current"`
	Max     float64 `json:"max"`

	Stat  string  `json:"stat,omitempty"`
	Value float64 `json:"value"`

	TemplateID string      `json:"templateId,omitempty"`
	XPReward   int         `json:"xpReward,omitempty"`
	Position   *model.Vec3 `json:"position,omitempty"`

	Clip string `json:"clip,omitempty"`
}

// toFrame converts a simulation event into its wire form.
func toFrame(ev event.Event) (frame, bool) {
	switch e := ev.(type) {
	case event.HealthChanged:
		return frame{
			Type:     "health",
			OwnerID:  e.OwnerID,
			IsPlayer: e.IsPlayer,
			Current:  e.Current,
			Max:      e.Max,
		}, true
	case event.Death:
		return frame{
			Type:     "death",
			OwnerID:  e.OwnerID,
			IsPlayer: e.IsPlayer,
		}, true
	case event.ModifierExpired:
		return frame{
			Type:    "modifierExpired",
			OwnerID: e.OwnerID,
			Stat:    e.Stat,
			Value:   e.Value,
		}, true
	case event.EnemyDied:
		pos := e.Position
		return frame{
			Type:       "enemyDied",
			OwnerID:    e.InstanceID,
			TemplateID: e.TemplateID,
			XPReward:   e.XPReward,
			Position:   &pos,
		}, true
	case event.Animation:
		return frame{
			Type:    "animation",
			OwnerID: e.OwnerID,
			Clip:    e.Clip,
		}, true
	default:
		return frame{}, false
	}
}

// command is one JSON message read from a client.
type command struct {
	Type string `json:"type"`

	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	Ability string   `json:"ability,omitempty"`
	Item    string   `json:"item,omitempty"`
	Target  model.ID `json:"target,omitempty"`
}
