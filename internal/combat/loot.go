package combat

import (
	"log/slog"
	"math/rand/v2"

	"github.com/ashmelev/frostline/internal/model"
	"github.com/ashmelev/frostline/internal/physics"
)

const (
	pickupJitterRadius = 0.6
	pickupBodyRadius   = 0.25
	pickupBodyMass     = 1.0
)

// SpawnLoot rolls a loot table and materializes the drops as collectable
// entities scattered around the given point. Each entry is an independent
// chance roll; every dropped unit becomes its own pickup with a small
// dynamic body snapped to terrain height. Returns the spawned pickups.
func (r *Resolver) SpawnLoot(entries []model.LootEntry, at model.Vec3) []*model.Entity {
	var pickups []*model.Entity

	for _, entry := range entries {
		if entry.Chance <= 0 {
			continue
		}
		if entry.Chance < 1 && rand.Float64() >= entry.Chance {
			continue
		}

		count := rollCount(entry.MinCount, entry.MaxCount)
		for range count {
			pickup := r.spawnPickup(entry.ItemID, at)
			if pickup != nil {
				pickups = append(pickups, pickup)
			}
		}
	}

	return pickups
}

// spawnPickup creates one collectable entity for an item at a jittered,
// height-snapped position. Returns nil when the item is unknown or the
// position has no valid ground.
func (r *Resolver) spawnPickup(itemID string, around model.Vec3) *model.Entity {
	item := r.content.Item(itemID)
	if item == nil {
		slog.Warn("loot entry references unknown item, skipping", "item", itemID)
		return nil
	}

	pos := model.Vec3{
		X: around.X + (rand.Float64()*2-1)*pickupJitterRadius,
		Z: around.Z + (rand.Float64()*2-1)*pickupJitterRadius,
	}
	y, ok := r.world.GetHeightAt(pos.X, pos.Z)
	if !ok {
		slog.Warn("no ground for loot pickup, skipping",
			"item", itemID,
			"x", pos.X,
			"z", pos.Z)
		return nil
	}
	pos.Y = y + pickupBodyRadius

	pickup := &model.Entity{
		Kind:     model.KindCollectable,
		Name:     item.Name,
		ItemID:   item.ID,
		Quantity: 1,
		Position: pos,
	}
	pickup.Body = r.world.CreateBody(physics.BodyOptions{
		Shape:      physics.ShapeSphere,
		Dimensions: model.Vec3{X: pickupBodyRadius},
		Mass:       pickupBodyMass,
		Position:   pos,
	})
	r.registry.Add(pickup)

	if r.onPickup != nil {
		r.onPickup(pickup)
	}

	slog.Debug("loot pickup spawned",
		"item", item.ID,
		"id", pickup.ID,
		"x", pos.X,
		"z", pos.Z)

	return pickup
}

// RemovePickup despawns a collectable, removing its body and registry entry.
// Idempotent: collecting and the timed despawn may race within one tick.
func (r *Resolver) RemovePickup(pickup *model.Entity) {
	if pickup == nil {
		return
	}
	if !r.registry.Remove(pickup.ID) {
		return
	}
	if pickup.Body != 0 {
		r.world.RemoveBody(pickup.Body)
		pickup.Body = 0
	}
}

func rollCount(min, max int) int {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	if max == min {
		return min
	}
	return min + rand.IntN(max-min+1)
}
