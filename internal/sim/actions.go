package sim

import (
	"log/slog"

	"github.com/ashmelev/frostline/internal/combat"
	"github.com/ashmelev/frostline/internal/model"
	"github.com/ashmelev/frostline/internal/stat"
)

const playerRayHeight = 1.5

// PlayerAttack swings at an aim point: the player faces it and a ray is
// traced from head height toward it, ranged to the current attack range.
func (s *Sim) PlayerAttack(aim model.Vec3) combat.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player.Health.IsDead() {
		return combat.Result{Outcome: combat.OutcomeAborted}
	}

	s.player.Heading = s.player.Position.YawTo(aim)
	s.world.SetBodyTransform(s.player.Body, s.player.Position, s.player.Heading)

	origin := s.player.Position
	origin.Y += playerRayHeight
	dir := aim.Sub(origin).Normalized()
	if dir == (model.Vec3{}) {
		return combat.Result{Outcome: combat.OutcomeMiss}
	}
	end := origin.Add(dir.Scale(s.player.Stats.Current(stat.AttackRange)))

	result := s.resolver.ResolveAttack(s.player, origin, end)
	s.drainEvents()
	return result
}

// CastAbility casts one of the player's known abilities.
func (s *Sim) CastAbility(abilityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player.Health.IsDead() {
		return false
	}
	ok := s.resolver.ResolveAbilityCast(s.player, abilityID)
	s.drainEvents()
	return ok
}

// LearnAbility teaches the player an ability by id.
func (s *Sim) LearnAbility(abilityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.content.Ability(abilityID) == nil {
		slog.Warn("cannot learn unknown ability", "ability", abilityID)
		return false
	}
	s.player.Abilities.Learn(abilityID)
	return true
}

// EquipItem applies an item's equipment bonus to the player, keyed by the
// item id so a double equip is a warned no-op.
func (s *Sim) EquipItem(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.content.Item(itemID)
	if item == nil {
		slog.Warn("cannot equip unknown item", "item", itemID)
		return false
	}
	if item.Bonus == nil {
		slog.Warn("item grants no equipment bonus", "item", itemID)
		return false
	}
	bonus, ok := item.Bonus.StatBonus()
	if !ok {
		return false
	}
	s.player.Stats.ApplyEquipmentBonus(itemID, bonus)
	return true
}

// UnequipItem removes an item's equipment bonus from the player.
func (s *Sim) UnequipItem(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Stats.RemoveEquipmentBonus(itemID)
}

// CollectPickup moves a loot pickup into the player inventory and despawns
// it. Returns the item id and whether anything was collected.
func (s *Sim) CollectPickup(id model.ID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pickup, ok := s.registry.Get(id)
	if !ok || pickup.Kind != model.KindCollectable {
		return "", false
	}

	s.inventory[pickup.ItemID] += pickup.Quantity
	s.resolver.RemovePickup(pickup)

	slog.Debug("pickup collected",
		"item", pickup.ItemID,
		"count", s.inventory[pickup.ItemID])

	return pickup.ItemID, true
}

// RespawnPlayer restores the player to full health at the spawn position.
// The death notification re-arms, so a later death fires again.
func (s *Sim) RespawnPlayer() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.player.Position = s.spawnPos
	s.player.Heading = 0
	s.world.SetBodyTransform(s.player.Body, s.spawnPos, 0)
	s.player.Health.Reset()
	s.drainEvents()

	slog.Info("player respawned",
		"x", s.spawnPos.X,
		"z", s.spawnPos.Z)
}

// CurrentStats returns the derived stat snapshot of an entity keyed by
// lower-cased stat name, or nil for unknown or stat-less entities.
func (s *Sim) CurrentStats(id model.ID) map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.registry.Get(id)
	if !ok || e.Stats == nil {
		return nil
	}

	set := e.Stats.CurrentSet()
	snapshot := make(map[string]float64, len(set))
	for i := range set {
		snapshot[stat.ID(i).String()] = set[i]
	}
	return snapshot
}

// PlayerXP returns the accumulated experience from enemy kills.
func (s *Sim) PlayerXP() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerXP
}

// InventoryCount returns how many units of an item the player holds.
func (s *Sim) InventoryCount(itemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory[itemID]
}

// MovePlayer teleports the player body, for the player-control collaborator
// and tests. The sim never moves the player on its own.
func (s *Sim) MovePlayer(pos model.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if y, ok := s.world.GetHeightAt(pos.X, pos.Z); ok {
		pos.Y = y
	}
	s.player.Position = pos
	s.world.SetBodyTransform(s.player.Body, pos, s.player.Heading)
}
