package sim

import (
	"log/slog"

	"github.com/ashmelev/frostline/internal/ai"
	"github.com/ashmelev/frostline/internal/data"
	"github.com/ashmelev/frostline/internal/event"
	"github.com/ashmelev/frostline/internal/health"
	"github.com/ashmelev/frostline/internal/model"
	"github.com/ashmelev/frostline/internal/physics"
	"github.com/ashmelev/frostline/internal/stat"
)

const (
	defaultBodyRadius = 0.5
	defaultBodyHeight = 1.8
	enemyBodyMass     = 60
)

// createEnemy materializes one enemy instance: stats, health wired to the
// event queue, capsule body, and an AI machine registered with the manager.
// This is the spawn controller's SpawnFunc.
func (s *Sim) createEnemy(def *data.EnemyDef, pos model.Vec3) *model.Entity {
	stats := stat.NewModel(def.BaseValueSet())
	tracker := health.NewTracker(stats.Current(stat.MaxHealth))
	tracker.SetReductionFunc(func() float64 {
		return stats.Current(stat.DamageReduction)
	})
	stats.SetMaxHealthFunc(tracker.UpdateMaxHealth)

	radius := def.BodyRadius
	if radius <= 0 {
		radius = defaultBodyRadius
	}
	height := def.BodyHeight
	if height <= 0 {
		height = defaultBodyHeight
	}

	enemy := &model.Entity{
		Kind:       model.KindEnemy,
		Name:       def.Name,
		TemplateID: def.ID,
		Position:   pos,
		Stats:      stats,
		Health:     tracker,
		Loot:       def.Loot,
		XPReward:   def.XPReward,
	}
	enemy.Body = s.world.CreateBody(physics.BodyOptions{
		Shape:      physics.ShapeCapsule,
		Dimensions: model.Vec3{X: radius, Y: height},
		Mass:       enemyBodyMass,
		Position:   pos,
	})
	id := s.registry.Add(enemy)

	tracker.SetChangedFunc(func(current, max float64) {
		s.events.Push(event.HealthChanged{OwnerID: id, Current: current, Max: max})
	})
	tracker.SetDeathFunc(func() {
		s.onEnemyDeath(enemy)
	})
	stats.SetExpiredFunc(func(st stat.ID, value float64) {
		s.events.Push(event.ModifierExpired{OwnerID: id, Stat: st.String(), Value: value})
	})

	machine := ai.NewMachine(
		enemy,
		s.player,
		s.world,
		def.AI,
		ai.Tuning{
			Hysteresis:        s.cfg.Tuning.AttackHysteresis,
			AttackDamageDelay: s.cfg.Tuning.AttackDamageDelay,
		},
		s.resolver.ResolveEnemyAttack,
	)
	machine.SetAnimationFunc(s.playAnimation, def.Animations)
	s.machines.Register(id, machine)

	return enemy
}

// onEnemyDeath fires the death notifications, drops loot, and schedules the
// delayed corpse removal. Runs inside the tick that dealt the lethal hit.
func (s *Sim) onEnemyDeath(enemy *model.Entity) {
	s.events.Push(event.Death{OwnerID: enemy.ID})
	s.events.Push(event.EnemyDied{
		InstanceID: enemy.ID,
		TemplateID: enemy.TemplateID,
		XPReward:   enemy.XPReward,
		Position:   enemy.Position,
	})

	s.resolver.SpawnLoot(enemy.Loot, enemy.Position)

	delay := s.cfg.Tuning.CorpseCleanupDelay
	if delay < 0 {
		delay = 0
	}
	s.timers.Schedule(s.now+delay, func() {
		s.removeEnemy(enemy.ID)
	})

	slog.Info("enemy died",
		"id", enemy.ID,
		"template", enemy.TemplateID,
		"cleanup_in", delay)
}

// removeEnemy tears an enemy instance down: AI machine, physics body,
// registry entry. Idempotent: the delayed cleanup and an explicit removal
// may both run.
func (s *Sim) removeEnemy(id model.ID) {
	enemy, ok := s.registry.Get(id)
	if !ok {
		return
	}

	s.machines.Unregister(id)
	if enemy.Body != 0 {
		s.world.RemoveBody(enemy.Body)
		enemy.Body = 0
	}
	s.registry.Remove(id)

	slog.Debug("enemy removed", "id", id)
}

// CreateResourceNode places a static gatherable in the world: hit points,
// a loot table, a box body. Gatherables have no stats, so damage reduction
// never applies to them.
func (s *Sim) CreateResourceNode(name string, hitPoints float64, loot []model.LootEntry, pos model.Vec3) *model.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if y, ok := s.world.GetHeightAt(pos.X, pos.Z); ok {
		pos.Y = y
	}

	node := &model.Entity{
		Kind:     model.KindResourceNode,
		Name:     name,
		Position: pos,
		Health:   health.NewTracker(hitPoints),
		Loot:     loot,
	}
	node.Body = s.world.CreateBody(physics.BodyOptions{
		Shape:      physics.ShapeBox,
		Dimensions: model.Vec3{X: 1, Y: 1.5, Z: 1},
		Mass:       0, // static
		Position:   pos,
	})
	id := s.registry.Add(node)

	slog.Debug("resource node created", "id", id, "name", name)
	return node
}

// playAnimation forwards an AI animation signal to the event subscribers via
// the gateway; the core has no renderer, so the clip name is the contract.
func (s *Sim) playAnimation(enemy *model.Entity, clip string) {
	s.events.Push(event.Animation{OwnerID: enemy.ID, Clip: clip})
}
