package sim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ashmelev/frostline/internal/ability"
	"github.com/ashmelev/frostline/internal/ai"
	"github.com/ashmelev/frostline/internal/combat"
	"github.com/ashmelev/frostline/internal/config"
	"github.com/ashmelev/frostline/internal/data"
	"github.com/ashmelev/frostline/internal/event"
	"github.com/ashmelev/frostline/internal/health"
	"github.com/ashmelev/frostline/internal/model"
	"github.com/ashmelev/frostline/internal/physics"
	"github.com/ashmelev/frostline/internal/sched"
	"github.com/ashmelev/frostline/internal/spawn"
	"github.com/ashmelev/frostline/internal/stat"
)

// Subscriber receives every simulation event drained at the end of a tick.
type Subscriber func(event.Event)

// Sim owns the simulation clock and advances all components in a fixed
// order: timed stat/ability elements, spawning, AI, scheduled callbacks,
// then the event drain. Everything runs on one goroutine; external commands
// (gateway) synchronize through the sim mutex.
type Sim struct {
	mu sync.Mutex

	cfg      config.SimServer
	world    physics.World
	content  *data.Registry
	registry *model.Registry
	events   *event.Queue
	timers   *sched.Queue
	resolver *combat.Resolver
	machines *ai.Manager
	spawner  *spawn.Controller

	player    *model.Entity
	spawnPos  model.Vec3
	playerXP  int
	inventory map[string]int

	now float64

	subscribers []Subscriber
}

// New assembles a simulation over a physics world and loaded content.
func New(cfg config.SimServer, world physics.World, content *data.Registry) *Sim {
	s := &Sim{
		cfg:       cfg,
		world:     world,
		content:   content,
		registry:  model.NewRegistry(),
		events:    event.NewQueue(),
		timers:    sched.NewQueue(),
		machines:  ai.NewManager(),
		inventory: make(map[string]int),
	}

	s.resolver = combat.NewResolver(world, s.registry, content)
	s.resolver.SetPickupFunc(s.schedulePickupDespawn)

	s.player = s.createPlayer(cfg.Player)
	s.spawner = spawn.NewController(content, world, s.player, cfg.Tuning.Difficulty, s.createEnemy)

	slog.Info("simulation assembled",
		"zones", len(content.Zones()),
		"tick_ms", cfg.TickIntervalMs)

	return s
}

// Subscribe registers a drain-time event consumer. Not safe to call
// concurrently with Run; wire subscribers before starting the loop.
func (s *Sim) Subscribe(fn Subscriber) {
	s.subscribers = append(s.subscribers, fn)
}

// Player returns the player entity.
func (s *Sim) Player() *model.Entity {
	return s.player
}

// Registry returns the live entity registry.
func (s *Sim) Registry() *model.Registry {
	return s.registry
}

// Spawner returns the enemy spawn controller.
func (s *Sim) Spawner() *spawn.Controller {
	return s.spawner
}

// Now returns the simulation clock in seconds.
func (s *Sim) Now() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Step advances the simulation by delta seconds under the sim lock.
func (s *Sim) Step(delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick(delta)
}

// tick is the single-threaded frame. Order matters: timed elements first so
// expired buffs are gone before AI reads stats, spawner before AI so new
// enemies act on their spawn tick, scheduler before the drain so corpse
// removals publish in the same frame they happen.
func (s *Sim) tick(delta float64) {
	s.now += delta

	s.registry.ForEach(func(e *model.Entity) bool {
		if e.Stats != nil {
			e.Stats.Tick(delta)
		}
		if e.Abilities != nil {
			e.Abilities.Tick(delta)
		}
		return true
	})

	s.spawner.Tick(delta)
	s.machines.TickAll(delta)
	s.timers.Advance(s.now)
	s.drainEvents()
}

// drainEvents empties the tick's event queue, handles the internal
// consumers, and fans each event out to subscribers.
func (s *Sim) drainEvents() {
	for _, ev := range s.events.Drain() {
		if died, ok := ev.(event.EnemyDied); ok {
			s.spawner.OnEnemyDied(died.InstanceID)
			s.playerXP += died.XPReward
		}
		for _, fn := range s.subscribers {
			fn(ev)
		}
	}
}

// Run drives the fixed-step tick loop until the context is canceled.
func (s *Sim) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.TickIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	delta := interval.Seconds()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("simulation loop started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation loop stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Step(delta)
		}
	}
}

// createPlayer builds the player entity from config: stats, health wired to
// the event queue, an empty ability set, and a capsule body snapped to the
// ground.
func (s *Sim) createPlayer(pc config.PlayerConfig) *model.Entity {
	var base stat.ValueSet
	for name, value := range pc.Stats {
		id, ok := stat.ParseID(name)
		if !ok {
			slog.Warn("player config has unknown stat key, ignored", "stat", name)
			continue
		}
		base[id] = value
	}

	stats := stat.NewModel(base)
	tracker := health.NewTracker(stats.Current(stat.MaxHealth))
	tracker.SetReductionFunc(func() float64 {
		return stats.Current(stat.DamageReduction)
	})
	stats.SetMaxHealthFunc(tracker.UpdateMaxHealth)

	pos := model.Vec3{X: pc.Position.X, Y: pc.Position.Y, Z: pc.Position.Z}
	if y, ok := s.world.GetHeightAt(pos.X, pos.Z); ok {
		pos.Y = y
	}

	player := &model.Entity{
		Kind:      model.KindPlayer,
		Name:      "player",
		Position:  pos,
		Stats:     stats,
		Health:    tracker,
		Abilities: ability.NewSet(),
	}
	player.Body = s.world.CreateBody(physics.BodyOptions{
		Shape:      physics.ShapeCapsule,
		Dimensions: model.Vec3{X: 0.4, Y: 1.8},
		Mass:       80,
		Position:   pos,
	})
	id := s.registry.Add(player)
	s.spawnPos = pos

	tracker.SetChangedFunc(func(current, max float64) {
		s.events.Push(event.HealthChanged{OwnerID: id, IsPlayer: true, Current: current, Max: max})
	})
	tracker.SetDeathFunc(func() {
		s.events.Push(event.Death{OwnerID: id, IsPlayer: true})
	})
	stats.SetExpiredFunc(func(st stat.ID, value float64) {
		s.events.Push(event.ModifierExpired{OwnerID: id, Stat: st.String(), Value: value})
	})

	slog.Info("player created",
		"id", id,
		"max_health", tracker.Max(),
		"x", pos.X,
		"z", pos.Z)

	return player
}

// schedulePickupDespawn arms the timed auto-despawn for a loot pickup.
func (s *Sim) schedulePickupDespawn(pickup *model.Entity) {
	lifetime := s.cfg.Tuning.PickupLifetime
	if lifetime <= 0 {
		return
	}
	s.timers.Schedule(s.now+lifetime, func() {
		s.resolver.RemovePickup(pickup)
	})
}
