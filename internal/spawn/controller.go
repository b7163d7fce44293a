package spawn

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/ashmelev/frostline/internal/data"
	"github.com/ashmelev/frostline/internal/model"
	"github.com/ashmelev/frostline/internal/physics"
)

// SpawnFunc materializes one enemy instance at a position: entity, physics
// body, AI machine. Injected by the orchestrator; returns nil when the
// instance could not be created.
type SpawnFunc func(def *data.EnemyDef, pos model.Vec3) *model.Entity

// zoneState is the per-zone runtime bookkeeping next to its static definition.
type zoneState struct {
	def data.ZoneDef

	active       bool
	population   int
	respawnTimer float64
	totalWeight  float64
}

// Controller manages enemy populations per spawn zone: proximity activation,
// the initial burst fill, respawn pacing, and weighted enemy selection.
// Ticked once per simulation step by the orchestrator.
type Controller struct {
	content    *data.Registry
	world      physics.World
	player     *model.Entity
	difficulty float64
	spawnFunc  SpawnFunc

	zones   []*zoneState
	byEnemy map[model.ID]*zoneState
}

// NewController builds a controller over the configured zones. The difficulty
// multiplier scales the squared activation radius; values below or equal to
// zero fall back to 1.
func NewController(
	content *data.Registry,
	world physics.World,
	player *model.Entity,
	difficulty float64,
	spawnFunc SpawnFunc,
) *Controller {
	if difficulty <= 0 {
		difficulty = 1
	}

	c := &Controller{
		content:    content,
		world:      world,
		player:     player,
		difficulty: difficulty,
		spawnFunc:  spawnFunc,
		byEnemy:    make(map[model.ID]*zoneState),
	}

	for _, def := range content.Zones() {
		total := 0.0
		for _, entry := range def.SpawnList {
			if entry.Weight > 0 {
				total += entry.Weight
			}
		}
		if total <= 0 {
			slog.Warn("spawn zone has no weighted entries, skipping", "zone", def.ID)
			continue
		}
		c.zones = append(c.zones, &zoneState{def: *def, totalWeight: total})
	}

	slog.Info("spawn controller initialized",
		"zones", len(c.zones),
		"difficulty", difficulty)

	return c
}

// Tick advances every zone by delta seconds.
func (c *Controller) Tick(delta float64) {
	playerPos := c.player.Position

	for _, zone := range c.zones {
		distSq := playerPos.DistanceSquared(zone.def.Center)
		activationSq := zone.def.ActivationRadius * zone.def.ActivationRadius * c.difficulty

		inside := distSq < activationSq

		switch {
		case inside && !zone.active:
			zone.active = true
			zone.respawnTimer = zone.def.RespawnDelay
			c.burstFill(zone)

		case !inside && zone.active:
			// Existing enemies stay in the world; the AI resolves them.
			zone.active = false
			slog.Debug("spawn zone deactivated", "zone", zone.def.ID)
		}

		if !zone.active {
			continue
		}

		zone.respawnTimer -= delta
		if zone.respawnTimer <= 0 {
			zone.respawnTimer = zone.def.RespawnDelay
			if zone.population < zone.def.MaxPopulation {
				c.trySpawn(zone)
			}
		}
	}
}

// burstFill runs the activation burst: up to initialSpawnCount immediate
// spawn attempts, capped by maxPopulation.
func (c *Controller) burstFill(zone *zoneState) {
	want := zone.def.InitialSpawnCount
	if room := zone.def.MaxPopulation - zone.population; want > room {
		want = room
	}

	spawned := 0
	for range want {
		if c.trySpawn(zone) {
			spawned++
		}
	}

	slog.Info("spawn zone activated",
		"zone", zone.def.ID,
		"spawned", spawned,
		"population", zone.population)
}

// trySpawn makes one spawn attempt: weighted enemy pick, random position
// inside the spawn radius, ground validation. A failed attempt does not
// touch the respawn timer.
func (c *Controller) trySpawn(zone *zoneState) bool {
	enemyID := c.pickEnemy(zone)
	def := c.content.Enemy(enemyID)
	if def == nil {
		slog.Warn("spawn list references unknown enemy, skipping",
			"zone", zone.def.ID,
			"enemy", enemyID)
		return false
	}

	angle := rand.Float64() * 2 * math.Pi
	r := rand.Float64() * zone.def.SpawnRadius
	x := zone.def.Center.X + math.Sin(angle)*r
	z := zone.def.Center.Z + math.Cos(angle)*r

	y, ok := c.world.GetHeightAt(x, z)
	if !ok {
		slog.Debug("no ground at spawn point, attempt aborted",
			"zone", zone.def.ID,
			"x", x,
			"z", z)
		return false
	}

	enemy := c.spawnFunc(def, model.Vec3{X: x, Y: y, Z: z})
	if enemy == nil {
		return false
	}

	zone.population++
	c.byEnemy[enemy.ID] = zone

	slog.Debug("enemy spawned",
		"zone", zone.def.ID,
		"enemy", def.ID,
		"id", enemy.ID,
		"population", zone.population)

	return true
}

// pickEnemy draws one enemy type proportional to the configured weights.
func (c *Controller) pickEnemy(zone *zoneState) string {
	draw := rand.Float64() * zone.totalWeight
	for _, entry := range zone.def.SpawnList {
		if entry.Weight <= 0 {
			continue
		}
		draw -= entry.Weight
		if draw < 0 {
			return entry.EnemyID
		}
	}
	// Float-boundary draws fall back to the last entry that can legally be
	// drawn; zero-weight rows stay unreachable.
	for i := len(zone.def.SpawnList) - 1; i >= 0; i-- {
		if zone.def.SpawnList[i].Weight > 0 {
			return zone.def.SpawnList[i].EnemyID
		}
	}
	return ""
}

// OnEnemyDied releases the dead enemy's population slot so the owning zone
// can refill it. Unknown ids are ignored; the notification may arrive after
// a zone was rebuilt.
func (c *Controller) OnEnemyDied(id model.ID) {
	zone, ok := c.byEnemy[id]
	if !ok {
		return
	}
	delete(c.byEnemy, id)
	if zone.population > 0 {
		zone.population--
	}

	slog.Debug("zone population decremented",
		"zone", zone.def.ID,
		"population", zone.population)
}

// ZonePopulation reports the live population of a zone by id, for
// diagnostics and tests.
func (c *Controller) ZonePopulation(zoneID string) (int, bool) {
	for _, zone := range c.zones {
		if zone.def.ID == zoneID {
			return zone.population, true
		}
	}
	return 0, false
}

// ZoneActive reports whether a zone is currently player-activated.
func (c *Controller) ZoneActive(zoneID string) (bool, bool) {
	for _, zone := range c.zones {
		if zone.def.ID == zoneID {
			return zone.active, true
		}
	}
	return false, false
}
