package spawn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashmelev/frostline/internal/data"
	"github.com/ashmelev/frostline/internal/model"
	"github.com/ashmelev/frostline/internal/physics"
)

// counterSpawner fabricates minimal enemy entities with unique ids and keeps
// a tally per enemy type.
type counterSpawner struct {
	nextID model.ID
	byType map[string]int
	total  int
}

func newCounterSpawner() *counterSpawner {
	return &counterSpawner{nextID: 1, byType: make(map[string]int)}
}

func (s *counterSpawner) spawn(def *data.EnemyDef, pos model.Vec3) *model.Entity {
	e := &model.Entity{ID: s.nextID, Kind: model.KindEnemy, Name: def.Name, Position: pos}
	s.nextID++
	s.byType[def.ID]++
	s.total++
	return e
}

func testContent(zone data.ZoneDef) *data.Registry {
	content := data.NewRegistry()
	content.AddEnemy(&data.EnemyDef{ID: "frost_wolf", Name: "Frost Wolf"})
	content.AddEnemy(&data.EnemyDef{ID: "snow_stalker", Name: "Snow Stalker"})
	content.AddZone(&zone)
	return content
}

func denZone() data.ZoneDef {
	return data.ZoneDef{
		ID:                "wolf_den",
		Center:            model.Vec3{X: 40, Z: -25},
		ActivationRadius:  60,
		SpawnRadius:       15,
		MaxPopulation:     6,
		InitialSpawnCount: 3,
		RespawnDelay:      5,
		SpawnList: []data.WeightedSpawn{
			{EnemyID: "frost_wolf", Weight: 5},
		},
	}
}

func TestActivationBurst(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	player := &model.Entity{Kind: model.KindPlayer, Position: model.Vec3{X: 40, Z: -25}}
	spawner := newCounterSpawner()

	c := NewController(testContent(denZone()), world, player, 1, spawner.spawn)
	c.Tick(0.05)

	active, ok := c.ZoneActive("wolf_den")
	require.True(t, ok)
	assert.True(t, active)

	pop, _ := c.ZonePopulation("wolf_den")
	assert.Equal(t, 3, pop, "initial burst fills to initial_spawn_count")
	assert.Equal(t, 3, spawner.total)
}

func TestBurstCappedByMaxPopulation(t *testing.T) {
	zone := denZone()
	zone.InitialSpawnCount = 10
	zone.MaxPopulation = 4

	world := physics.NewHeightmapWorld(nil)
	player := &model.Entity{Kind: model.KindPlayer, Position: zone.Center}
	spawner := newCounterSpawner()

	c := NewController(testContent(zone), world, player, 1, spawner.spawn)
	c.Tick(0.05)

	pop, _ := c.ZonePopulation("wolf_den")
	assert.Equal(t, 4, pop)
}

func TestRespawnPacingUpToMax(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	player := &model.Entity{Kind: model.KindPlayer, Position: model.Vec3{X: 40, Z: -25}}
	spawner := newCounterSpawner()

	c := NewController(testContent(denZone()), world, player, 1, spawner.spawn)
	c.Tick(1) // activation burst: population 3

	// One respawn per 5 seconds: 3 -> 4 -> 5 -> 6, then the cap holds.
	for range 30 {
		c.Tick(1)
	}

	pop, _ := c.ZonePopulation("wolf_den")
	assert.Equal(t, 6, pop)
	assert.Equal(t, 6, spawner.total, "no spawn attempts past max population")
}

func TestOutsideActivationRadiusStaysInactive(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	player := &model.Entity{Kind: model.KindPlayer, Position: model.Vec3{X: 500}}
	spawner := newCounterSpawner()

	c := NewController(testContent(denZone()), world, player, 1, spawner.spawn)
	for range 100 {
		c.Tick(1)
	}

	active, _ := c.ZoneActive("wolf_den")
	assert.False(t, active)
	assert.Zero(t, spawner.total)
}

func TestDeactivationStopsRespawnsKeepsEnemies(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	player := &model.Entity{Kind: model.KindPlayer, Position: model.Vec3{X: 40, Z: -25}}
	spawner := newCounterSpawner()

	c := NewController(testContent(denZone()), world, player, 1, spawner.spawn)
	c.Tick(0.05)
	require.Equal(t, 3, spawner.total)

	player.Position = model.Vec3{X: 500}
	for range 30 {
		c.Tick(1)
	}

	active, _ := c.ZoneActive("wolf_den")
	assert.False(t, active)
	assert.Equal(t, 3, spawner.total, "no respawns while inactive")

	pop, _ := c.ZonePopulation("wolf_den")
	assert.Equal(t, 3, pop, "spawned enemies are not despawned on exit")
}

func TestReactivationBurstsOnlyMissingSlots(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	player := &model.Entity{Kind: model.KindPlayer, Position: model.Vec3{X: 40, Z: -25}}
	spawner := newCounterSpawner()

	c := NewController(testContent(denZone()), world, player, 1, spawner.spawn)
	c.Tick(0.05)

	// Leave, lose one enemy, return: the burst only tops back up to the
	// initial count.
	player.Position = model.Vec3{X: 500}
	c.Tick(0.05)
	c.OnEnemyDied(1)

	player.Position = model.Vec3{X: 40, Z: -25}
	c.Tick(0.05)

	pop, _ := c.ZonePopulation("wolf_den")
	assert.Equal(t, 5, pop, "2 survivors + fresh burst of 3")
}

func TestOnEnemyDiedFreesSlot(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	player := &model.Entity{Kind: model.KindPlayer, Position: model.Vec3{X: 40, Z: -25}}
	spawner := newCounterSpawner()

	c := NewController(testContent(denZone()), world, player, 1, spawner.spawn)
	c.Tick(0.05)

	c.OnEnemyDied(1)
	pop, _ := c.ZonePopulation("wolf_den")
	assert.Equal(t, 2, pop)

	// Unknown and repeated ids are ignored.
	c.OnEnemyDied(1)
	c.OnEnemyDied(999)
	pop, _ = c.ZonePopulation("wolf_den")
	assert.Equal(t, 2, pop)
}

func TestWeightedPickDrawsAllPositiveEntries(t *testing.T) {
	zone := denZone()
	zone.MaxPopulation = 200
	zone.InitialSpawnCount = 200
	zone.SpawnList = []data.WeightedSpawn{
		{EnemyID: "frost_wolf", Weight: 5},
		{EnemyID: "snow_stalker", Weight: 1},
		{EnemyID: "frost_wolf", Weight: 0}, // never drawn
	}

	world := physics.NewHeightmapWorld(nil)
	player := &model.Entity{Kind: model.KindPlayer, Position: zone.Center}
	spawner := newCounterSpawner()

	c := NewController(testContent(zone), world, player, 1, spawner.spawn)
	c.Tick(0.05)

	assert.Equal(t, 200, spawner.total)
	assert.Greater(t, spawner.byType["frost_wolf"], spawner.byType["snow_stalker"])
	assert.Positive(t, spawner.byType["snow_stalker"])
}

func TestPickEnemyNeverDrawsZeroWeightFallback(t *testing.T) {
	// totalWeight is inflated past the real sum so most draws exhaust the
	// cumulative loop and land in the fallback path. A trailing zero-weight
	// row must stay unreachable either way.
	zone := &zoneState{
		def: data.ZoneDef{
			ID: "wolf_den",
			SpawnList: []data.WeightedSpawn{
				{EnemyID: "frost_wolf", Weight: 1},
				{EnemyID: "snow_stalker", Weight: 0},
			},
		},
		totalWeight: 100,
	}
	c := &Controller{}

	for range 200 {
		assert.Equal(t, "frost_wolf", c.pickEnemy(zone))
	}
}

func TestNoGroundAbortsAttempt(t *testing.T) {
	// Terrain rejects every sample; attempts fail without counting.
	world := physics.NewHeightmapWorld(func(x, z float64) (float64, bool) {
		return 0, false
	})
	player := &model.Entity{Kind: model.KindPlayer, Position: model.Vec3{X: 40, Z: -25}}
	spawner := newCounterSpawner()

	c := NewController(testContent(denZone()), world, player, 1, spawner.spawn)
	c.Tick(0.05)

	pop, _ := c.ZonePopulation("wolf_den")
	assert.Zero(t, pop)
	assert.Zero(t, spawner.total)
}

func TestNilSpawnResultDoesNotCount(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	player := &model.Entity{Kind: model.KindPlayer, Position: model.Vec3{X: 40, Z: -25}}

	c := NewController(testContent(denZone()), world, player, 1,
		func(def *data.EnemyDef, pos model.Vec3) *model.Entity { return nil })
	c.Tick(0.05)

	pop, _ := c.ZonePopulation("wolf_den")
	assert.Zero(t, pop)
}

func TestZeroWeightZoneIsSkipped(t *testing.T) {
	zone := denZone()
	zone.SpawnList = []data.WeightedSpawn{{EnemyID: "frost_wolf", Weight: 0}}

	world := physics.NewHeightmapWorld(nil)
	player := &model.Entity{Kind: model.KindPlayer, Position: zone.Center}

	c := NewController(testContent(zone), world, player, 1, newCounterSpawner().spawn)

	_, ok := c.ZonePopulation("wolf_den")
	assert.False(t, ok, "zone without positive weights is dropped at build time")
}

func TestDifficultyWidensActivation(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	// 90 units out: past the base radius of 60, inside 60*sqrt(4) = 120.
	player := &model.Entity{Kind: model.KindPlayer, Position: model.Vec3{X: 40, Z: 65}}
	spawner := newCounterSpawner()

	base := NewController(testContent(denZone()), world, player, 1, spawner.spawn)
	base.Tick(0.05)
	active, _ := base.ZoneActive("wolf_den")
	assert.False(t, active)

	hard := NewController(testContent(denZone()), world, player, 4, spawner.spawn)
	hard.Tick(0.05)
	active, _ = hard.ZoneActive("wolf_den")
	assert.True(t, active)
}
