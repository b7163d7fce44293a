package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashmelev/frostline/internal/ability"
	"github.com/ashmelev/frostline/internal/data"
	"github.com/ashmelev/frostline/internal/health"
	"github.com/ashmelev/frostline/internal/model"
	"github.com/ashmelev/frostline/internal/physics"
	"github.com/ashmelev/frostline/internal/stat"
)

type fixture struct {
	world    *physics.HeightmapWorld
	registry *model.Registry
	content  *data.Registry
	resolver *Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	content := data.NewRegistry()
	require.NoError(t, content.AddAbility(&data.AbilityDef{
		ID: "power_strike", Kind: data.AbilityAttack, Cooldown: 6, DamageMultiplier: 2.5,
	}))
	require.NoError(t, content.AddAbility(&data.AbilityDef{
		ID: "adrenaline", Kind: data.AbilityBuff, Cooldown: 30, Duration: 10, SpeedBonus: 3,
	}))
	content.AddItem(&data.ItemDef{ID: "wolf_pelt", Name: "Wolf Pelt", Stackable: true})

	world := physics.NewHeightmapWorld(nil)
	registry := model.NewRegistry()

	return &fixture{
		world:    world,
		registry: registry,
		content:  content,
		resolver: NewResolver(world, registry, content),
	}
}

func (f *fixture) addPlayer(pos model.Vec3) *model.Entity {
	var base stat.ValueSet
	base[stat.Speed] = 5
	base[stat.Damage] = 10
	base[stat.AttackRange] = 2.5
	base[stat.MaxHealth] = 100

	p := &model.Entity{
		Kind:      model.KindPlayer,
		Name:      "player",
		Position:  pos,
		Stats:     stat.NewModel(base),
		Health:    health.NewTracker(100),
		Abilities: ability.NewSet(),
	}
	p.Body = f.world.CreateBody(physics.BodyOptions{
		Shape:      physics.ShapeCapsule,
		Dimensions: model.Vec3{X: 0.4, Y: 1.8},
		Position:   pos,
	})
	f.registry.Add(p)
	return p
}

func (f *fixture) addEnemy(pos model.Vec3, maxHealth float64) *model.Entity {
	var base stat.ValueSet
	base[stat.Damage] = 8
	base[stat.AttackRange] = 2
	base[stat.MaxHealth] = maxHealth

	e := &model.Entity{
		Kind:     model.KindEnemy,
		Name:     "wolf",
		Position: pos,
		Stats:    stat.NewModel(base),
		Health:   health.NewTracker(maxHealth),
	}
	e.Body = f.world.CreateBody(physics.BodyOptions{
		Shape:      physics.ShapeCapsule,
		Dimensions: model.Vec3{X: 0.5, Y: 1.8},
		Position:   pos,
	})
	f.registry.Add(e)
	return e
}

func (f *fixture) addNode(pos model.Vec3, hp float64, loot []model.LootEntry) *model.Entity {
	n := &model.Entity{
		Kind:     model.KindResourceNode,
		Name:     "pine",
		Position: pos,
		Health:   health.NewTracker(hp),
		Loot:     loot,
	}
	n.Body = f.world.CreateBody(physics.BodyOptions{
		Shape:      physics.ShapeBox,
		Dimensions: model.Vec3{X: 1, Y: 1.5, Z: 1},
		Position:   pos,
	})
	f.registry.Add(n)
	return n
}

func headRay(from model.Vec3, length float64) (model.Vec3, model.Vec3) {
	origin := from
	origin.Y += 1.5
	end := origin.Add(model.Vec3{Z: length})
	return origin, end
}

func TestResolveAttackHitsEnemy(t *testing.T) {
	f := newFixture(t)
	player := f.addPlayer(model.Vec3{})
	enemy := f.addEnemy(model.Vec3{Z: 2}, 60)

	origin, end := headRay(player.Position, 2.5)
	result := f.resolver.ResolveAttack(player, origin, end)

	assert.Equal(t, OutcomeHit, result.Outcome)
	assert.Same(t, enemy, result.Target)
	assert.InDelta(t, 10, result.Damage, 1e-9)
	assert.InDelta(t, 50, enemy.Health.Current(), 1e-9)
}

func TestResolveAttackKills(t *testing.T) {
	f := newFixture(t)
	player := f.addPlayer(model.Vec3{})
	enemy := f.addEnemy(model.Vec3{Z: 2}, 5)

	origin, end := headRay(player.Position, 2.5)
	result := f.resolver.ResolveAttack(player, origin, end)

	assert.Equal(t, OutcomeKilled, result.Outcome)
	assert.True(t, enemy.Health.IsDead())

	// The corpse stays registered; cleanup is the orchestrator's job.
	_, ok := f.registry.Get(enemy.ID)
	assert.True(t, ok)
}

func TestResolveAttackMiss(t *testing.T) {
	f := newFixture(t)
	player := f.addPlayer(model.Vec3{})
	f.addEnemy(model.Vec3{Z: 50}, 60) // out of reach

	origin, end := headRay(player.Position, 2.5)
	result := f.resolver.ResolveAttack(player, origin, end)

	assert.Equal(t, OutcomeMiss, result.Outcome)
	assert.Nil(t, result.Target)
}

func TestResolveAttackWithoutStatsAborts(t *testing.T) {
	f := newFixture(t)
	bare := &model.Entity{Kind: model.KindPlayer}

	result := f.resolver.ResolveAttack(bare, model.Vec3{}, model.Vec3{Z: 5})
	assert.Equal(t, OutcomeAborted, result.Outcome)
}

func TestResourceNodeDepletesIntoLoot(t *testing.T) {
	f := newFixture(t)
	player := f.addPlayer(model.Vec3{})
	node := f.addNode(model.Vec3{Z: 2}, 10, []model.LootEntry{
		{ItemID: "wolf_pelt", MinCount: 2, MaxCount: 2, Chance: 1},
	})

	origin, end := headRay(player.Position, 2.5)
	result := f.resolver.ResolveAttack(player, origin, end)
	require.Equal(t, OutcomeDepleted, result.Outcome)

	// The node is gone from both registry and physics.
	_, ok := f.registry.Get(node.ID)
	assert.False(t, ok)

	pickups := 0
	f.registry.ForEach(func(e *model.Entity) bool {
		if e.Kind == model.KindCollectable {
			pickups++
			assert.Equal(t, "wolf_pelt", e.ItemID)
		}
		return true
	})
	assert.Equal(t, 2, pickups)
}

func TestEnemyAttackDamagesPlayer(t *testing.T) {
	f := newFixture(t)
	player := f.addPlayer(model.Vec3{})
	enemy := f.addEnemy(model.Vec3{Z: 1.5}, 60)

	f.resolver.ResolveEnemyAttack(enemy, player)

	assert.InDelta(t, 92, player.Health.Current(), 1e-9)
}

func TestEnemyAttackBlockedByObstacle(t *testing.T) {
	f := newFixture(t)
	player := f.addPlayer(model.Vec3{})
	enemy := f.addEnemy(model.Vec3{Z: 1.9}, 60)

	// A node sits between the two; the ray resolves to it, not the player.
	f.addNode(model.Vec3{Z: 1}, 100, nil)

	f.resolver.ResolveEnemyAttack(enemy, player)

	assert.InDelta(t, 100, player.Health.Current(), 1e-9)
}

func TestCastAttackAbilityMultipliesDamage(t *testing.T) {
	f := newFixture(t)
	player := f.addPlayer(model.Vec3{})
	player.Abilities.Learn("power_strike")
	enemy := f.addEnemy(model.Vec3{Z: 2}, 60)

	player.Heading = 0 // facing +Z
	ok := f.resolver.ResolveAbilityCast(player, "power_strike")

	require.True(t, ok)
	// 10 base damage * 2.5 multiplier.
	assert.InDelta(t, 35, enemy.Health.Current(), 1e-9)
	assert.False(t, player.Abilities.Ready("power_strike"))
}

func TestCastBuffAbilityAppliesTimedModifier(t *testing.T) {
	f := newFixture(t)
	player := f.addPlayer(model.Vec3{})
	player.Abilities.Learn("adrenaline")

	ok := f.resolver.ResolveAbilityCast(player, "adrenaline")

	require.True(t, ok)
	assert.InDelta(t, 8, player.Stats.Current(stat.Speed), 1e-9)

	// The buff runs out with simulation time.
	for range 20 {
		player.Stats.Tick(0.5)
	}
	assert.InDelta(t, 5, player.Stats.Current(stat.Speed), 1e-9)
}

func TestCastRejectedCases(t *testing.T) {
	f := newFixture(t)
	player := f.addPlayer(model.Vec3{})
	player.Abilities.Learn("power_strike")

	assert.False(t, f.resolver.ResolveAbilityCast(player, "fireball"), "unknown ability")
	assert.False(t, f.resolver.ResolveAbilityCast(player, "adrenaline"), "not learned")

	require.True(t, f.resolver.ResolveAbilityCast(player, "power_strike"))
	assert.False(t, f.resolver.ResolveAbilityCast(player, "power_strike"), "on cooldown")
}

func TestSpawnLootChanceAndCount(t *testing.T) {
	f := newFixture(t)

	var notified []*model.Entity
	f.resolver.SetPickupFunc(func(p *model.Entity) {
		notified = append(notified, p)
	})

	pickups := f.resolver.SpawnLoot([]model.LootEntry{
		{ItemID: "wolf_pelt", MinCount: 3, MaxCount: 3, Chance: 1},
		{ItemID: "wolf_pelt", MinCount: 1, MaxCount: 1, Chance: 0}, // never drops
	}, model.Vec3{X: 10, Z: 10})

	assert.Len(t, pickups, 3)
	assert.Len(t, notified, 3)

	for _, p := range pickups {
		assert.Equal(t, model.KindCollectable, p.Kind)
		assert.NotZero(t, p.Body)

		// Body is indexed so the pickup can be raycast-targeted.
		got, ok := f.registry.GetByBody(p.Body)
		require.True(t, ok)
		assert.Same(t, p, got)
	}
}

func TestSpawnLootUnknownItemSkipped(t *testing.T) {
	f := newFixture(t)

	pickups := f.resolver.SpawnLoot([]model.LootEntry{
		{ItemID: "unobtainium", MinCount: 1, MaxCount: 1, Chance: 1},
	}, model.Vec3{})

	assert.Empty(t, pickups)
}

func TestSpawnLootNoGroundSkipped(t *testing.T) {
	content := data.NewRegistry()
	content.AddItem(&data.ItemDef{ID: "wolf_pelt", Name: "Wolf Pelt"})

	world := physics.NewHeightmapWorld(func(x, z float64) (float64, bool) {
		return 0, false
	})
	resolver := NewResolver(world, model.NewRegistry(), content)

	pickups := resolver.SpawnLoot([]model.LootEntry{
		{ItemID: "wolf_pelt", MinCount: 1, MaxCount: 1, Chance: 1},
	}, model.Vec3{})

	assert.Empty(t, pickups)
}

func TestRemovePickupIsIdempotent(t *testing.T) {
	f := newFixture(t)

	pickups := f.resolver.SpawnLoot([]model.LootEntry{
		{ItemID: "wolf_pelt", MinCount: 1, MaxCount: 1, Chance: 1},
	}, model.Vec3{})
	require.Len(t, pickups, 1)
	pickup := pickups[0]

	f.resolver.RemovePickup(pickup)
	f.resolver.RemovePickup(pickup) // collect and timed despawn may race

	_, ok := f.registry.Get(pickup.ID)
	assert.False(t, ok)
}

func TestRollCount(t *testing.T) {
	assert.Equal(t, 1, rollCount(0, 0))
	assert.Equal(t, 2, rollCount(2, 2))
	assert.Equal(t, 3, rollCount(3, 1), "max below min falls back to min")

	for range 50 {
		got := rollCount(1, 3)
		assert.GreaterOrEqual(t, got, 1)
		assert.LessOrEqual(t, got, 3)
	}
}
