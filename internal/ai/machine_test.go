package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashmelev/frostline/internal/data"
	"github.com/ashmelev/frostline/internal/health"
	"github.com/ashmelev/frostline/internal/model"
	"github.com/ashmelev/frostline/internal/physics"
	"github.com/ashmelev/frostline/internal/stat"
)

func testParams() data.AIParams {
	return data.AIParams{
		IdleMin:           1,
		IdleMax:           1,
		WanderRadius:      5,
		WanderDurationMin: 2,
		WanderDurationMax: 2,
		AttackCooldown:    2,
	}
}

func testEnemy(world *physics.HeightmapWorld, pos model.Vec3) *model.Entity {
	var base stat.ValueSet
	base[stat.Speed] = 2
	base[stat.RunSpeed] = 6
	base[stat.Damage] = 8
	base[stat.AttackRange] = 2
	base[stat.PerceptionRange] = 15
	base[stat.MaxHealth] = 60

	e := &model.Entity{
		Kind:     model.KindEnemy,
		Name:     "wolf",
		Position: pos,
		Stats:    stat.NewModel(base),
		Health:   health.NewTracker(60),
	}
	e.Body = world.CreateBody(physics.BodyOptions{
		Shape:      physics.ShapeCapsule,
		Dimensions: model.Vec3{X: 0.5, Y: 1.1},
		Position:   pos,
	})
	return e
}

func testPlayer(pos model.Vec3) *model.Entity {
	var base stat.ValueSet
	base[stat.MaxHealth] = 100

	return &model.Entity{
		Kind:     model.KindPlayer,
		Name:     "player",
		Position: pos,
		Stats:    stat.NewModel(base),
		Health:   health.NewTracker(100),
	}
}

func TestEntryStateIsIdle(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 100})
	player := testPlayer(model.Vec3{})

	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(), nil)

	assert.Equal(t, StateIdle, m.State())
	assert.Nil(t, m.Target())
}

func TestPerceptionTriggersChaseInOneTick(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 10}) // inside perception 15
	player := testPlayer(model.Vec3{})

	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(), nil)
	m.Tick(0.1)

	assert.Equal(t, StateChasing, m.State())
	assert.Same(t, player, m.Target())

	// Moved toward the player at run speed: 6 * 0.1 = 0.6.
	assert.InDelta(t, 9.4, enemy.Position.Z, 1e-9)

	// Body transform follows the entity.
	pos, ok := world.BodyPosition(enemy.Body)
	require.True(t, ok)
	assert.InDelta(t, 9.4, pos.Z, 1e-9)
}

func TestOutOfPerceptionStaysIdle(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 30})
	player := testPlayer(model.Vec3{})

	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(), nil)
	m.Tick(0.1)

	assert.Equal(t, StateIdle, m.State())
	assert.InDelta(t, 30, enemy.Position.Z, 1e-9)
}

func TestChaseBecomesAttackInRange(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 1.5}) // inside attack range 2
	player := testPlayer(model.Vec3{})

	clips := []string{}
	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(), nil)
	m.SetAnimationFunc(func(e *model.Entity, clip string) {
		clips = append(clips, clip)
	}, map[string]string{"attack": "wolf_bite"})

	m.Tick(0.1)

	assert.Equal(t, StateAttacking, m.State())
	assert.Equal(t, []string{"wolf_bite"}, clips)
}

func TestAttackAppliesDamageOncePerCycle(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 1.5})
	player := testPlayer(model.Vec3{})

	attacks := 0
	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(),
		func(attacker, target *model.Entity) { attacks++ })

	m.Tick(0.1) // enters ATTACKING
	require.Equal(t, StateAttacking, m.State())
	assert.Equal(t, 0, attacks, "damage is delayed, not instant")

	// 0.4s elapsed: still before the 0.5s damage point.
	for range 4 {
		m.Tick(0.1)
	}
	assert.Equal(t, 0, attacks)

	// Crossing 0.5s applies damage exactly once.
	m.Tick(0.1)
	assert.Equal(t, 1, attacks)

	// Rest of the cooldown window: no second application.
	for range 10 {
		m.Tick(0.1)
	}
	assert.Equal(t, 1, attacks)
	assert.Equal(t, StateAttacking, m.State())
}

func TestAttackSkipsDamageWhenTargetLeftRange(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 1.5})
	player := testPlayer(model.Vec3{})

	attacks := 0
	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(),
		func(attacker, target *model.Entity) { attacks++ })

	m.Tick(0.1)
	require.Equal(t, StateAttacking, m.State())

	// Target steps out of attack range (but stays inside perception) before
	// the damage point: the swing whiffs.
	player.Position = model.Vec3{Z: -4}
	for range 6 {
		m.Tick(0.1)
	}

	assert.Equal(t, 0, attacks)
	assert.Equal(t, StateAttacking, m.State())
}

func TestAttackCooldownExpiryReevaluates(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 1.5})
	player := testPlayer(model.Vec3{})

	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(), nil)

	m.Tick(0.25)
	require.Equal(t, StateAttacking, m.State())

	// Ride out the 2s cooldown; player still adjacent, so the machine drops
	// back to CHASING and opens a fresh attack on the following tick.
	for range 8 {
		m.Tick(0.25)
	}
	assert.Equal(t, StateChasing, m.State())

	m.Tick(0.25)
	assert.Equal(t, StateAttacking, m.State())
}

func TestAttackHysteresisExit(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 1.5})
	player := testPlayer(model.Vec3{})

	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(), nil)
	m.Tick(0.1)
	require.Equal(t, StateAttacking, m.State())

	// Perception 15, hysteresis 1.2: the exit boundary sits at distance 18
	// from the enemy, not at the raw perception range.
	player.Position = model.Vec3{Z: 17} // 15.5 away: outside perception, inside boundary
	m.Tick(0.1)
	assert.Equal(t, StateAttacking, m.State(), "inside hysteresis boundary")

	player.Position = model.Vec3{Z: 25} // 23.5 away: past the boundary
	m.Tick(0.1)
	assert.Equal(t, StateIdle, m.State())
	assert.Nil(t, m.Target())
}

func TestDeadIsTerminal(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 1.5})
	player := testPlayer(model.Vec3{})

	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(), nil)

	enemy.Health.TakeDamage(999)
	m.Tick(0.1)
	assert.Equal(t, StateDead, m.State())

	// Player proximity no longer matters; the machine never leaves DEAD.
	pos := enemy.Position
	for range 50 {
		m.Tick(0.1)
	}
	assert.Equal(t, StateDead, m.State())
	assert.Equal(t, pos, enemy.Position)
}

func TestIdleDwellLeadsToWandering(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 100}) // far from player
	player := testPlayer(model.Vec3{})

	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(), nil)

	// Dwell timer is exactly 1s with IdleMin == IdleMax == 1.
	for range 4 {
		m.Tick(0.25)
	}
	assert.Equal(t, StateWandering, m.State())
}

func TestWanderFallsBackToIdleWithoutGround(t *testing.T) {
	// Terrain rejects every sample: wandering is impossible.
	world := physics.NewHeightmapWorld(func(x, z float64) (float64, bool) {
		return 0, false
	})
	enemy := testEnemy(world, model.Vec3{Z: 100})
	player := testPlayer(model.Vec3{})

	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(), nil)

	for range 15 {
		m.Tick(0.1)
	}
	assert.Equal(t, StateIdle, m.State())
}

func TestWanderTimesOutToIdle(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 100})
	player := testPlayer(model.Vec3{})

	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(), nil)

	for range 4 {
		m.Tick(0.25)
	}
	require.Equal(t, StateWandering, m.State())

	// Wander duration is fixed at 2s; arrival may end the walk earlier.
	// Either way the machine returns to IDLE within the duration window.
	reachedIdle := false
	for range 9 {
		m.Tick(0.25)
		if m.State() == StateIdle {
			reachedIdle = true
			break
		}
	}
	assert.True(t, reachedIdle)
}

func TestChasingLostPlayerFallsBackToIdle(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 10})
	player := testPlayer(model.Vec3{})

	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(), nil)
	m.Tick(0.1)
	require.Equal(t, StateChasing, m.State())

	player.Position = model.Vec3{Z: 200}
	m.Tick(0.1)

	assert.Equal(t, StateIdle, m.State())
	assert.Nil(t, m.Target())
}

func TestDeadPlayerIsIgnored(t *testing.T) {
	world := physics.NewHeightmapWorld(nil)
	enemy := testEnemy(world, model.Vec3{Z: 5})
	player := testPlayer(model.Vec3{})
	player.Health.TakeDamage(999)

	m := NewMachine(enemy, player, world, testParams(), DefaultTuning(), nil)
	m.Tick(0.1)

	assert.Equal(t, StateIdle, m.State())
}
