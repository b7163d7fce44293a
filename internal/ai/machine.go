package ai

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/ashmelev/frostline/internal/data"
	"github.com/ashmelev/frostline/internal/model"
	"github.com/ashmelev/frostline/internal/physics"
	"github.com/ashmelev/frostline/internal/stat"
)

// AttackFunc executes the enemy's attack against the target (raycast plus
// damage). Injected by the combat resolver wiring to avoid an import cycle.
type AttackFunc func(attacker, target *model.Entity)

// AnimationFunc signals the render side to play an animation clip.
// Injected by the orchestrator. Nil disables animation signals.
type AnimationFunc func(enemy *model.Entity, clip string)

// Tuning holds the gameplay constants shared by all machines.
type Tuning struct {
	// Hysteresis widens the perception check for leaving StateAttacking so
	// the state does not flicker at the range boundary.
	Hysteresis float64

	// AttackDamageDelay is the time between attack start and the single
	// damage application, seconds.
	AttackDamageDelay float64
}

// DefaultTuning returns the stock gameplay constants.
func DefaultTuning() Tuning {
	return Tuning{Hysteresis: 1.2, AttackDamageDelay: 0.5}
}

const (
	wanderSampleAttempts = 10
	arriveDistanceSq     = 0.25
	headHeight           = 1.5 // attack rays originate near head height
)

// Machine drives one enemy's behavior. All timers advance by the explicit
// tick delta; the machine owns its enemy's body transform while the player
// body belongs to the player-control collaborator.
type Machine struct {
	enemy  *model.Entity
	player *model.Entity // weak target reference, never owned
	world  physics.World
	params data.AIParams
	tuning Tuning

	state  State
	target *model.Entity

	dwellTimer     float64
	attackCooldown float64

	wanderTarget    model.Vec3
	hasWanderTarget bool
	wanderTimer     float64

	attackDamageApplied bool
	attackElapsed       float64

	attackFunc AttackFunc
	animFunc   AnimationFunc
	animations map[string]string
}

// NewMachine creates a state machine for one enemy. Entry state is IDLE with
// a fresh random dwell timer.
func NewMachine(
	enemy *model.Entity,
	player *model.Entity,
	world physics.World,
	params data.AIParams,
	tuning Tuning,
	attackFunc AttackFunc,
) *Machine {
	m := &Machine{
		enemy:      enemy,
		player:     player,
		world:      world,
		params:     params,
		tuning:     tuning,
		attackFunc: attackFunc,
	}
	m.enterIdle()
	return m
}

// SetAnimationFunc sets the animation signal callback.
func (m *Machine) SetAnimationFunc(fn AnimationFunc, animations map[string]string) {
	m.animFunc = fn
	m.animations = animations
}

// State returns the current behavior state.
func (m *Machine) State() State {
	return m.state
}

// Enemy returns the driven entity.
func (m *Machine) Enemy() *model.Entity {
	return m.enemy
}

// Target returns the current target entity, or nil.
func (m *Machine) Target() *model.Entity {
	return m.target
}

// Tick evaluates transitions and movement for one simulation step.
func (m *Machine) Tick(delta float64) {
	if m.state == StateDead {
		return
	}

	// Death overrides everything: halt once and stop processing.
	if m.enemy.Health.IsDead() {
		m.enterDead()
		return
	}

	if m.attackCooldown > 0 {
		m.attackCooldown -= delta
	}

	playerAlive := m.player != nil && m.player.Alive()
	distSq := math.Inf(1)
	if playerAlive {
		distSq = m.enemy.Position.DistanceSquared(m.player.Position)
	}

	perception := m.enemy.Stats.Current(stat.PerceptionRange)
	perceptionSq := perception * perception
	attackRange := m.enemy.Stats.Current(stat.AttackRange)
	attackRangeSq := attackRange * attackRange

	if m.state == StateAttacking {
		m.thinkAttacking(delta, playerAlive, distSq, perceptionSq, attackRangeSq)
		return
	}

	// Perception check: detection always routes through CHASING, even when
	// the player is already inside attack range.
	if playerAlive && distSq < perceptionSq {
		m.enterChasing()

		if distSq < attackRangeSq && m.attackCooldown <= 0 {
			m.enterAttacking()
			return
		}

		m.moveToward(m.player.Position, m.enemy.Stats.Current(stat.RunSpeed), delta)
		return
	}

	switch m.state {
	case StateIdle:
		m.thinkIdle(delta)
	case StateWandering:
		m.thinkWandering(delta)
	default:
		// Was chasing (or anything unhandled) and the player is gone:
		// fall back to idle with a cleared target.
		m.enterIdle()
	}
}

// thinkAttacking runs the attack cycle: hysteresis exit, the one delayed
// damage application, and cooldown-driven re-evaluation.
func (m *Machine) thinkAttacking(delta float64, playerAlive bool, distSq, perceptionSq, attackRangeSq float64) {
	if !playerAlive {
		m.enterIdle()
		return
	}

	h := m.tuning.Hysteresis
	if distSq > perceptionSq*h*h {
		m.enterIdle()
		return
	}

	m.face(m.player.Position)

	m.attackElapsed += delta
	if !m.attackDamageApplied && m.attackElapsed >= m.tuning.AttackDamageDelay {
		// One attempt per attack cycle. Range is re-checked at this instant
		// because the target may have moved since the swing started.
		m.attackDamageApplied = true
		if distSq <= attackRangeSq && m.attackFunc != nil {
			m.attackFunc(m.enemy, m.player)
		}
	}

	if m.attackCooldown <= 0 {
		if distSq < perceptionSq {
			m.enterChasing()
		} else {
			m.enterIdle()
		}
	}
}

// thinkIdle counts down the dwell timer and hands off to wandering.
func (m *Machine) thinkIdle(delta float64) {
	m.halt()

	m.dwellTimer -= delta
	if m.dwellTimer <= 0 {
		m.enterWandering()
	}
}

// thinkWandering walks toward the wander target until arrival or timeout.
func (m *Machine) thinkWandering(delta float64) {
	if !m.hasWanderTarget {
		m.enterIdle()
		return
	}

	m.wanderTimer -= delta
	if m.wanderTimer <= 0 {
		m.enterIdle()
		return
	}

	m.moveToward(m.wanderTarget, m.enemy.Stats.Current(stat.Speed), delta)

	if m.enemy.Position.HorizontalDistanceSquared(m.wanderTarget) < arriveDistanceSq {
		m.enterIdle()
	}
}

func (m *Machine) enterIdle() {
	m.setState(StateIdle)
	m.target = nil
	m.hasWanderTarget = false
	m.dwellTimer = randomRange(m.params.IdleMin, m.params.IdleMax)
	m.halt()
}

// enterWandering samples up to wanderSampleAttempts random polar offsets and
// keeps the first one the terrain accepts. No valid ground → back to idle.
func (m *Machine) enterWandering() {
	pos := m.enemy.Position

	for range wanderSampleAttempts {
		angle := rand.Float64() * 2 * math.Pi
		r := rand.Float64() * m.params.WanderRadius
		x := pos.X + math.Sin(angle)*r
		z := pos.Z + math.Cos(angle)*r

		y, ok := m.world.GetHeightAt(x, z)
		if !ok {
			continue
		}

		m.wanderTarget = model.Vec3{X: x, Y: y, Z: z}
		m.hasWanderTarget = true
		m.wanderTimer = randomRange(m.params.WanderDurationMin, m.params.WanderDurationMax)
		m.setState(StateWandering)
		return
	}

	m.enterIdle()
}

func (m *Machine) enterChasing() {
	m.target = m.player
	m.setState(StateChasing)
}

// enterAttacking starts a fresh attack cycle: animation signal, cooldown,
// and a cleared damage-applied flag.
func (m *Machine) enterAttacking() {
	m.target = m.player
	m.setState(StateAttacking)
	m.attackCooldown = m.params.AttackCooldown
	m.attackDamageApplied = false
	m.attackElapsed = 0
	m.halt()
	m.face(m.player.Position)

	if m.animFunc != nil {
		clip := m.animations["attack"]
		if clip == "" {
			clip = "attack"
		}
		m.animFunc(m.enemy, clip)
	}
}

// enterDead halts the body once and locks the machine. Dead enemies receive
// no further movement or orientation updates.
func (m *Machine) enterDead() {
	m.setState(StateDead)
	m.target = nil
	m.halt()
}

func (m *Machine) setState(next State) {
	if m.state == next {
		return
	}
	prev := m.state
	m.state = next

	if IsDebugEnabled() {
		slog.Debug("AI state changed",
			"enemy", m.enemy.Name,
			"id", m.enemy.ID,
			"from", prev,
			"to", next)
	}
}

// moveToward advances the enemy horizontally at the given speed, snaps it to
// terrain height, faces the destination, and pushes the body transform.
func (m *Machine) moveToward(dest model.Vec3, speed float64, delta float64) {
	pos := m.enemy.Position
	dir := model.Vec3{X: dest.X - pos.X, Z: dest.Z - pos.Z}
	length := dir.Length()
	if length == 0 {
		return
	}

	step := speed * delta
	if step > length {
		step = length
	}
	pos = pos.Add(dir.Scale(step / length))

	if y, ok := m.world.GetHeightAt(pos.X, pos.Z); ok {
		pos.Y = y
	}

	m.enemy.Position = pos
	m.enemy.Heading = m.enemy.Position.YawTo(dest)
	m.pushTransform()
}

// face orients the enemy toward a point without moving it.
func (m *Machine) face(at model.Vec3) {
	m.enemy.Heading = m.enemy.Position.YawTo(at)
	m.pushTransform()
}

// halt pins the body at the current position, zeroing any residual velocity.
func (m *Machine) halt() {
	m.pushTransform()
}

func (m *Machine) pushTransform() {
	if m.enemy.Body != 0 {
		m.world.SetBodyTransform(m.enemy.Body, m.enemy.Position, m.enemy.Heading)
	}
}

// AttackRayOrigin returns the point near head height an attack ray starts from.
func AttackRayOrigin(attacker *model.Entity) model.Vec3 {
	origin := attacker.Position
	origin.Y += headHeight
	return origin
}

func randomRange(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rand.Float64()*(max-min)
}
