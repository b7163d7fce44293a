package combat

import (
	"log/slog"
	"math"

	"github.com/ashmelev/frostline/internal/data"
	"github.com/ashmelev/frostline/internal/model"
	"github.com/ashmelev/frostline/internal/physics"
	"github.com/ashmelev/frostline/internal/stat"
)

// Outcome classifies the result of one resolved attack.
type Outcome uint8

const (
	OutcomeMiss Outcome = iota
	OutcomeBlocked // hit something non-damageable
	OutcomeHit
	OutcomeKilled
	OutcomeDepleted // resource node converted to loot
	OutcomeAborted  // missing dependency, nothing applied
)

// String returns human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeMiss:
		return "MISS"
	case OutcomeBlocked:
		return "BLOCKED"
	case OutcomeHit:
		return "HIT"
	case OutcomeKilled:
		return "KILLED"
	case OutcomeDepleted:
		return "DEPLETED"
	case OutcomeAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Result reports what an attack resolution did.
type Result struct {
	Outcome Outcome
	Target  *model.Entity // nil unless a registered entity was hit
	Damage  float64       // final damage before reduction
}

// PickupFunc is called for every loot pickup entity spawned, letting the
// orchestrator schedule its despawn. Nil disables the notification.
type PickupFunc func(pickup *model.Entity)

const rayHeadHeight = 1.5

// Resolver turns raycast hits and ability casts into damage, depletion, and
// loot. It never mutates entities on a failed precondition: an attack either
// fully applies or is abandoned with a diagnostic.
type Resolver struct {
	world    physics.World
	registry *model.Registry
	content  *data.Registry

	onPickup PickupFunc
}

// NewResolver creates a combat resolver.
func NewResolver(world physics.World, registry *model.Registry, content *data.Registry) *Resolver {
	return &Resolver{
		world:    world,
		registry: registry,
		content:  content,
	}
}

// SetPickupFunc sets the pickup-spawned callback.
func (r *Resolver) SetPickupFunc(fn PickupFunc) {
	r.onPickup = fn
}

// ResolveAttack traces the ray and applies the attacker's current damage to
// whatever damageable entity it resolves to.
func (r *Resolver) ResolveAttack(attacker *model.Entity, from, to model.Vec3) Result {
	if attacker == nil || attacker.Stats == nil {
		slog.Warn("attack abandoned: attacker has no stats")
		return Result{Outcome: OutcomeAborted}
	}
	if r.world == nil {
		slog.Warn("attack abandoned: no physics world")
		return Result{Outcome: OutcomeAborted}
	}

	damage := attacker.Stats.Current(stat.Damage)
	return r.resolveRay(attacker, from, to, damage)
}

// ResolveEnemyAttack is the AI attack callback: a forward ray from the
// attacker's head toward the target, ranged to the attacker's current attack
// range. Damage lands only when the ray resolves to the target's own body.
func (r *Resolver) ResolveEnemyAttack(attacker, target *model.Entity) {
	if attacker == nil || attacker.Stats == nil || target == nil {
		slog.Warn("enemy attack abandoned: missing attacker stats or target")
		return
	}
	if r.world == nil {
		slog.Warn("enemy attack abandoned: no physics world")
		return
	}

	origin := attacker.Position
	origin.Y += rayHeadHeight
	aim := target.Position
	aim.Y += rayHeadHeight

	dir := aim.Sub(origin).Normalized()
	if dir == (model.Vec3{}) {
		return
	}
	end := origin.Add(dir.Scale(attacker.Stats.Current(stat.AttackRange)))

	hit := r.world.Raycast(origin, end, attacker.Body)
	if hit == nil {
		slog.Debug("enemy attack missed", "attacker", attacker.Name)
		return
	}
	if hit.Body != target.Body {
		// Something else is in the way; no damage through obstacles.
		return
	}
	if target.Health == nil {
		return
	}

	damage := attacker.Stats.Current(stat.Damage)
	target.Health.TakeDamage(damage)

	slog.Debug("enemy attack landed",
		"attacker", attacker.Name,
		"target", target.Name,
		"damage", damage)
}

// ResolveAbilityCast executes an ability for the caster. Attack abilities
// run the raycast flow with the definition's damage multiplier; buff
// abilities apply a timed modifier to the caster. Returns whether the cast
// happened.
func (r *Resolver) ResolveAbilityCast(caster *model.Entity, abilityID string) bool {
	def := r.content.Ability(abilityID)
	if def == nil {
		slog.Warn("cast abandoned: unknown ability", "ability", abilityID)
		return false
	}
	if caster == nil || caster.Stats == nil {
		slog.Warn("cast abandoned: caster has no stats", "ability", abilityID)
		return false
	}
	if caster.Abilities == nil || !caster.Abilities.Knows(abilityID) {
		slog.Warn("cast abandoned: ability not known",
			"caster", caster.Name,
			"ability", abilityID)
		return false
	}
	if !caster.Abilities.Ready(abilityID) {
		slog.Debug("cast rejected: ability on cooldown",
			"caster", caster.Name,
			"ability", abilityID,
			"remaining", caster.Abilities.Remaining(abilityID))
		return false
	}

	switch def.Kind {
	case data.AbilityAttack:
		if r.world == nil {
			slog.Warn("cast abandoned: no physics world", "ability", abilityID)
			return false
		}

		origin := caster.Position
		origin.Y += rayHeadHeight
		dir := model.Vec3{X: math.Sin(caster.Heading), Z: math.Cos(caster.Heading)}
		end := origin.Add(dir.Scale(caster.Stats.Current(stat.AttackRange)))

		damage := caster.Stats.Current(stat.Damage) * def.DamageMultiplier
		result := r.resolveRay(caster, origin, end, damage)

		slog.Debug("attack ability cast",
			"caster", caster.Name,
			"ability", abilityID,
			"outcome", result.Outcome)

	case data.AbilityBuff:
		statID, value, ok := def.BuffModifier()
		if !ok {
			slog.Warn("cast abandoned: buff ability has no bonus field", "ability", abilityID)
			return false
		}

		caster.Stats.ApplyModifier(stat.Modifier{
			ID:        "ability-" + def.ID,
			Stat:      statID,
			Value:     value,
			Kind:      stat.Additive,
			Remaining: def.Duration,
			Infinite:  def.Duration <= 0,
		})

		slog.Debug("buff ability cast",
			"caster", caster.Name,
			"ability", abilityID,
			"stat", statID,
			"value", value,
			"duration", def.Duration)

	default:
		slog.Warn("cast abandoned: unknown ability kind",
			"ability", abilityID,
			"kind", def.Kind)
		return false
	}

	caster.Abilities.TriggerCooldown(abilityID, def.Cooldown)
	return true
}

// resolveRay traces the segment and applies damage to the resolved entity.
func (r *Resolver) resolveRay(attacker *model.Entity, from, to model.Vec3, damage float64) Result {
	hit := r.world.Raycast(from, to, attacker.Body)
	if hit == nil {
		slog.Debug("attack missed", "attacker", attacker.Name)
		return Result{Outcome: OutcomeMiss}
	}

	target, ok := r.registry.GetByBody(hit.Body)
	if !ok {
		// World geometry or an unregistered body: not damageable.
		return Result{Outcome: OutcomeBlocked}
	}

	switch target.Kind {
	case model.KindEnemy, model.KindPlayer:
		if target.Health == nil {
			return Result{Outcome: OutcomeBlocked, Target: target}
		}
		died := target.Health.TakeDamage(damage)
		outcome := OutcomeHit
		if died {
			// Cleanup stays with the spawner/orchestrator: the death event
			// from the health tracker drives population accounting and the
			// delayed corpse removal.
			outcome = OutcomeKilled
		}
		return Result{Outcome: outcome, Target: target, Damage: damage}

	case model.KindResourceNode:
		if target.Health == nil || target.Depleted {
			return Result{Outcome: OutcomeBlocked, Target: target}
		}
		died := target.Health.TakeDamage(damage)
		if !died {
			return Result{Outcome: OutcomeHit, Target: target, Damage: damage}
		}
		r.depleteNode(target)
		return Result{Outcome: OutcomeDepleted, Target: target, Damage: damage}

	default:
		return Result{Outcome: OutcomeBlocked, Target: target}
	}
}

// depleteNode converts a destroyed gatherable into loot pickups and removes
// its body. The Depleted flag guards the conversion so a second lethal hit
// in the same tick cannot double-spawn the loot.
func (r *Resolver) depleteNode(node *model.Entity) {
	if node.Depleted {
		return
	}
	node.Depleted = true

	r.SpawnLoot(node.Loot, node.Position)

	if node.Body != 0 {
		r.world.RemoveBody(node.Body)
	}
	r.registry.Remove(node.ID)

	slog.Info("resource node depleted",
		"node", node.Name,
		"id", node.ID)
}
