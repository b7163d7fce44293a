package ai

// State represents the behavior state of one enemy.
// StateDead is terminal: no transition ever leaves it.
type State uint8

const (
	// StateIdle - enemy is standing still, counting down a random dwell timer
	StateIdle State = iota
	// StateWandering - enemy is walking toward a random nearby point
	StateWandering
	// StateChasing - player is inside perception range, enemy runs at them
	StateChasing
	// StateAttacking - player is inside attack range, attack cycle running
	StateAttacking
	// StateDead - terminal, all movement halted
	StateDead
)

// String returns human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateWandering:
		return "WANDERING"
	case StateChasing:
		return "CHASING"
	case StateAttacking:
		return "ATTACKING"
	case StateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}
