package physics

import "github.com/ashmelev/frostline/internal/model"

// Shape enumerates collision shapes the simulation can request.
type Shape uint8

const (
	ShapeBox Shape = iota
	ShapeSphere
	ShapeCapsule
)

// BodyOptions describes a physics body to create. LinkedVisual names the
// render-side object the body drives; the simulation never interprets it.
type BodyOptions struct {
	Shape        Shape
	Dimensions   model.Vec3 // box: full extents; sphere/capsule: X = radius, Y = height
	Mass         float64    // 0 = static
	Position     model.Vec3
	Yaw          float64
	LinkedVisual string
}

// RaycastHit is the resolved result of a raycast.
type RaycastHit struct {
	Body   model.BodyID
	Point  model.Vec3
	Normal model.Vec3
}

// World is the narrow interface the simulation consumes from the physics
// collaborator. All calls are synchronous; failures surface as nil results,
// never as panics into the tick.
type World interface {
	// Raycast traces from origin to end, skipping exclude (0 = none).
	// Returns nil on a miss.
	Raycast(origin, end model.Vec3, exclude model.BodyID) *RaycastHit

	// GetHeightAt returns the ground height at (x, z), or false when the
	// point is outside the loaded terrain.
	GetHeightAt(x, z float64) (float64, bool)

	// CreateBody registers a body and returns its handle.
	CreateBody(opts BodyOptions) model.BodyID

	// RemoveBody unregisters a body. Removing an unknown handle is a no-op.
	RemoveBody(body model.BodyID)

	// SetBodyTransform moves a body. The simulation owns enemy body
	// transforms; the player-control collaborator owns the player body.
	SetBodyTransform(body model.BodyID, pos model.Vec3, yaw float64)

	// IsBodyOnGround reports whether the body rests on terrain.
	IsBodyOnGround(body model.BodyID) bool
}
