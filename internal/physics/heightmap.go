package physics

import (
	"math"
	"sync"

	"github.com/ashmelev/frostline/internal/model"
)

// HeightFunc samples terrain height at a world-space point.
type HeightFunc func(x, z float64) (float64, bool)

// HeightmapWorld is a deterministic in-memory physics world. Bodies are
// bounding spheres over their declared dimensions; rays are resolved against
// those spheres. It backs tests and headless runs; in production the browser
// physics engine sits behind the same interface.
type HeightmapWorld struct {
	mu     sync.RWMutex
	height HeightFunc
	bodies map[model.BodyID]*bodyState
	nextID model.BodyID
}

type bodyState struct {
	opts BodyOptions
	pos  model.Vec3
	yaw  float64
}

// NewHeightmapWorld creates a world over the given height function.
// A nil height function yields flat ground at y=0.
func NewHeightmapWorld(height HeightFunc) *HeightmapWorld {
	if height == nil {
		height = func(x, z float64) (float64, bool) { return 0, true }
	}
	return &HeightmapWorld{
		height: height,
		bodies: make(map[model.BodyID]*bodyState),
	}
}

// CreateBody registers a body and returns its handle.
func (w *HeightmapWorld) CreateBody(opts BodyOptions) model.BodyID {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	id := w.nextID
	w.bodies[id] = &bodyState{opts: opts, pos: opts.Position, yaw: opts.Yaw}
	return id
}

// RemoveBody unregisters a body. Unknown handles are ignored.
func (w *HeightmapWorld) RemoveBody(body model.BodyID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.bodies, body)
}

// SetBodyTransform moves a body to the given position and yaw.
func (w *HeightmapWorld) SetBodyTransform(body model.BodyID, pos model.Vec3, yaw float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if b, ok := w.bodies[body]; ok {
		b.pos = pos
		b.yaw = yaw
	}
}

// BodyPosition returns the current position of a body (test observation).
func (w *HeightmapWorld) BodyPosition(body model.BodyID) (model.Vec3, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	b, ok := w.bodies[body]
	if !ok {
		return model.Vec3{}, false
	}
	return b.pos, true
}

// GetHeightAt samples the terrain height function.
func (w *HeightmapWorld) GetHeightAt(x, z float64) (float64, bool) {
	return w.height(x, z)
}

// IsBodyOnGround reports whether the body sits at or below terrain height
// plus a small tolerance.
func (w *HeightmapWorld) IsBodyOnGround(body model.BodyID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	b, ok := w.bodies[body]
	if !ok {
		return false
	}
	ground, ok := w.height(b.pos.X, b.pos.Z)
	if !ok {
		return false
	}
	return b.pos.Y <= ground+0.1
}

// Raycast resolves the nearest bounding-sphere intersection along the
// segment, skipping the excluded body. Returns nil on a miss.
func (w *HeightmapWorld) Raycast(origin, end model.Vec3, exclude model.BodyID) *RaycastHit {
	w.mu.RLock()
	defer w.mu.RUnlock()

	dir := end.Sub(origin)
	segLen := dir.Length()
	if segLen == 0 {
		return nil
	}
	unit := dir.Scale(1 / segLen)

	var best *RaycastHit
	bestDist := math.Inf(1)

	for id, b := range w.bodies {
		if id == exclude {
			continue
		}
		radius := boundingRadius(b.opts)
		center := bodyCenter(b)
		t, ok := raySphere(origin, unit, center, radius)
		if !ok || t > segLen || t >= bestDist {
			continue
		}

		point := origin.Add(unit.Scale(t))
		normal := point.Sub(center).Normalized()
		bestDist = t
		best = &RaycastHit{Body: id, Point: point, Normal: normal}
	}

	return best
}

// bodyCenter lifts upright shapes to their volumetric center: body positions
// follow the feet-level convention, spheres are already centered.
func bodyCenter(b *bodyState) model.Vec3 {
	center := b.pos
	switch b.opts.Shape {
	case ShapeCapsule, ShapeBox:
		center.Y += b.opts.Dimensions.Y / 2
	}
	return center
}

func boundingRadius(opts BodyOptions) float64 {
	switch opts.Shape {
	case ShapeSphere:
		return opts.Dimensions.X
	case ShapeCapsule:
		return math.Max(opts.Dimensions.X, opts.Dimensions.Y/2)
	default:
		return opts.Dimensions.Length() / 2
	}
}

// raySphere returns the distance along the unit-direction ray to the first
// intersection with the sphere, if any.
func raySphere(origin, unit, center model.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.X*unit.X + oc.Y*unit.Y + oc.Z*unit.Z
	c := oc.X*oc.X + oc.Y*oc.Y + oc.Z*oc.Z - radius*radius

	disc := b*b - c
	if disc < 0 {
		return 0, false
	}

	sqrtDisc := math.Sqrt(disc)
	t := -b - sqrtDisc
	if t < 0 {
		t = -b + sqrtDisc // origin inside the sphere
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
