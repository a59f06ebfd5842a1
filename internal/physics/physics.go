// Package physics is the fixed-step AABB physics simulator: integrate
// velocities into positions, detect overlapping body pairs, resolve
// collisions (dynamic-vs-dynamic swaps linear velocities, static-vs-dynamic
// flips the dynamic side's velocity per axis), and dispatch trigger
// callbacks. Every step is pure arithmetic over a Table — no allocation,
// no map iteration — so that replaying the same inputs from the same
// starting table always produces the same bytes.
package physics

import (
	"math"

	"rollbackgame/internal/config"
	"rollbackgame/internal/ecs"
)

// BodyKind distinguishes bodies that move under velocity (DYNAMIC) from
// immovable geometry (STATIC). A STATIC body is never displaced or
// velocity-flipped by a collision; only the DYNAMIC side of a pair is.
type BodyKind uint8

const (
	Dynamic BodyKind = iota
	Static
)

// BoxBody is an axis-aligned box: a center position, a half-extent, a
// velocity, a rotation (degrees) and angular velocity, and a behavior
// kind. IsTrigger marks a body that reports overlaps without ever
// causing a resolve (the listener still fires). The body, not the
// paired Transform, is authoritative for simulation; Transform only
// mirrors the body's position/rotation for rendering.
type BoxBody struct {
	Position        ecs.Vec2
	Extents         ecs.Vec2
	Velocity        ecs.Vec2
	Rotation        float64
	AngularVelocity float64
	Kind            BodyKind
	IsTrigger       bool
}

// TriggerFunc is notified once per overlapping pair per step, in
// ascending (a, b) entity order so replays iterate deterministically.
type TriggerFunc func(a, b ecs.Entity)

// Simulator owns a single BoxBody table and runs the fixed-step
// integrate/detect/resolve/dispatch pipeline over it.
type Simulator struct {
	store   *ecs.Store
	bodies  *ecs.Table[BoxBody]
	onTrigger TriggerFunc
}

// NewSimulator returns a physics simulator backed by its own BoxBody table.
func NewSimulator(store *ecs.Store) *Simulator {
	return &Simulator{
		store:  store,
		bodies: ecs.NewTable[BoxBody](store, ecs.BoxBodyMask),
	}
}

// RegisterTriggerListener installs the callback invoked for every
// overlapping pair detected during FixedUpdate. Only one listener is
// supported, matching the single OnTriggerInterface of the system this
// was ported from.
func (s *Simulator) RegisterTriggerListener(fn TriggerFunc) {
	s.onTrigger = fn
}

// AddBody attaches a BoxBody component to e with the given initial value.
func (s *Simulator) AddBody(e ecs.Entity, body BoxBody) {
	s.bodies.Add(e)
	s.bodies.Set(e, body)
}

// Body returns e's current BoxBody.
func (s *Simulator) Body(e ecs.Entity) BoxBody {
	return s.bodies.Get(e)
}

// SetBody overwrites e's BoxBody.
func (s *Simulator) SetBody(e ecs.Entity, body BoxBody) {
	s.bodies.Set(e, body)
}

// CopyAllFrom bulk-copies another simulator's entire body table into s,
// the mechanism rollback uses to revert to the confirmed snapshot.
func (s *Simulator) CopyAllFrom(other *Simulator) {
	s.bodies.CopyAll(other.bodies)
}

// FixedUpdate advances every body by one fixed step: integrate position
// from velocity and rotation from angular velocity, then detect and
// resolve all overlapping pairs. STATIC bodies integrate too — their
// velocities are expected to be zero at tick boundaries, but that is a
// convention callers must honor, not something this loop enforces.
func (s *Simulator) FixedUpdate(dt float64) {
	n := s.store.EntitiesSize()
	for i := 0; i < n; i++ {
		e := ecs.Entity(i)
		if !s.store.HasComponent(e, ecs.BoxBodyMask) {
			continue
		}
		b := s.bodies.Get(e)
		b.Position = b.Position.Add(b.Velocity.Scale(dt))
		b.Rotation += b.AngularVelocity * dt
		s.bodies.Set(e, b)
	}

	for i := 0; i < n; i++ {
		a := ecs.Entity(i)
		if !s.store.HasComponent(a, ecs.BoxBodyMask) {
			continue
		}
		for j := i + 1; j < n; j++ {
			b := ecs.Entity(j)
			if !s.store.HasComponent(b, ecs.BoxBodyMask) {
				continue
			}
			s.checkPair(a, b)
		}
	}
}

// checkPair tests a against b for AABB overlap, resolves penetration on
// the dynamic side (if any), and fires the trigger listener on overlap.
// A pair of two STATIC bodies is skipped entirely.
func (s *Simulator) checkPair(a, b ecs.Entity) {
	bodyA := s.bodies.Get(a)
	bodyB := s.bodies.Get(b)
	if bodyA.Kind == Static && bodyB.Kind == Static {
		return
	}

	dx := bodyB.Position.X - bodyA.Position.X
	dy := bodyB.Position.Y - bodyA.Position.Y
	overlapX := (bodyA.Extents.X + bodyB.Extents.X) - abs(dx)
	overlapY := (bodyA.Extents.Y + bodyB.Extents.Y) - abs(dy)
	if overlapX <= 0 || overlapY <= 0 {
		return
	}

	if s.onTrigger != nil {
		s.onTrigger(a, b)
	}

	if bodyA.IsTrigger || bodyB.IsTrigger {
		return
	}

	s.resolveCollision(a, b, &bodyA, &bodyB)
}

// resolveCollision applies the coarse, by-design resolution policy for an
// overlapping pair: DYNAMIC vs DYNAMIC swaps linear velocities outright
// (angular velocities untouched); STATIC vs DYNAMIC negates the dynamic
// body's velocity on each axis independently that's within
// config.CollisionEpsilon of touching; STATIC vs STATIC never reaches
// here (filtered by pair detection).
func (s *Simulator) resolveCollision(a, b ecs.Entity, bodyA, bodyB *BoxBody) {
	switch {
	case bodyA.Kind == Dynamic && bodyB.Kind == Dynamic:
		bodyA.Velocity, bodyB.Velocity = bodyB.Velocity, bodyA.Velocity
		s.bodies.Set(a, *bodyA)
		s.bodies.Set(b, *bodyB)
	case bodyA.Kind == Dynamic && bodyB.Kind == Static:
		s.resolveStaticAxis(a, bodyA, bodyB)
	case bodyB.Kind == Dynamic && bodyA.Kind == Static:
		s.resolveStaticAxis(b, bodyB, bodyA)
	}
}

// resolveStaticAxis tests each axis independently: if the signed distance
// between dyn and static's centers on that axis, minus the sum of their
// half-extents, is below config.CollisionEpsilon, dyn's velocity on that
// axis is negated. abs() makes the test direction-agnostic, which is what
// folds the "applied in both directions" case into a single sign flip per
// axis rather than a double negation.
func (s *Simulator) resolveStaticAxis(dynEntity ecs.Entity, dyn, static *BoxBody) {
	distX := math.Abs(static.Position.X-dyn.Position.X) - (dyn.Extents.X + static.Extents.X)
	distY := math.Abs(static.Position.Y-dyn.Position.Y) - (dyn.Extents.Y + static.Extents.Y)
	if distX < config.CollisionEpsilon {
		dyn.Velocity.X = -dyn.Velocity.X
	}
	if distY < config.CollisionEpsilon {
		dyn.Velocity.Y = -dyn.Velocity.Y
	}
	s.bodies.Set(dynEntity, *dyn)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
