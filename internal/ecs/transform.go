package ecs

// Vec2 is a 2D float vector used throughout the simulation core.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Transform is pure data: position, rotation (degrees) and scale. It is
// never authoritative for simulation — the physics simulator owns the
// body, and the rollback manager copies each player body's position and
// rotation here after every simulated step for rendering to read.
type Transform struct {
	Position Vec2
	Rotation float64
	Scale    Vec2
}
