package rollback

import (
	"math"

	"rollbackgame/internal/ecs"
	"rollbackgame/internal/netcode"
)

// physicsChecksum folds a player's confirmed body position, velocity,
// rotation, and angular velocity into a single commutative 32-bit value:
// every peer computing it over the same confirmed state produces the
// same checksum, and a divergence that survives narrowing to float32
// changes it unless changes in different fields happen to cancel in the
// sum. This mirrors the reinterpret-as-uint32 additive
// fold of the system this was ported from, narrowing to float32 first so
// that harmless float64 rounding differences between platforms don't
// register as divergence.
func physicsChecksum(pos, vel ecs.Vec2, rotation, angularVelocity float64) netcode.PhysicsState {
	var sum uint32
	sum += math.Float32bits(float32(pos.X))
	sum += math.Float32bits(float32(pos.Y))
	sum += math.Float32bits(float32(vel.X))
	sum += math.Float32bits(float32(vel.Y))
	sum += math.Float32bits(float32(rotation))
	sum += math.Float32bits(float32(angularVelocity))
	return netcode.PhysicsState(sum)
}
