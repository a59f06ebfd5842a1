// Package playersim is the player-character simulator: it turns a
// frame's input bitmask into rotation and thrust, and tracks the
// per-player timers (invincibility, hit-flash, health) that only a
// trigger response or a validated frame can otherwise change.
package playersim

import (
	"math"

	"rollbackgame/internal/config"
	"rollbackgame/internal/ecs"
	"rollbackgame/internal/netcode"
	"rollbackgame/internal/physics"
)

// PlayerCharacter is the per-player simulation state beyond position,
// velocity, and rotation, all of which live in the paired BoxBody.
type PlayerCharacter struct {
	PlayerNumber      netcode.PlayerNumber
	Input             netcode.PlayerInput
	Health            int16
	InvincibilityTime float64
	FlashTime         float64
	ShootCooldown     float64
	WinCount          uint32
}

// IsInvincible reports whether the character is still within its
// post-hit invincibility window.
func (p PlayerCharacter) IsInvincible() bool {
	return p.InvincibilityTime > 0
}

// Simulator owns the PlayerCharacter table and applies input to the
// paired BoxBody each fixed step.
type Simulator struct {
	characters *ecs.Table[PlayerCharacter]
}

// NewSimulator returns a player-character simulator backed by its own
// PlayerCharacter table.
func NewSimulator(store *ecs.Store) *Simulator {
	return &Simulator{
		characters: ecs.NewTable[PlayerCharacter](store, ecs.PlayerCharacterMask),
	}
}

// AddCharacter attaches a PlayerCharacter component to e with full
// health and no active timers, owned by player.
func (s *Simulator) AddCharacter(e ecs.Entity, player netcode.PlayerNumber) {
	s.characters.Add(e)
	s.characters.Set(e, PlayerCharacter{PlayerNumber: player, Health: config.PlayerHealth})
}

// Character returns e's current PlayerCharacter state.
func (s *Simulator) Character(e ecs.Entity) PlayerCharacter {
	return s.characters.Get(e)
}

// SetCharacter overwrites e's PlayerCharacter state.
func (s *Simulator) SetCharacter(e ecs.Entity, c PlayerCharacter) {
	s.characters.Set(e, c)
}

// CopyAllFrom bulk-copies another simulator's entire character table
// into s, the mechanism rollback uses to revert to the confirmed snapshot.
func (s *Simulator) CopyAllFrom(other *Simulator) {
	s.characters.CopyAll(other.characters)
}

// FixedUpdate applies one frame's input to e's BoxBody: LEFT/RIGHT set
// an angular velocity of ±PlayerAngularSpeed degrees/second (opposing
// bits cancel to zero), UP/DOWN set a linear velocity of ±PlayerSpeed
// along the body's current heading (clamped to PlayerMaxSpeed), and the
// invincibility, hit-flash, and shoot-cooldown timers count down toward
// zero. The physics simulator integrates the resulting velocities into
// position and rotation; this step only decides what they should be.
func (s *Simulator) FixedUpdate(e ecs.Entity, dt float64, in netcode.PlayerInput, bodies *physics.Simulator) {
	body := bodies.Body(e)

	var angular float64
	if in&netcode.InputLeft != 0 {
		angular -= config.PlayerAngularSpeed
	}
	if in&netcode.InputRight != 0 {
		angular += config.PlayerAngularSpeed
	}
	body.AngularVelocity = angular

	rad := body.Rotation * math.Pi / 180
	heading := ecs.Vec2{X: math.Sin(rad), Y: math.Cos(rad)}

	var thrust float64
	if in&netcode.InputUp != 0 {
		thrust += config.PlayerSpeed
	}
	if in&netcode.InputDown != 0 {
		thrust -= config.PlayerSpeed
	}
	vel := heading.Scale(thrust)
	if speed := math.Hypot(vel.X, vel.Y); speed > config.PlayerMaxSpeed {
		vel = vel.Scale(config.PlayerMaxSpeed / speed)
	}
	body.Velocity = vel
	bodies.SetBody(e, body)

	c := s.characters.Get(e)
	c.Input = in
	if c.InvincibilityTime > 0 {
		c.InvincibilityTime -= dt
		if c.InvincibilityTime < 0 {
			c.InvincibilityTime = 0
		}
	}
	if c.FlashTime > 0 {
		c.FlashTime -= dt
		if c.FlashTime < 0 {
			c.FlashTime = 0
		}
	}
	if c.ShootCooldown > 0 {
		c.ShootCooldown -= dt
		if c.ShootCooldown < 0 {
			c.ShootCooldown = 0
		}
	}
	s.characters.Set(e, c)
}

// ApplyHit reduces health by one and starts the invincibility and
// hit-flash windows, unless the character is already invincible. It is
// called from the rollback manager's trigger response, never directly
// from FixedUpdate.
func (s *Simulator) ApplyHit(e ecs.Entity) {
	c := s.characters.Get(e)
	if c.IsInvincible() {
		return
	}
	c.Health--
	c.InvincibilityTime = config.PlayerInvincibilityPeriod
	c.FlashTime = config.InvincibilityFlashPeriod
	s.characters.Set(e, c)
}
