// Package gamecore is the match-level façade over the rollback manager:
// it owns level setup, player lifecycle, and the per-tick drive loop a
// host or client calls into, so callers never reach into rollback's
// speculative/confirmed internals directly.
package gamecore

import (
	"rollbackgame/internal/ecs"
	"rollbackgame/internal/netcode"
	"rollbackgame/internal/rollback"
)

// Manager is the entry point a host process or client prediction loop
// drives: one per match.
type Manager struct {
	rb       *rollback.Manager
	spawned  [2]bool
}

// NewManager returns a match manager with the static level already
// spawned but no players yet.
func NewManager() *Manager {
	m := &Manager{rb: rollback.NewManager()}
	m.rb.SpawnLevel()
	return m
}

// SpawnPlayer spawns player at its fixed start position. Spawning the
// same player slot twice is a no-op, matching the early-return guard the
// original game manager used to tolerate a duplicate join message.
func (m *Manager) SpawnPlayer(player netcode.PlayerNumber) ecs.Entity {
	if int(player) >= len(m.spawned) {
		return ecs.InvalidEntity
	}
	if m.spawned[player] {
		return m.rb.PlayerEntity(player)
	}
	m.spawned[player] = true
	return m.rb.SpawnPlayer(player)
}

// SetPlayerInput forwards a received input to the rollback manager.
func (m *Manager) SetPlayerInput(player netcode.PlayerNumber, frame netcode.Frame, in netcode.PlayerInput) {
	m.rb.SetPlayerInput(player, frame, in)
}

// Tick advances the speculative world to frame and, if every spawned
// player has reported input for a frame past the last validated one,
// validates the confirmed world up to the lowest such frame (see
// confirmableFrame). It returns the frame the confirmed world
// reached, which may be unchanged from the previous tick if input for
// the next frame hasn't arrived yet.
func (m *Manager) Tick(frame netcode.Frame) netcode.Frame {
	m.rb.StartNewFrame(frame)
	m.rb.SimulateToCurrentFrame()

	// As the authoritative side, the host validates directly from its own
	// received inputs; it has no server checksum to compare against, so
	// it calls ValidateFrame rather than the client-facing ConfirmFrame.
	confirmable := m.confirmableFrame()
	if confirmable > m.rb.LastValidatedFrame() {
		m.rb.ValidateFrame(confirmable)
	}
	return m.rb.LastValidatedFrame()
}

// confirmableFrame returns the highest frame every spawned player has
// actually reported input for.
func (m *Manager) confirmableFrame() netcode.Frame {
	var min netcode.Frame
	first := true
	for p, spawned := range m.spawned {
		if !spawned {
			continue
		}
		recv := m.rb.LastReceivedFrame(netcode.PlayerNumber(p))
		if first || recv < min {
			min = recv
			first = false
		}
	}
	return min
}

// GetEntityFromPlayerNumber returns the entity handle for player.
func (m *Manager) GetEntityFromPlayerNumber(player netcode.PlayerNumber) ecs.Entity {
	return m.rb.PlayerEntity(player)
}

// GetCurrentFrame returns the speculative world's frame.
func (m *Manager) GetCurrentFrame() netcode.Frame { return m.rb.CurrentFrame() }

// GetLastValidatedFrame returns the confirmed world's frame.
func (m *Manager) GetLastValidatedFrame() netcode.Frame { return m.rb.LastValidatedFrame() }

// GetLastReceivedFrame returns the last frame player's input was
// actually received for.
func (m *Manager) GetLastReceivedFrame(player netcode.PlayerNumber) netcode.Frame {
	return m.rb.LastReceivedFrame(player)
}

// ValidatePhysicsState returns player's confirmed-world checksum, for a
// host or peer to compare against another peer's.
func (m *Manager) ValidatePhysicsState(player netcode.PlayerNumber) netcode.PhysicsState {
	return m.rb.ValidatePhysicsState(player)
}

// CurrentTransform returns a player's speculative transform, for
// rendering.
func (m *Manager) CurrentTransform(player netcode.PlayerNumber) ecs.Transform {
	return m.rb.CurrentTransform(m.rb.PlayerEntity(player))
}

// CurrentCharacterHealth returns player's speculative health, for
// display purposes (the debug feed, an admin endpoint).
func (m *Manager) CurrentCharacterHealth(player netcode.PlayerNumber) int16 {
	return m.rb.CurrentCharacter(m.rb.PlayerEntity(player)).Health
}

// DestroyEntity marks e for two-phase destruction, issued at the
// speculative world's current frame.
func (m *Manager) DestroyEntity(e ecs.Entity) {
	m.rb.DestroyEntity(e, m.rb.CurrentFrame())
}

// CheckWinner reports the winning player, if the match has concluded.
func (m *Manager) CheckWinner() (netcode.PlayerNumber, bool) {
	return m.rb.CheckWinner()
}

// WinGame declares player the winner directly, for a host-side rule
// (e.g. the opponent disconnecting) that isn't a physical trigger.
func (m *Manager) WinGame(player netcode.PlayerNumber) {
	m.rb.WinGame(player)
}
