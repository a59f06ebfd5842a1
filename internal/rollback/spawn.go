package rollback

import (
	"rollbackgame/internal/config"
	"rollbackgame/internal/ecs"
	"rollbackgame/internal/netcode"
	"rollbackgame/internal/physics"
	"rollbackgame/internal/playersim"
)

// SpawnPlayer creates a player entity at its fixed spawn point and
// registers it as both worlds' representative for that player slot. A
// player number outside [0, MaxPlayers) is ignored and returns
// ecs.InvalidEntity.
func (m *Manager) SpawnPlayer(player netcode.PlayerNumber) ecs.Entity {
	if int(player) >= config.MaxPlayers {
		return ecs.InvalidEntity
	}
	e := m.store.CreateEntity()
	pos := config.SpawnPositions[player]
	rot := config.SpawnRotations[player]

	transform := ecs.Transform{Position: pos, Rotation: rot, Scale: ecs.Vec2{X: 1, Y: 1}}
	m.transformsCur.Add(e)
	m.transformsCur.Set(e, transform)
	m.transformsConf.Add(e)
	m.transformsConf.Set(e, transform)

	body := physics.BoxBody{Position: pos, Rotation: rot, Extents: config.PlayerHalfExtents, Kind: physics.Dynamic}
	m.physicsCur.AddBody(e, body)
	m.physicsConf.AddBody(e, body)

	m.playersimCur.AddCharacter(e, player)
	m.playersimConf.AddCharacter(e, player)

	m.playerEntities[player] = e
	m.MarkCreated(e)
	return e
}

// spawnStatic creates a STATIC body at pos with the given component
// mask and half-extents, sharing the same values across both worlds
// since static geometry never diverges.
func (m *Manager) spawnStatic(mask ecs.Mask, extents, pos ecs.Vec2) ecs.Entity {
	e := m.store.CreateEntity()
	m.store.AddComponent(e, mask)

	transform := ecs.Transform{Position: pos, Scale: ecs.Vec2{X: 1, Y: 1}}
	m.transformsCur.Add(e)
	m.transformsCur.Set(e, transform)
	m.transformsConf.Add(e)
	m.transformsConf.Set(e, transform)

	body := physics.BoxBody{Position: pos, Extents: extents, Kind: physics.Static}
	m.physicsCur.AddBody(e, body)
	m.physicsConf.AddBody(e, body)

	m.MarkCreated(e)
	return e
}

// SpawnBox creates a single destructible box at pos.
func (m *Manager) SpawnBox(pos ecs.Vec2) ecs.Entity {
	return m.spawnStatic(ecs.BoxMask, config.BoxHalfExtents, pos)
}

// SpawnWall creates a single wall segment at pos.
func (m *Manager) SpawnWall(pos ecs.Vec2) ecs.Entity {
	return m.spawnStatic(ecs.WallMask, config.WallHalfExtents, pos)
}

// SpawnFlag creates a single win-condition flag at pos.
func (m *Manager) SpawnFlag(pos ecs.Vec2) ecs.Entity {
	return m.spawnStatic(ecs.FlagMask, config.FlagHalfExtents, pos)
}

// SpawnTrack creates a single track segment at pos.
func (m *Manager) SpawnTrack(pos ecs.Vec2) ecs.Entity {
	return m.spawnStatic(ecs.TrackMask, config.TrackHalfExtents, pos)
}

// SpawnGreatBox creates a single large box at pos.
func (m *Manager) SpawnGreatBox(pos ecs.Vec2) ecs.Entity {
	return m.spawnStatic(ecs.GreatBoxMask, config.GreatBoxHalfExtents, pos)
}

// SpawnLevel populates the static geometry for a full match: every box,
// wall, flag, track segment, and great box of the fixed level layout.
func (m *Manager) SpawnLevel() {
	for _, pos := range config.BoxPositions {
		m.SpawnBox(pos)
	}
	for _, pos := range config.WallPositions {
		m.SpawnWall(pos)
	}
	for _, pos := range config.FlagPositions {
		m.SpawnFlag(pos)
	}
	for _, pos := range config.TrackPositions {
		m.SpawnTrack(pos)
	}
	for _, pos := range config.GreatBoxPositions {
		m.SpawnGreatBox(pos)
	}
}

// playerNumberOf returns the player slot e occupies, if any.
func (m *Manager) playerNumberOf(e ecs.Entity) (netcode.PlayerNumber, bool) {
	for p, pe := range m.playerEntities {
		if pe == e {
			return netcode.PlayerNumber(p), true
		}
	}
	return netcode.InvalidPlayer, false
}

// triggerCurrent handles an overlap detected in the speculative world.
func (m *Manager) triggerCurrent(a, b ecs.Entity) {
	m.handleTrigger(a, b, m.playersimCur, false)
}

// triggerConfirmed handles an overlap detected in the confirmed world.
// Only the confirmed path actually issues destruction and win
// declarations, since those must happen exactly once, at a frame every
// peer agrees really occurred.
func (m *Manager) triggerConfirmed(a, b ecs.Entity) {
	m.handleTrigger(a, b, m.playersimConf, true)
}

// handleTrigger dispatches an overlapping pair to the appropriate
// response: PLAYER×WALL flips the player's Y velocity (ported from the
// original's OnTrigger), PLAYER×BOX/GREAT_BOX damages the player and
// destroys the box, and PLAYER×FLAG declares that player the winner.
// PLAYER×TRACK has no gameplay effect but still reaches the listener.
func (m *Manager) handleTrigger(a, b ecs.Entity, characters *playersim.Simulator, confirmed bool) {
	player, box, ok := m.playerAndOther(a, b)
	if !ok {
		return
	}

	switch {
	case m.store.HasComponent(box, ecs.WallMask):
		m.flipPlayerY(player, confirmed)
	case m.store.HasComponent(box, ecs.BoxMask), m.store.HasComponent(box, ecs.GreatBoxMask):
		characters.ApplyHit(player)
		if confirmed {
			m.DestroyEntity(box, m.processingFrame)
		}
	case m.store.HasComponent(box, ecs.FlagMask):
		if confirmed {
			if pn, ok := m.playerNumberOf(player); ok {
				m.WinGame(pn)
			}
		}
	case m.store.HasComponent(box, ecs.TrackMask):
		// no gameplay effect; the listener still fires for parity with the
		// system this was ported from.
	}
}

// playerAndOther splits a trigger pair into (player entity, other
// entity), regardless of which side of the pair physics happened to
// report the player on. Reports ok=false for pairs with zero or two
// player characters.
func (m *Manager) playerAndOther(a, b ecs.Entity) (player, other ecs.Entity, ok bool) {
	aIsPlayer := m.store.HasComponent(a, ecs.PlayerCharacterMask)
	bIsPlayer := m.store.HasComponent(b, ecs.PlayerCharacterMask)
	switch {
	case aIsPlayer && !bIsPlayer:
		return a, b, true
	case bIsPlayer && !aIsPlayer:
		return b, a, true
	default:
		return 0, 0, false
	}
}

func (m *Manager) flipPlayerY(player ecs.Entity, confirmed bool) {
	bodies := m.physicsCur
	if confirmed {
		bodies = m.physicsConf
	}
	body := bodies.Body(player)
	body.Velocity.Y = -body.Velocity.Y
	bodies.SetBody(player, body)
}

// WinGame is the sole entry point to a recorded match win, never derived
// by scanning per-entity counters. It is called from a confirmed
// PLAYER×FLAG trigger and from gamecore.Manager.WinGame; only the first
// call records a winner, later calls are ignored. The per-player
// WinCount it bumps is purely informational (spec.md §3), never read
// back to decide a winner.
func (m *Manager) WinGame(player netcode.PlayerNumber) {
	if m.hasWinner {
		return
	}
	m.hasWinner = true
	m.winner = player

	e := m.playerEntities[player]
	if e == ecs.InvalidEntity {
		return
	}
	for _, sim := range [...]*playersim.Simulator{m.playersimCur, m.playersimConf} {
		c := sim.Character(e)
		c.WinCount++
		sim.SetCharacter(e, c)
	}
}

// CheckWinner reports the winning player, if the match has concluded.
func (m *Manager) CheckWinner() (player netcode.PlayerNumber, ok bool) {
	return m.winner, m.hasWinner
}
