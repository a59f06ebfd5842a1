// Package rollback implements the speculative/confirmed simulation
// pair at the heart of the netcode: a "current" world that replays
// ahead of confirmed input using predicted-by-repetition guesses, and a
// "confirmed" (lastValidate) world that only ever advances once every
// peer's input for a frame is known. Divergence between peers is caught
// by comparing the confirmed world's checksum, never the speculative one.
package rollback

import (
	"fmt"
	"log"
	"strconv"

	"rollbackgame/internal/config"
	"rollbackgame/internal/ecs"
	"rollbackgame/internal/netcode"
	"rollbackgame/internal/physics"
	"rollbackgame/internal/playersim"
	"rollbackgame/internal/telemetry"
)

// createdEntity records an entity speculatively created at frame, so a
// pre-replay cleanup can destroy it again if confirmation never catches
// up to that frame (spec.md §3's CreatedEntity record).
type createdEntity struct {
	entity ecs.Entity
	frame  netcode.Frame
}

// Manager owns both worlds and the per-player input history needed to
// replay between them.
type Manager struct {
	store *ecs.Store

	transformsCur  *ecs.Table[ecs.Transform]
	transformsConf *ecs.Table[ecs.Transform]

	physicsCur  *physics.Simulator
	physicsConf *physics.Simulator

	playersimCur  *playersim.Simulator
	playersimConf *playersim.Simulator

	rings             [config.MaxPlayers]inputRing
	lastKnownInput    [config.MaxPlayers]netcode.PlayerInput
	lastReceivedFrame [config.MaxPlayers]netcode.Frame
	playerEntities    [config.MaxPlayers]ecs.Entity

	currentFrame       netcode.Frame
	lastValidatedFrame netcode.Frame
	processingFrame    netcode.Frame

	pendingDestroy map[ecs.Entity]netcode.Frame
	createdEntities []createdEntity

	hasWinner bool
	winner    netcode.PlayerNumber
}

// NewManager returns a rollback manager over a freshly created entity
// store, with both worlds empty.
func NewManager() *Manager {
	store := ecs.NewStore()
	m := &Manager{
		store:          store,
		transformsCur:  ecs.NewTable[ecs.Transform](store, ecs.TransformMask),
		transformsConf: ecs.NewTable[ecs.Transform](store, ecs.TransformMask),
		physicsCur:     physics.NewSimulator(store),
		physicsConf:    physics.NewSimulator(store),
		playersimCur:   playersim.NewSimulator(store),
		playersimConf:  playersim.NewSimulator(store),
		pendingDestroy: make(map[ecs.Entity]netcode.Frame),
	}
	for i := range m.playerEntities {
		m.playerEntities[i] = ecs.InvalidEntity
	}
	m.physicsCur.RegisterTriggerListener(m.triggerCurrent)
	m.physicsConf.RegisterTriggerListener(m.triggerConfirmed)
	return m
}

// Store returns the shared entity store, for callers that spawn static
// geometry directly.
func (m *Manager) Store() *ecs.Store { return m.store }

// CurrentFrame returns the frame the speculative world has simulated to.
func (m *Manager) CurrentFrame() netcode.Frame { return m.currentFrame }

// LastValidatedFrame returns the most recent frame the confirmed world
// has been advanced to.
func (m *Manager) LastValidatedFrame() netcode.Frame { return m.lastValidatedFrame }

// LastReceivedFrame returns the most recent frame for which player's
// input has actually been received (as opposed to predicted).
func (m *Manager) LastReceivedFrame(player netcode.PlayerNumber) netcode.Frame {
	return m.lastReceivedFrame[player]
}

// PlayerEntity returns the entity handle for player, or ecs.InvalidEntity
// if that player slot hasn't spawned yet.
func (m *Manager) PlayerEntity(player netcode.PlayerNumber) ecs.Entity {
	return m.playerEntities[player]
}

// CurrentTransform returns a player's speculative transform, the value a
// renderer should read every frame.
func (m *Manager) CurrentTransform(e ecs.Entity) ecs.Transform {
	return m.transformsCur.Get(e)
}

// CurrentCharacter returns a player's speculative character state
// (health, invincibility, flash timers).
func (m *Manager) CurrentCharacter(e ecs.Entity) playersim.PlayerCharacter {
	return m.playersimCur.Character(e)
}

// SetPlayerInput records the input a peer reports for player at frame.
// Frames are accepted out of order; backfilling an older frame than the
// latest received is normal (the ring buffer is written positionally,
// not appended) and simply corrects a previously predicted value. A
// player number outside [0, MaxPlayers) is ignored.
func (m *Manager) SetPlayerInput(player netcode.PlayerNumber, frame netcode.Frame, in netcode.PlayerInput) {
	if int(player) >= config.MaxPlayers {
		return
	}
	m.rings[player].Set(frame, in)
	if frame >= m.lastReceivedFrame[player] {
		m.lastReceivedFrame[player] = frame
	}
}

// inputAt returns the input to simulate player with at frame: the
// received value if known, otherwise the last known input repeated
// (prediction-by-repetition), which is cheaper and usually more correct
// than predicting "no input" for a player mid-movement.
func (m *Manager) inputAt(player netcode.PlayerNumber, frame netcode.Frame) netcode.PlayerInput {
	if in, ok := m.rings[player].Get(frame); ok {
		m.lastKnownInput[player] = in
		return in
	}
	telemetry.RecordPredictionMiss(strconv.Itoa(int(player)))
	return m.lastKnownInput[player]
}

// StartNewFrame advances the speculative frame counter; a frame at or
// before the current one leaves it unchanged. The caller is
// responsible for calling SimulateToCurrentFrame afterward to actually
// replay the world forward.
func (m *Manager) StartNewFrame(frame netcode.Frame) {
	if frame <= m.currentFrame {
		return
	}
	m.currentFrame = frame
}

// SimulateToCurrentFrame replays the speculative world from the last
// confirmed frame up to currentFrame: garbage-collect any speculative
// spawns that never got confirmed, reset to the confirmed snapshot, then
// step every intervening frame using received-or-predicted input. This
// is the operation a client repeats every render tick; most of those
// frames were already simulated last tick; only a prior correction (an
// older input arriving late) makes the replay redo work it didn't have
// to the first time.
func (m *Manager) SimulateToCurrentFrame() {
	m.gcSpeculativeSpawns()

	m.transformsCur.CopyAll(m.transformsConf)
	m.physicsCur.CopyAllFrom(m.physicsConf)
	m.playersimCur.CopyAllFrom(m.playersimConf)

	replayed := 0
	for f := m.lastValidatedFrame + 1; f <= m.currentFrame; f++ {
		m.stepWorld(f, m.transformsCur, m.physicsCur, m.playersimCur, false)
		replayed++
	}
	telemetry.RecordReplay(replayed)
}

// ValidateFrame advances the confirmed world up to frame, which the
// caller must only invoke once every player's input through frame is
// actually known (not predicted) — stepWorld asserts this for every
// frame it replays. Advancing the confirmed world is what finalizes
// two-phase entity destruction and produces the checksum other peers
// compare against.
func (m *Manager) ValidateFrame(frame netcode.Frame) {
	if frame <= m.lastValidatedFrame {
		return
	}
	m.gcSpeculativeSpawns()

	for f := m.lastValidatedFrame + 1; f <= frame; f++ {
		m.stepWorld(f, m.transformsConf, m.physicsConf, m.playersimConf, true)
		m.finalizeDestroyed(f)
	}
	m.lastValidatedFrame = frame
}

// ConfirmFrame is the client-side counterpart to a host's broadcasted
// confirmation: a stale frame (already validated, or older) is silently
// ignored, as is a frame this peer can't validate yet because some
// player's input for it hasn't arrived. Otherwise it validates up to
// frame and compares its own confirmed checksums against the server's —
// any mismatch is a determinism divergence and fatal.
func (m *Manager) ConfirmFrame(frame netcode.Frame, serverChecksums [config.MaxPlayers]netcode.PhysicsState) {
	if frame <= m.lastValidatedFrame {
		return
	}
	for p := netcode.PlayerNumber(0); int(p) < config.MaxPlayers; p++ {
		if m.playerEntities[p] != ecs.InvalidEntity && m.lastReceivedFrame[p] < frame {
			return
		}
	}

	m.ValidateFrame(frame)

	for p := netcode.PlayerNumber(0); int(p) < config.MaxPlayers; p++ {
		if m.playerEntities[p] == ecs.InvalidEntity {
			continue
		}
		got := m.ValidatePhysicsState(p)
		if want := serverChecksums[p]; got != want {
			telemetry.RecordDivergence(strconv.Itoa(int(p)))
			panic(fmt.Sprintf("rollback: determinism divergence for player %d at frame %d: local=%#08x server=%#08x", p, frame, uint32(got), uint32(want)))
		}
	}

	m.transformsCur.CopyAll(m.transformsConf)
	m.physicsCur.CopyAllFrom(m.physicsConf)
	m.playersimCur.CopyAllFrom(m.playersimConf)
}

// stepWorld applies one fixed step of input-driven simulation to the
// given world's tables. In the confirmed world every player's input for
// frame must already be known; reading a prediction there would let an
// unconfirmed guess leak into authoritative state, so it is a programmer
// error and terminates the process.
func (m *Manager) stepWorld(frame netcode.Frame, transforms *ecs.Table[ecs.Transform], bodies *physics.Simulator, characters *playersim.Simulator, confirmed bool) {
	m.processingFrame = frame
	for p := netcode.PlayerNumber(0); int(p) < config.MaxPlayers; p++ {
		e := m.playerEntities[p]
		if e == ecs.InvalidEntity {
			if confirmed {
				log.Printf("rollback: frame %d: player %d has no entity yet, skipping input", frame, p)
			}
			continue
		}
		var in netcode.PlayerInput
		if confirmed {
			got, ok := m.rings[p].Get(frame)
			if !ok {
				panic(fmt.Sprintf("rollback: validateFrame: missing input for player %d at frame %d", p, frame))
			}
			in = got
		} else {
			in = m.inputAt(p, frame)
		}
		characters.FixedUpdate(e, config.FixedPeriod, in, bodies)
	}

	bodies.FixedUpdate(config.FixedPeriod)

	for p := netcode.PlayerNumber(0); int(p) < config.MaxPlayers; p++ {
		e := m.playerEntities[p]
		if e == ecs.InvalidEntity {
			continue
		}
		body := bodies.Body(e)
		t := transforms.Get(e)
		t.Position = body.Position
		t.Rotation = body.Rotation
		transforms.Set(e, t)
	}
}

// gcSpeculativeSpawns destroys every speculatively created entity whose
// creation was never reached by confirmation (createdFrame >
// lastValidatedFrame), then clears the pending list: entries at or
// before lastValidatedFrame are already permanent and need no further
// tracking. Called before every replay, per spec.md §4.6 step 1 of both
// simulateToCurrentFrame and validateFrame.
func (m *Manager) gcSpeculativeSpawns() {
	for _, ce := range m.createdEntities {
		if ce.frame > m.lastValidatedFrame {
			m.store.DestroyEntity(ce.entity)
		}
	}
	m.createdEntities = m.createdEntities[:0]
}

// ValidatePhysicsState returns the confirmed-world checksum for player,
// for comparison against the same player's checksum as computed by any
// other peer.
func (m *Manager) ValidatePhysicsState(player netcode.PlayerNumber) netcode.PhysicsState {
	e := m.playerEntities[player]
	if e == ecs.InvalidEntity {
		return 0
	}
	body := m.physicsConf.Body(e)
	return physicsChecksum(body.Position, body.Velocity, body.Rotation, body.AngularVelocity)
}

// DestroyEntity marks e for destruction: the entity keeps simulating
// until ValidateFrame reaches the frame the destruction was issued at,
// at which point it is actually removed from the entity store. The mark
// is not undone by a replay; once issued, the destruction always
// happens.
func (m *Manager) DestroyEntity(e ecs.Entity, issuedFrame netcode.Frame) {
	m.store.AddComponent(e, ecs.DestroyedMask)
	m.pendingDestroy[e] = issuedFrame
}

// finalizeDestroyed removes every entity whose destruction was issued at
// or before frame from the entity store.
func (m *Manager) finalizeDestroyed(frame netcode.Frame) {
	for e, issued := range m.pendingDestroy {
		if issued <= frame {
			m.store.DestroyEntity(e)
			delete(m.pendingDestroy, e)
		}
	}
}

// MarkCreated records e as created at the speculative world's current
// frame, so a pre-replay cleanup can undo the spawn if lastValidatedFrame
// never catches up to it (spec.md §3's CreatedEntity record, §8 S6).
func (m *Manager) MarkCreated(e ecs.Entity) {
	m.createdEntities = append(m.createdEntities, createdEntity{entity: e, frame: m.currentFrame})
}
