package gamecore

import (
	"testing"

	"rollbackgame/internal/ecs"
	"rollbackgame/internal/netcode"
)

func TestSpawnPlayerIsIdempotent(t *testing.T) {
	m := NewManager()
	e1 := m.SpawnPlayer(0)
	e2 := m.SpawnPlayer(0)
	if e1 != e2 {
		t.Fatalf("expected spawning the same player slot twice to return the same entity, got %v and %v", e1, e2)
	}
}

func TestSpawnPlayerRejectsOutOfRangeSlot(t *testing.T) {
	m := NewManager()
	if e := m.SpawnPlayer(netcode.PlayerNumber(5)); e != ecs.InvalidEntity {
		t.Fatalf("expected InvalidEntity for an out-of-range player slot, got %v", e)
	}
}

func TestTickOnlyValidatesOnceAllPlayersReport(t *testing.T) {
	m := NewManager()
	m.SpawnPlayer(0)
	m.SpawnPlayer(1)

	m.SetPlayerInput(0, 1, netcode.InputUp)
	// Player 1 hasn't reported frame 1 yet.
	m.Tick(1)

	if m.GetLastValidatedFrame() != 0 {
		t.Fatalf("expected no validation until every spawned player reports, got %v", m.GetLastValidatedFrame())
	}

	m.SetPlayerInput(1, 1, netcode.InputNone)
	m.Tick(1)

	if m.GetLastValidatedFrame() != 1 {
		t.Fatalf("expected frame 1 validated once both players reported, got %v", m.GetLastValidatedFrame())
	}
}

func TestWinGameIsRecordedOnce(t *testing.T) {
	m := NewManager()
	m.WinGame(0)
	m.WinGame(1)

	winner, ok := m.CheckWinner()
	if !ok || winner != 0 {
		t.Fatalf("expected the first WinGame call to stick (winner=0), got winner=%v ok=%v", winner, ok)
	}
}
