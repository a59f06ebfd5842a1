package config

import "testing"

func TestSpawnArraysMatchMaxPlayers(t *testing.T) {
	if len(SpawnPositions) != MaxPlayers {
		t.Fatalf("expected %d spawn positions, got %d", MaxPlayers, len(SpawnPositions))
	}
	if len(SpawnRotations) != MaxPlayers {
		t.Fatalf("expected %d spawn rotations, got %d", MaxPlayers, len(SpawnRotations))
	}
}

func TestHostFromEnvOverridesPort(t *testing.T) {
	t.Setenv("GAME_LISTEN_PORT", "4242")
	cfg := HostFromEnv()
	if cfg.ListenPort != 4242 {
		t.Fatalf("expected overridden listen port 4242, got %d", cfg.ListenPort)
	}
}

func TestHostFromEnvFallsBackToDefaults(t *testing.T) {
	cfg := HostFromEnv()
	def := DefaultHost()
	if cfg.AdminPort != def.AdminPort {
		t.Fatalf("expected default admin port %d without env override, got %d", def.AdminPort, cfg.AdminPort)
	}
}
