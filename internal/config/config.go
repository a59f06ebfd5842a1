// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for the wire-contract constants
// every peer must agree on, plus the handful of host-process settings
// an operator may reasonably tune.
//
// IMPORTANT: When changing a wire-contract value (tick rate, ring
// capacity, player tuning, half-extents, spawn layout), every peer in a
// match must be rebuilt together — these are never environment
// overridable, since two peers disagreeing on them desyncs silently
// instead of failing loudly.
package config

import (
	"os"
	"strconv"

	"rollbackgame/internal/ecs"
)

// =============================================================================
// WIRE CONTRACT: TIMING & CAPACITY
// =============================================================================

// MaxPlayers is the number of simultaneous players this core supports.
// Non-goal: reconciliation of more than two players.
const MaxPlayers = 2

// RingCapacity bounds how many frames of input history a player's ring
// buffer holds, i.e. the maximum tolerable rollback window before a late
// confirmation can no longer be applied.
const RingCapacity = 32

// FixedPeriod is the fixed simulation step, in seconds.
const FixedPeriod = 0.02

// CollisionEpsilon is the per-axis separation threshold (center distance
// minus summed half-extents) below which a STATIC-vs-DYNAMIC collision
// flips the dynamic body's velocity on that axis.
const CollisionEpsilon = 0.1

// =============================================================================
// WIRE CONTRACT: PLAYER TUNING
// =============================================================================

const (
	PlayerSpeed               = 1.0
	PlayerAngularSpeed        = 90.0 // degrees/second
	PlayerMaxSpeed            = 3.0
	PlayerHealth        int16 = 5
	PlayerInvincibilityPeriod = 1.5
	InvincibilityFlashPeriod  = 0.5
)

// =============================================================================
// WIRE CONTRACT: BODY HALF-EXTENTS
// =============================================================================

var (
	PlayerHalfExtents   = ecs.Vec2{X: 0.32, Y: 0.275}
	BoxHalfExtents      = ecs.Vec2{X: 0.64, Y: 0.16}
	WallHalfExtents     = ecs.Vec2{X: 0.32, Y: 50}
	GreatBoxHalfExtents = ecs.Vec2{X: 1.28, Y: 0.32}
	FlagHalfExtents     = ecs.Vec2{X: 0.25, Y: 0.25}
	TrackHalfExtents    = ecs.Vec2{X: 0.5, Y: 0.5}
)

// =============================================================================
// WIRE CONTRACT: LEVEL LAYOUT
// =============================================================================

// SpawnPositions and SpawnRotations are the fixed player spawn points and
// facing rotations (degrees), ported from the original level's
// spawnPositions/spawnRotations arrays.
var SpawnPositions = [MaxPlayers]ecs.Vec2{
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

var SpawnRotations = [MaxPlayers]float64{0, 0}

// Static level geometry, ported from the original
// GameManager::SpawnLevel layout.
var (
	TrackPositions = []ecs.Vec2{
		{X: 0, Y: 20}, {X: 0, Y: 40}, {X: 0, Y: 60}, {X: 0, Y: 80}, {X: 0, Y: 100},
	}

	GreatBoxPositions = []ecs.Vec2{
		{X: -2, Y: -5}, {X: 2, Y: -5}, {X: 0, Y: 65}, {X: 1, Y: 77}, {X: -1, Y: 85},
	}

	BoxPositions = []ecs.Vec2{
		{X: -3, Y: 3}, {X: 3, Y: 3}, {X: 0, Y: 8},
		{X: 3, Y: 11}, {X: -3, Y: 11}, {X: 1.5, Y: 13},
		{X: -1.5, Y: 13}, {X: 2, Y: 16}, {X: -2, Y: 16},
		{X: 0, Y: 20}, {X: -3, Y: 26}, {X: 3, Y: 26},
		{X: 1, Y: 28}, {X: -1.5, Y: 31}, {X: 3, Y: 40},
		{X: 2, Y: 47}, {X: 1, Y: 46}, {X: -3, Y: 50},
		{X: -1, Y: 55}, {X: 2, Y: 58},
		{X: -2.5, Y: 70}, {X: 2.5, Y: 70},
		{X: 3, Y: 88},
		{X: 1, Y: 90}, {X: -1, Y: 92}, {X: -2, Y: 94},
	}

	WallPositions = []ecs.Vec2{
		{X: 4, Y: 50}, {X: -4, Y: 50},
	}

	FlagPositions = []ecs.Vec2{
		{X: 0, Y: 100}, {X: -2, Y: 100}, {X: 2, Y: 100},
		{X: -1, Y: 100}, {X: 1, Y: 100}, {X: 3, Y: 100}, {X: -3, Y: 100},
	}
)

// =============================================================================
// HOST PROCESS CONFIGURATION
// =============================================================================

// HostConfig holds the settings a host process may tune at startup.
// Unlike the wire contract above, these only affect the local process.
type HostConfig struct {
	ListenPort     int
	AdminPort      int
	RateLimitRPS   float64
	RateLimitBurst int
}

// DefaultHost returns production-safe defaults for the host process.
func DefaultHost() HostConfig {
	return HostConfig{
		ListenPort:     7777,
		AdminPort:      9090,
		RateLimitRPS:   120,
		RateLimitBurst: 240,
	}
}

// HostFromEnv returns host configuration with environment variable
// overrides. Environment variables take precedence over defaults.
func HostFromEnv() HostConfig {
	cfg := DefaultHost()

	if p := getEnvInt("GAME_LISTEN_PORT", 0); p > 0 {
		cfg.ListenPort = p
	}
	if p := getEnvInt("GAME_ADMIN_PORT", 0); p > 0 {
		cfg.AdminPort = p
	}
	if r := getEnvFloat("GAME_RATE_LIMIT_RPS", -1); r >= 0 {
		cfg.RateLimitRPS = r
	}
	if b := getEnvInt("GAME_RATE_LIMIT_BURST", 0); b > 0 {
		cfg.RateLimitBurst = b
	}

	return cfg
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
