package config

import (
	"image/color"
	"time"
)

// SyncConfig tunes remote-entity interpolation and extrapolation.
type SyncConfig struct {
	// StaleAfter is how long without a fresh snapshot before an entity
	// switches to dead reckoning. One server tick plus nothing.
	StaleAfter time.Duration

	// ExtrapolationBlend is the per-frame blend factor toward the dead
	// reckoned point while stale.
	ExtrapolationBlend float64

	// HistoryWindow bounds each entity's snapshot history ring.
	HistoryWindow time.Duration

	// Adaptive interpolation rate by RTT bracket. Higher latency gets a
	// slower catch-up so jitter is smoothed instead of amplified.
	LowRTT      time.Duration
	MidRTT      time.Duration
	RateLowRTT  float64
	RateMidRTT  float64
	RateHighRTT float64
}

// ReconcileConfig tunes the local tank's drift correction.
type ReconcileConfig struct {
	// IgnoreBand: differences at or below this are positional codec
	// quantization noise, not drift.
	IgnoreBand float64

	// HardThreshold: differences above this teleport instead of blending.
	HardThreshold float64

	// SoftBlend is the fraction of the remaining gap closed per
	// reconciliation message in the soft tier.
	SoftBlend float64

	// TurretTolerance is the angular discrepancy (radians) above which the
	// turret and aim pitch resynchronize even inside the ignore band.
	TurretTolerance float64

	// RejoinWindow is how long a departed id stays tombstoned before the
	// same id may rejoin as a fresh entity.
	RejoinWindow time.Duration
}

// ProjectileConfig tunes remote shell tracking.
type ProjectileConfig struct {
	// MaxLifetime removes a shell that never received a hit message.
	MaxLifetime time.Duration

	// RecentSync: a shell synced within this window is not dead reckoned.
	RecentSync time.Duration

	// LaunchDelay defers a remote shell's first visible frame to absorb
	// transmission latency. Does not affect the trajectory.
	LaunchDelay time.Duration
}

// TankConfig contains the drive model, shared verbatim with the server.
type TankConfig struct {
	Acceleration float64 // per 60 Hz step
	Friction     float64
	MaxSpeed     float64
	ReverseScale float64 // reverse top speed as a fraction of MaxSpeed
	TurnSpeed    float64 // radians per step
	TurretTurn   float64 // radians per step, turret slew limit
	HullSize     float64 // collision box edge, world units

	Health int
}

// CannonConfig describes one cannon type's shell.
type CannonConfig struct {
	Speed    float64 // world units per second
	Cooldown time.Duration
	Damage   int
}

// CameraConfig contains camera behavior configuration.
type CameraConfig struct {
	FollowSmoothing float64 // how fast the camera follows the tank (0.0-1.0)
}

// Config holds general game configuration.
type Config struct {
	Width  int
	Height int
}

// Global configuration instances
var C *Config
var Sync SyncConfig
var Reconcile ReconcileConfig
var Projectile ProjectileConfig
var Tank TankConfig
var Cannons map[uint8]CannonConfig
var Camera CameraConfig

// Shared RGBA color constants
var (
	White       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	LightGreen  = color.RGBA{R: 100, G: 255, B: 100, A: 255}
	BrightGreen = color.RGBA{R: 0, G: 255, B: 60, A: 255}
	Red         = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Orange      = color.RGBA{R: 255, G: 140, B: 0, A: 255}
	SteelGrey   = color.RGBA{R: 120, G: 130, B: 140, A: 255}
	DarkFloor   = color.RGBA{R: 28, G: 30, B: 34, A: 255}
	WallGrey    = color.RGBA{R: 70, G: 76, B: 84, A: 255}
	TracerWhite = color.RGBA{R: 255, G: 250, B: 220, A: 255}
)

// Tank hull colors by roster order for remote players.
var TankColors = []color.RGBA{
	{R: 220, G: 90, B: 60, A: 255},
	{R: 80, G: 140, B: 220, A: 255},
	{R: 200, G: 180, B: 60, A: 255},
	{R: 170, G: 90, B: 200, A: 255},
	{R: 90, G: 200, B: 170, A: 255},
}

func init() {
	C = &Config{
		Width:  960,
		Height: 544,
	}

	Sync = SyncConfig{
		StaleAfter:         50 * time.Millisecond,
		ExtrapolationBlend: 0.3,
		HistoryWindow:      time.Second,
		LowRTT:             50 * time.Millisecond,
		MidRTT:             150 * time.Millisecond,
		RateLowRTT:         0.3,
		RateMidRTT:         0.2,
		RateHighRTT:        0.1,
	}

	Reconcile = ReconcileConfig{
		// Positions are quantized to a 0.1-unit grid on the wire; anything
		// inside 0.15 is noise.
		IgnoreBand:      0.15,
		HardThreshold:   2.0,
		SoftBlend:       0.3,
		TurretTolerance: 0.02,
		RejoinWindow:    3 * time.Second,
	}

	Projectile = ProjectileConfig{
		MaxLifetime: 8 * time.Second,
		RecentSync:  50 * time.Millisecond,
		LaunchDelay: 100 * time.Millisecond,
	}

	Tank = TankConfig{
		Acceleration: 0.2,
		Friction:     0.1,
		MaxSpeed:     3.5,
		ReverseScale: 0.6,
		TurnSpeed:    0.045,
		TurretTurn:   0.12,
		HullSize:     20.0,
		Health:       100,
	}

	Cannons = map[uint8]CannonConfig{
		0: {Speed: 420, Cooldown: 900 * time.Millisecond, Damage: 34}, // standard
		1: {Speed: 520, Cooldown: 180 * time.Millisecond, Damage: 8},  // gatling
		2: {Speed: 260, Cooldown: 1800 * time.Millisecond, Damage: 60}, // mortar
	}

	Camera = CameraConfig{
		FollowSmoothing: 0.1,
	}
}
