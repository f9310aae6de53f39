// Package netsync is the client-side network-state synchronization engine:
// it reconciles the locally-simulated tank with server authority and
// reconstructs remote tank and shell motion from sparse, delayed snapshots.
// The package is transport-agnostic; decoded messages go in through
// Registry.Dispatch and the renderer reads poses back out once per tick.
package netsync

import (
	"time"

	"github.com/bastionworks/ironclad-mp/shared/gamemath"
	"github.com/bastionworks/ironclad-mp/shared/messages"
)

// Pose is what the renderer asks for each frame: a believable current
// transform for one entity.
type Pose struct {
	Position  gamemath.Vec3
	Yaw       float64
	TurretYaw float64
	AimPitch  float64
	Visible   bool
}

// Snapshot is a TankSnapshot stamped with the client receive time. Immutable
// once stored; a newer snapshot replaces it, never mutates it.
type Snapshot struct {
	messages.TankSnapshot
	ReceivedAt time.Time
}

// Pos returns the snapshot position as a vector.
func (s Snapshot) Pos() gamemath.Vec3 {
	return gamemath.Vec3{X: s.X, Y: s.Y, Z: s.Z}
}

// Pose converts the snapshot into a renderable pose.
func (s Snapshot) Pose() Pose {
	return Pose{
		Position:  s.Pos(),
		Yaw:       s.Yaw,
		TurretYaw: s.TurretYaw,
		AimPitch:  s.AimPitch,
		Visible:   s.Status == messages.StatusAlive,
	}
}

// Finite reports whether every coordinate and angle in the snapshot is a
// finite number. Snapshots failing this are rejected and the previous valid
// pose is retained.
func (s Snapshot) Finite() bool {
	return s.Pos().IsFinite() &&
		gamemath.IsFinite(s.Yaw) &&
		gamemath.IsFinite(s.TurretYaw) &&
		gamemath.IsFinite(s.AimPitch)
}
