package netcomponents

import "github.com/yohamta/donburi"

// NetPoseData is the wire pose of a tank: chassis position and yaw plus the
// independently-aimed turret.
type NetPoseData struct {
	X, Y, Z   float64
	Yaw       float64
	TurretYaw float64
	AimPitch  float64
}

var NetPose = donburi.NewComponentType[NetPoseData]()

// LerpNetPose interpolates between two poses. Angles are blended linearly
// here; the client-side interpolator applies shortest-path wrapping before
// rendering, this fallback only serves esync's own frame smoothing.
func LerpNetPose(from, to NetPoseData, t float64) *NetPoseData {
	return &NetPoseData{
		X:         from.X + (to.X-from.X)*t,
		Y:         from.Y + (to.Y-from.Y)*t,
		Z:         from.Z + (to.Z-from.Z)*t,
		Yaw:       to.Yaw,
		TurretYaw: to.TurretYaw,
		AimPitch:  to.AimPitch,
	}
}
