package netcomponents

import "github.com/yohamta/donburi"

type NetVelocityData struct {
	VelX, VelY, VelZ float64
}

var NetVelocity = donburi.NewComponentType[NetVelocityData]()

// LerpNetVelocity interpolates between two velocities.
func LerpNetVelocity(from, to NetVelocityData, t float64) *NetVelocityData {
	return &NetVelocityData{
		VelX: from.VelX + (to.VelX-from.VelX)*t,
		VelY: from.VelY + (to.VelY-from.VelY)*t,
		VelZ: from.VelZ + (to.VelZ-from.VelZ)*t,
	}
}
