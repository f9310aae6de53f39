package protocol

import (
	"github.com/bastionworks/ironclad-mp/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetPose      uint = 10
	SyncIDNetVelocity  uint = 11
	SyncIDNetTankState uint = 12
)

// Interpolation IDs (uint8 for WithInterpFn)
const (
	InterpIDNetPose     uint8 = 10
	InterpIDNetVelocity uint8 = 11
)

// RegisterComponents registers all network components with necs for
// serialization. Both server and client must call this before any network
// operations.
func RegisterComponents() error {
	if err := esync.RegisterComponent(
		SyncIDNetPose,
		netcomponents.NetPoseData{},
		netcomponents.NetPose,
		esync.WithInterpFn(InterpIDNetPose, netcomponents.LerpNetPose),
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetVelocity,
		netcomponents.NetVelocityData{},
		netcomponents.NetVelocity,
		esync.WithInterpFn(InterpIDNetVelocity, netcomponents.LerpNetVelocity),
	); err != nil {
		return err
	}

	// TankState: no interpolation (discrete state changes)
	return esync.RegisterComponent(
		SyncIDNetTankState,
		netcomponents.NetTankStateData{},
		netcomponents.NetTankState,
	)
}
