package core

import (
	"time"

	"github.com/bastionworks/ironclad-mp/network"
	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/yohamta/donburi"
)

// TankSession holds per-client server state. It is not a donburi component
// and is never synced.
type TankSession struct {
	Entity donburi.Entity
	Body   *network.TankBody
	Name   string

	// Latest input snapshot (written by onDriveInput, read by the tick).
	Input        messages.DriveInput
	LastInputSeq uint32

	Cannon   messages.CannonType
	LastFire time.Time

	Health    int
	Status    messages.EntityStatus
	RespawnAt time.Time
}

func (ts *TankSession) alive() bool {
	return ts.Status == messages.StatusAlive
}
