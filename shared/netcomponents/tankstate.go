package netcomponents

import (
	"github.com/bastionworks/ironclad-mp/shared/messages"
	"github.com/yohamta/donburi"
)

type NetTankStateData struct {
	Health       int
	MaxHealth    int
	Status       messages.EntityStatus
	Team         int
	LastSequence uint32 // last input sequence processed by the server
	IsLocal      bool   // client-side only, not synced
}

var NetTankState = donburi.NewComponentType[NetTankStateData]()
