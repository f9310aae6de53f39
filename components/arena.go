package components

import (
	"github.com/bastionworks/ironclad-mp/shared/leveldata"
	"github.com/yohamta/donburi"
)

// ArenaData holds the loaded arena so render and camera systems can query
// the wall layout and bounds.
type ArenaData struct {
	Arena *leveldata.Arena
}

var Arena = donburi.NewComponentType[ArenaData]()
