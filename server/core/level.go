package core

import (
	"fmt"

	"github.com/bastionworks/ironclad-mp/assets"
	"github.com/bastionworks/ironclad-mp/shared/leveldata"
	"github.com/bastionworks/ironclad-mp/tags"
	"github.com/solarlune/resolv"
)

// ServerArena is the authoritative collision space plus spawn rotation.
type ServerArena struct {
	Arena *leveldata.Arena
	Space *resolv.Space

	nextSpawn int
}

// NewServerArena loads an embedded arena and builds its resolv.Space.
func NewServerArena(name string) (*ServerArena, error) {
	arena, err := assets.LoadArena(name)
	if err != nil {
		return nil, err
	}
	if len(arena.Spawns) == 0 {
		return nil, fmt.Errorf("arena %q has no spawn points", name)
	}

	space := resolv.NewSpace(int(arena.Width), int(arena.Depth), 16, 16)
	for _, w := range arena.Walls {
		obj := resolv.NewObject(w.X, w.Z, w.Width, w.Depth, tags.ResolvSolid)
		obj.SetShape(resolv.NewRectangle(0, 0, w.Width, w.Depth))
		space.Add(obj)
	}

	return &ServerArena{Arena: arena, Space: space}, nil
}

// Capacity is how many tanks the arena can host, one per spawn point.
func (sa *ServerArena) Capacity() int {
	return len(sa.Arena.Spawns)
}

// NextSpawn hands out spawn points round-robin.
func (sa *ServerArena) NextSpawn() leveldata.SpawnPoint {
	spawn := sa.Arena.Spawns[sa.nextSpawn%len(sa.Arena.Spawns)]
	sa.nextSpawn++
	return spawn
}
