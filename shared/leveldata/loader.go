package leveldata

import (
	"fmt"
	"io/fs"

	"github.com/lafriks/go-tiled"
)

// LoadArena parses a TMX file and returns the arena geometry (wall obstacles
// and spawn points). It takes an fs.FS so callers can pass embed.FS (client)
// or os.DirFS (server).
func LoadArena(fsys fs.FS, tmxPath string) (*Arena, error) {
	arenaMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	arena := &Arena{
		Width: float64(arenaMap.Width * arenaMap.TileWidth),
		Depth: float64(arenaMap.Height * arenaMap.TileHeight),
	}

	for _, group := range arenaMap.ObjectGroups {
		switch group.Name {
		case "walls":
			for _, obj := range group.Objects {
				arena.Walls = append(arena.Walls, Obstacle{
					X:     obj.X,
					Z:     obj.Y,
					Width: obj.Width,
					Depth: obj.Height,
				})
			}
		case "spawns":
			for _, obj := range group.Objects {
				arena.Spawns = append(arena.Spawns, SpawnPoint{X: obj.X, Z: obj.Y})
			}
		}
	}

	if len(arena.Walls) == 0 {
		return nil, fmt.Errorf("arena %s has no walls object group", tmxPath)
	}
	return arena, nil
}
