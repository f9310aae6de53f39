// Package assets embeds static game data shared by the client and the dev
// server binary.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bastionworks/ironclad-mp/shared/leveldata"
)

//go:embed arenas/*.tmx
var FS embed.FS

// ListArenaNames returns the embedded arena names, sorted.
func ListArenaNames() []string {
	entries, err := fs.ReadDir(FS, "arenas")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmx") {
			names = append(names, strings.TrimSuffix(e.Name(), ".tmx"))
		}
	}
	sort.Strings(names)
	return names
}

// LoadArena loads an embedded arena by name.
func LoadArena(name string) (*leveldata.Arena, error) {
	arena, err := leveldata.LoadArena(FS, path.Join("arenas", name+".tmx"))
	if err != nil {
		return nil, fmt.Errorf("arena %q: %w", name, err)
	}
	arena.Name = name
	return arena, nil
}
