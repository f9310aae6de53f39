package leveldata

// Obstacle is an axis-aligned solid block on the arena floor, in world units
// on the X/Z ground plane.
type Obstacle struct {
	X, Z, Width, Depth float64
}

// SpawnPoint is a tank spawn location.
type SpawnPoint struct {
	X, Z float64
}

// Arena holds the static geometry both the renderer and the prediction
// collision space are built from.
type Arena struct {
	Name    string
	Width   float64 // world units along X
	Depth   float64 // world units along Z
	Walls   []Obstacle
	Spawns  []SpawnPoint
}
