package messages

// CannonType selects the shell's flight profile and visuals.
type CannonType uint8

const (
	CannonStandard CannonType = iota
	CannonGatling
	CannonMortar
)

// ProjectileSpawn announces a server-simulated shell. Clients ignore spawns
// for shells they fired themselves (those are locally predicted).
type ProjectileSpawn struct {
	ID               uint
	OwnerID          uint
	X, Y, Z          float64
	VelX, VelY, VelZ float64
	Cannon           CannonType
}

// ProjectileUpdate is a periodic kinematic correction for a tracked shell.
// Latest wins; there is no update queue.
type ProjectileUpdate struct {
	ID               uint
	X, Y, Z          float64
	VelX, VelY, VelZ float64
}

// ProjectileHit ends a shell's life, either on impact or server-side despawn.
type ProjectileHit struct {
	ID       uint
	TargetID uint // 0 if the shell hit terrain or expired
}
