package messages

// EntityStatus is the server's alive/dead flag for a tank.
type EntityStatus uint8

const (
	StatusAlive EntityStatus = iota
	StatusDead
)

// TankSnapshot is a complete, timestamp-free description of one tank as
// decoded from a server state broadcast. The receive time is attached on the
// client when the snapshot enters the sync engine.
type TankSnapshot struct {
	ID        uint // network id
	X, Y, Z   float64
	Yaw       float64
	TurretYaw float64
	AimPitch  float64
	Health    int
	MaxHealth int
	Status    EntityStatus
	Team      int // 0 = unassigned
}

// Roster is a full world snapshot: every live tank the server knows about.
// Ids absent from a roster are pruned on the client.
type Roster struct {
	Tanks []TankSnapshot
}

// Reconciliation carries the server's authoritative pose for the receiving
// client's own tank. Sent at a lower rate than tank snapshots.
type Reconciliation struct {
	X, Y, Z      float64
	Yaw          float64
	TurretYaw    float64
	AimPitch     float64
	VelX, VelZ   float64
	LastSequence uint32 // last input sequence the server processed
}
