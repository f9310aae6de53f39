package messages

// DriveInput is sent from client to server with the player's control state.
// Used for server-side movement processing and client-side prediction
// reconciliation.
type DriveInput struct {
	Sequence  uint32  // incrementing id for reconciliation
	Throttle  int     // -1 reverse, 0 coast, 1 forward
	Steer     int     // -1 left, 0 straight, 1 right
	TurretYaw float64 // absolute aim, radians
	AimPitch  float64 // radians, negative = down
	Fire      bool
	Timestamp int64 // client timestamp (unix ms)
}
