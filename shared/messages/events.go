package messages

// EntityLeft is the authoritative removal signal for a tank. Snapshots that
// arrive for the id afterwards are dropped, not resurrected.
type EntityLeft struct {
	ID uint
}

// Ping is sent by the client to measure round-trip time.
type Ping struct {
	Sent int64 // client clock, unix ms
}

// Pong echoes a Ping back unchanged.
type Pong struct {
	Sent int64
}
