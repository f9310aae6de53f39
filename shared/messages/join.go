package messages

// JoinRequest is the first message a client sends after connecting.
type JoinRequest struct {
	Version    string
	PlayerName string
}

// JoinAccepted tells the client its identity and the match parameters.
type JoinAccepted struct {
	NetworkID  uint
	ServerName string
	TickRate   int
	Arena      string
}

// JoinRejected is sent when the server refuses a join (version mismatch,
// full match, bad name).
type JoinRejected struct {
	Reason string
}
