package packet

import "github.com/google/uuid"

// LoginEvent is fired when the server confirms the login and
// the session enters the play state.
type LoginEvent struct {
	UUID     uuid.UUID
	Username string
}

// StatusEvent is fired when the server answers a status request.
type StatusEvent struct {
	// Status is the raw JSON status listing.
	Status string
}

// PingEvent is fired when the server echoes a status ping.
type PingEvent struct {
	// Payload is the echoed ping payload, the send
	// timestamp in unix milliseconds.
	Payload int64
}
