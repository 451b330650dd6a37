package client

// DisconnectEvent is fired exactly once when a session closes,
// whatever the cause.
type DisconnectEvent struct {
	// Reason is a short human readable close reason. For server initiated
	// disconnects it is the server's JSON chat component.
	Reason string
	// Cause is the underlying error, if the close was caused by one.
	Cause error
}
