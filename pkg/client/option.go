package client

import (
	"time"

	"github.com/go-logr/logr"
	"github.com/robinbraemer/event"
)

// Option configures a Session on creation.
type Option func(*Session)

// WithLogger sets the session's logger. The default discards all logs.
func WithLogger(log logr.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithProtocol overrides the protocol version announced in the handshake.
func WithProtocol(version int) Option {
	return func(s *Session) { s.protocol = version }
}

// WithDialTimeout sets the connect timeout. The default is 30 seconds.
func WithDialTimeout(d time.Duration) Option {
	return func(s *Session) { s.dialTimeout = d }
}

// WithCompressionLevel sets the zlib level used once the server enables
// compression. The default is zlib.DefaultCompression.
func WithCompressionLevel(level int) Option {
	return func(s *Session) { s.compressionLevel = level }
}

// WithEventManager sets the event bus the session fires events on.
// By default each session gets its own.
func WithEventManager(mgr event.Manager) Option {
	return func(s *Session) { s.events = mgr }
}
