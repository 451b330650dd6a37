// Package proto defines the core contracts of the Minecraft Java edition
// client protocol: connection states, packet interfaces and the session
// surface packet handlers run against.
package proto

import (
	"errors"
	"fmt"
	"io"
)

// ErrDecoderLeftBytes is returned when a packet decoder did not read all
// bytes of a frame's payload. The packet is dropped since partially decoded
// data cannot be trusted.
var ErrDecoderLeftBytes = errors.New("decoder did not read all bytes of packet")

// State is a protocol state of the connection.
// Packet ids are only meaningful relative to a state.
type State int

// The protocol states in the order the handshake packet numbers them.
// HandshakeState is the implicit initial state and never appears on the wire.
const (
	HandshakeState State = iota - 1
	PlayState
	StatusState
	LoginState
)

func (s State) String() string {
	switch s {
	case HandshakeState:
		return "Handshake"
	case StatusState:
		return "Status"
	case LoginState:
		return "Login"
	case PlayState:
		return "Play"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// HandshakeID returns the state's wire id used in the
// handshake packet's next-state field.
func (s State) HandshakeID() int { return int(s) }

// StateFromHandshakeID returns the state for a handshake next-state wire id.
func StateFromHandshakeID(id int) (State, bool) {
	switch State(id) {
	case PlayState, StatusState, LoginState:
		return State(id), true
	}
	return HandshakeState, false
}

// PacketID is a packet's id within one direction of one protocol state.
type PacketID int

func (id PacketID) String() string { return fmt.Sprintf("%#x", int(id)) }

// Inbound is a clientbound packet that can be decoded
// from a frame payload and then handled.
type Inbound interface {
	// Decode reads the packet's fields from rd.
	Decode(rd io.Reader) error
	// Handle reacts to the decoded packet.
	Handle(s Session) error
}

// Outbound is a serverbound packet that can be encoded into a frame.
type Outbound interface {
	// ID returns the packet's id in the session's current state.
	ID() PacketID
	// Encode writes the packet's fields to wr.
	Encode(wr io.Writer) error
}

// Session is the connection surface exposed to packet handlers.
//
// All mutators schedule their work onto the session's task goroutine, the
// only goroutine that writes to the connection. Handlers run on the reader
// goroutine; the two mutations taking effect there directly are SetState and
// the decoder side of SetCompressionThreshold, both of which must be observed
// by the very next frame read.
type Session interface {
	// Username returns the username the session logs in with.
	Username() string
	// State returns the session's current protocol state.
	State() State
	// SetState switches the session's protocol state.
	SetState(s State)
	// CompressionThreshold returns the current compression
	// threshold, negative if compression is disabled.
	CompressionThreshold() int
	// SetCompressionThreshold reconfigures the frame layout
	// for both directions.
	SetCompressionThreshold(threshold int)
	// SendPacket schedules p to be written to the connection.
	// It returns an error if the session is already closed.
	SendPacket(p Outbound) error
	// EnableEncryption schedules enabling AES/CFB8 encryption
	// with the given shared secret for both directions.
	EnableEncryption(secret []byte) error
	// Disconnect closes the session, recording reason.
	Disconnect(reason string)
	// FireEvent publishes e on the session's event bus.
	FireEvent(e any)
}
