// Package client implements the Minecraft Java edition client session:
// connection lifecycle, the single-writer task loop and the reader loop.
package client

import (
	"bufio"
	"compress/zlib"
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/robinbraemer/event"
	"github.com/rs/xid"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/Alvin-LB/mcclient/pkg/proto"
	"github.com/Alvin-LB/mcclient/pkg/proto/codec"
	"github.com/Alvin-LB/mcclient/pkg/proto/packet"
	"github.com/Alvin-LB/mcclient/pkg/proto/state"
	"github.com/Alvin-LB/mcclient/pkg/util/errs"
)

// DefaultProtocolVersion is protocol version 340, Minecraft 1.12.2.
const DefaultProtocolVersion = 340

// ErrClosedSession is returned by operations on an already closed session.
var ErrClosedSession = errors.New("session is closed")

// Session is one client connection to a server.
//
// All connection writes happen on a single task goroutine; public mutators
// schedule their work onto it and return immediately. A second goroutine
// reads frames and runs packet handlers. Both stop when the session closes.
type Session struct {
	log      logr.Logger
	id       xid.ID
	username string
	host     string
	port     int

	protocol         int
	dialTimeout      time.Duration
	compressionLevel int

	events event.Manager
	tasks  *taskQueue

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}

	state  atomic.Int32  // proto.State
	reason atomic.String // first disconnect reason

	mu       sync.Mutex // protects following fields
	conn     net.Conn
	readBuf  *bufio.Reader
	writeBuf *bufio.Writer
	dec      *codec.Decoder
	enc      *codec.Encoder
}

var _ proto.Session = (*Session)(nil)

// NewSession dials host:port and starts a session for username.
// The returned session is usable immediately; operations scheduled before
// the dial completes run once it does. Dial errors close the session.
func NewSession(username, host string, port int, opts ...Option) *Session {
	s := newSession(username, host, port, opts...)
	go s.run(nil)
	return s
}

// NewSessionConn starts a session for username on an established connection.
func NewSessionConn(conn net.Conn, username string, opts ...Option) *Session {
	s := newSession(username, conn.RemoteAddr().String(), 0, opts...)
	go s.run(conn)
	return s
}

func newSession(username, host string, port int, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		log:              logr.Discard(),
		id:               xid.New(),
		username:         username,
		host:             host,
		port:             port,
		protocol:         DefaultProtocolVersion,
		dialTimeout:      30 * time.Second,
		compressionLevel: zlib.DefaultCompression,
		tasks:            newTaskQueue(),
		ctx:              ctx,
		cancel:           cancel,
		done:             make(chan struct{}),
	}
	s.state.Store(int32(proto.HandshakeState))
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithName("session").WithValues("sessionID", s.id.String(), "username", username)
	if s.events == nil {
		s.events = event.New()
	}
	return s
}

func (s *Session) run(conn net.Conn) {
	defer close(s.done)
	if conn == nil {
		d := net.Dialer{Timeout: s.dialTimeout}
		var err error
		conn, err = d.DialContext(s.ctx, "tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)))
		if err != nil {
			s.disconnect("connection failed", err)
			return
		}
	}

	s.mu.Lock()
	s.conn = conn
	s.readBuf = bufio.NewReader(conn)
	s.writeBuf = bufio.NewWriter(conn)
	s.dec = codec.NewDecoder(s.readBuf, s.log.V(1))
	s.enc = codec.NewEncoder(s.writeBuf, s.log.V(1))
	s.mu.Unlock()
	if s.Closed() { // closed while dialing
		_ = conn.Close()
		return
	}
	s.log.Info("session connected", "addr", conn.RemoteAddr().String())

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(s.readLoop)
	g.Go(func() error { return s.taskLoop(ctx) })
	if err := g.Wait(); err != nil {
		s.log.V(1).Info("session loops stopped", "error", err.Error())
	}
	s.disconnect("connection closed", nil)
}

// taskLoop runs queued tasks in submission order.
// It is the only goroutine that writes to the connection.
func (s *Session) taskLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.tasks.wake:
			for {
				task, ok := s.tasks.pop()
				if !ok {
					break
				}
				task()
			}
		}
	}
}

// readLoop reads frames and dispatches them against the current
// state's packet registry until the connection errors or closes.
func (s *Session) readLoop() error {
	for {
		frame, err := s.dec.Decode()
		if err != nil {
			return s.handleReadErr(err)
		}
		s.handleFrame(frame)
	}
}

func (s *Session) handleReadErr(err error) error {
	if s.Closed() {
		return nil // normal shutdown
	}
	if errs.IsConnClosedErr(err) {
		s.disconnect("connection closed by server", err)
		return nil
	}
	// The stream cannot be resynchronized after a framing error.
	s.disconnect("protocol error", err)
	return err
}

func (s *Session) handleFrame(frame *codec.Frame) {
	registry := state.ByState(s.State())
	if registry == nil {
		return
	}
	if err := registry.Dispatch(s, frame.PacketID, frame.Payload); err != nil {
		if errs.IsSilent(err) {
			s.log.V(1).Info("dropped packet", "packetID", frame.PacketID, "error", err.Error())
			return
		}
		s.log.Error(err, "error handling packet", "packetID", frame.PacketID)
	}
}

// Login schedules the offline-mode login flow: a handshake switching to
// the login state followed by the login start packet.
func (s *Session) Login() error {
	return s.schedule(func() {
		s.switchState(proto.LoginState)
		s.writePacket(&packet.LoginStart{Username: s.username})
	})
}

// Status schedules a status query: a handshake switching to the status
// state followed by the status request. The response fires a StatusEvent
// and a PingEvent on the session's event bus.
func (s *Session) Status() error {
	return s.schedule(func() {
		s.switchState(proto.StatusState)
		s.writePacket(&packet.StatusRequest{})
	})
}

// switchState sends the handshake announcing next and then switches the
// session's state, so the handshake is still framed under the old state.
func (s *Session) switchState(next proto.State) {
	s.writePacket(&packet.Handshake{
		ProtocolVersion: s.protocol,
		ServerAddress:   s.host,
		Port:            s.port,
		NextState:       next,
	})
	s.state.Store(int32(next))
}

// SendPacket schedules p to be written to the connection.
func (s *Session) SendPacket(p proto.Outbound) error {
	return s.schedule(func() { s.writePacket(p) })
}

func (s *Session) writePacket(p proto.Outbound) {
	if s.Closed() {
		return
	}
	_, err := s.enc.WritePacket(p)
	if err == nil {
		err = s.enc.Sync(s.writeBuf.Flush)
	}
	if err != nil {
		s.disconnect("write failed", err)
	}
}

// SetCompressionThreshold reconfigures the frame layout for both directions.
// The decoder side applies immediately so that the very next frame read uses
// the new layout; the encoder side is scheduled like any other write mutation.
func (s *Session) SetCompressionThreshold(threshold int) {
	if dec := s.decoder(); dec != nil {
		dec.SetCompressionThreshold(threshold)
	}
	_ = s.schedule(func() {
		if err := s.enc.SetCompressionThreshold(threshold, s.compressionLevel); err != nil {
			s.disconnect("enabling compression failed", err)
		}
	})
}

// CompressionThreshold returns the current compression
// threshold, negative if compression is disabled.
func (s *Session) CompressionThreshold() int {
	dec := s.decoder()
	if dec == nil {
		return -1
	}
	return dec.CompressionThreshold()
}

func (s *Session) decoder() *codec.Decoder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dec
}

// EnableEncryption schedules enabling AES/CFB8 stream encryption with the
// given shared secret for both directions. Frames already buffered are
// written before the switch.
func (s *Session) EnableEncryption(secret []byte) error {
	return s.schedule(func() {
		rd, err := codec.NewDecryptReader(s.readBuf, secret)
		if err != nil {
			s.disconnect("enabling encryption failed", err)
			return
		}
		wr, err := codec.NewEncryptWriter(s.writeBuf, secret)
		if err != nil {
			s.disconnect("enabling encryption failed", err)
			return
		}
		s.dec.SetReader(rd)
		s.enc.SetWriter(wr)
	})
}

func (s *Session) schedule(task func()) error {
	if s.Closed() {
		return ErrClosedSession
	}
	s.tasks.push(task)
	return nil
}

// Username returns the username the session logs in with.
func (s *Session) Username() string { return s.username }

// State returns the session's current protocol state.
func (s *Session) State() proto.State { return proto.State(s.state.Load()) }

// SetState switches the session's protocol state. Packet handlers may call
// it directly, it takes effect for the next frame read.
func (s *Session) SetState(st proto.State) { s.state.Store(int32(st)) }

// Events returns the session's event bus.
func (s *Session) Events() event.Manager { return s.events }

// FireEvent publishes e on the session's event bus.
func (s *Session) FireEvent(e any) { s.events.Fire(e) }

// Closed reports whether the session is closed.
func (s *Session) Closed() bool { return s.ctx.Err() != nil }

// Done returns a channel closed when the session's goroutines have exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// DisconnectReason returns the reason the session was
// closed with, or the empty string while it is open.
func (s *Session) DisconnectReason() string { return s.reason.Load() }

// Disconnect closes the session, recording reason.
func (s *Session) Disconnect(reason string) { s.disconnect(reason, nil) }

// Close closes the session. It is safe to call from any goroutine and
// returns ErrClosedSession if the session was already closed.
func (s *Session) Close() error {
	if s.Closed() {
		return ErrClosedSession
	}
	s.disconnect("closed by client", nil)
	return nil
}

// disconnect closes the session exactly once: it records the reason, cancels
// the context, closes the connection to unblock the reader and fires a
// DisconnectEvent. Closing the connection is the cancellation primitive, a
// blocking read cannot be interrupted any other way.
func (s *Session) disconnect(reason string, cause error) {
	s.closeOnce.Do(func() {
		s.reason.Store(reason)
		s.cancel()
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		if cause != nil {
			s.log.Info("session disconnected", "reason", reason, "error", cause.Error())
		} else {
			s.log.Info("session disconnected", "reason", reason)
		}
		s.events.Fire(&DisconnectEvent{Reason: reason, Cause: cause})
	})
}
