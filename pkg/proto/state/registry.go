package state

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/Alvin-LB/mcclient/pkg/proto"
	"github.com/Alvin-LB/mcclient/pkg/proto/util"
	"github.com/Alvin-LB/mcclient/pkg/util/errs"
)

// Factory creates a new zero-value instance of a clientbound packet,
// ready to be decoded into.
type Factory func() proto.Inbound

// Registry maps clientbound packet IDs of one protocol state to
// their packet factories.
type Registry struct {
	proto.State

	mu        sync.RWMutex // protects following fields
	factories map[proto.PacketID]Factory
}

// Packet registries for the three states that carry clientbound packets.
// The handshake state has none, the connection only ever sends in it.
var (
	Status = newRegistry(proto.StatusState)
	Login  = newRegistry(proto.LoginState)
	Play   = newRegistry(proto.PlayState)
)

func newRegistry(s proto.State) *Registry {
	return &Registry{
		State:     s,
		factories: map[proto.PacketID]Factory{},
	}
}

// ByState returns the packet registry for state s,
// or nil if the state has no clientbound packets.
func ByState(s proto.State) *Registry {
	switch s {
	case proto.StatusState:
		return Status
	case proto.LoginState:
		return Login
	case proto.PlayState:
		return Play
	}
	return nil
}

// Register registers a packet factory for id in the registry of state s.
// Registering the same id again replaces the previous factory.
func Register(s proto.State, id proto.PacketID, factory Factory) {
	r := ByState(s)
	if r == nil {
		panic(fmt.Sprintf("state %s has no clientbound packet registry", s))
	}
	r.Register(id, factory)
}

// Register registers a packet factory for id.
// The last registration for an id wins.
func (r *Registry) Register(id proto.PacketID, factory Factory) {
	r.mu.Lock()
	r.factories[id] = factory
	r.mu.Unlock()
}

// CreatePacket returns a new instance of the packet registered for id,
// or nil if the id is unknown in this registry.
func (r *Registry) CreatePacket(id proto.PacketID) proto.Inbound {
	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return factory()
}

// Dispatch decodes payload into the packet registered for id and runs its
// handler against s. Unknown packet ids are skipped without error.
//
// Decode and handler errors are wrapped as errs.SilentError since a single
// misbehaving packet must not take the connection down.
func (r *Registry) Dispatch(s proto.Session, id proto.PacketID, payload []byte) error {
	p := r.CreatePacket(id)
	if p == nil {
		return nil // unknown packet, skip
	}
	rd := bytes.NewReader(payload)
	if err := util.RecoverFunc(func() error { return p.Decode(rd) }); err != nil {
		return errs.WrapSilent(fmt.Errorf("error decoding packet %s in state %s: %w", id, r.State, err))
	}
	if rd.Len() != 0 {
		return errs.WrapSilent(fmt.Errorf("%w: packet %s in state %s left %d bytes unread",
			proto.ErrDecoderLeftBytes, id, r.State, rd.Len()))
	}
	if err := util.RecoverFunc(func() error { return p.Handle(s) }); err != nil {
		return errs.WrapSilent(fmt.Errorf("error handling packet %s in state %s: %w", id, r.State, err))
	}
	return nil
}
