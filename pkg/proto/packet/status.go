package packet

import (
	"io"
	"time"

	"github.com/Alvin-LB/mcclient/pkg/proto"
	"github.com/Alvin-LB/mcclient/pkg/proto/util"
)

const (
	// Status state packet ids, identical server- and clientbound.
	StatusRequestID  proto.PacketID = 0x00
	StatusResponseID proto.PacketID = 0x00
	StatusPingID     proto.PacketID = 0x01
	StatusPongID     proto.PacketID = 0x01
)

// StatusRequest asks the server for its status listing.
type StatusRequest struct{}

var _ proto.Outbound = (*StatusRequest)(nil)

func (r *StatusRequest) ID() proto.PacketID     { return StatusRequestID }
func (r *StatusRequest) Encode(io.Writer) error { return nil }

// StatusResponse carries the server's status listing as a JSON document.
type StatusResponse struct {
	Status string
}

var _ proto.Inbound = (*StatusResponse)(nil)

func (r *StatusResponse) Decode(rd io.Reader) (err error) {
	r.Status, err = util.ReadString(rd)
	return err
}

// Handle publishes the status and follows up with a ping to
// measure round trip latency.
func (r *StatusResponse) Handle(s proto.Session) error {
	s.FireEvent(&StatusEvent{Status: r.Status})
	return s.SendPacket(&StatusPing{Payload: time.Now().UnixMilli()})
}

// StatusPing carries an arbitrary payload the server echoes in StatusPong.
type StatusPing struct {
	Payload int64
}

var _ proto.Outbound = (*StatusPing)(nil)

func (p *StatusPing) ID() proto.PacketID { return StatusPingID }

func (p *StatusPing) Encode(wr io.Writer) error {
	return util.WriteInt64(wr, p.Payload)
}

// StatusPong is the server's echo of a StatusPing payload.
type StatusPong struct {
	Payload int64
}

var _ proto.Inbound = (*StatusPong)(nil)

func (p *StatusPong) Decode(rd io.Reader) (err error) {
	payload, err := util.ReadInt64(rd)
	p.Payload = payload
	return err
}

func (p *StatusPong) Handle(s proto.Session) error {
	s.FireEvent(&PingEvent{Payload: p.Payload})
	return nil
}
