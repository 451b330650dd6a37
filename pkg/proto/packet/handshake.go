package packet

import (
	"io"

	"github.com/Alvin-LB/mcclient/pkg/proto"
	"github.com/Alvin-LB/mcclient/pkg/proto/util"
)

// HandshakeID is the id of the only serverbound handshake state packet.
const HandshakeID proto.PacketID = 0x00

// Handshake opens a connection and announces the state the
// client intends to switch to.
type Handshake struct {
	ProtocolVersion int
	ServerAddress   string
	Port            int
	NextState       proto.State
}

var _ proto.Outbound = (*Handshake)(nil)

func (h *Handshake) ID() proto.PacketID { return HandshakeID }

func (h *Handshake) Encode(wr io.Writer) error {
	if err := util.WriteVarInt(wr, h.ProtocolVersion); err != nil {
		return err
	}
	if err := util.WriteString(wr, h.ServerAddress); err != nil {
		return err
	}
	if err := util.WriteUint16(wr, uint16(h.Port)); err != nil {
		return err
	}
	return util.WriteVarInt(wr, h.NextState.HandshakeID())
}
