package packet

import (
	"io"

	"github.com/Alvin-LB/mcclient/pkg/proto"
	"github.com/Alvin-LB/mcclient/pkg/proto/util"
)

const (
	// KeepAliveClientboundID is the play state keep alive the server sends.
	KeepAliveClientboundID proto.PacketID = 0x1F
	// KeepAliveServerboundID is the play state keep alive the client echoes.
	KeepAliveServerboundID proto.PacketID = 0x0B
)

// KeepAlive carries a random id the client must echo back, or the
// server times the connection out.
type KeepAlive struct {
	RandomID int
}

var (
	_ proto.Inbound  = (*KeepAlive)(nil)
	_ proto.Outbound = (*KeepAlive)(nil)
)

func (k *KeepAlive) ID() proto.PacketID { return KeepAliveServerboundID }

func (k *KeepAlive) Decode(rd io.Reader) (err error) {
	k.RandomID, err = util.ReadVarInt(rd)
	return err
}

func (k *KeepAlive) Encode(wr io.Writer) error {
	return util.WriteVarInt(wr, k.RandomID)
}

// Handle echoes the keep alive back with the same id.
func (k *KeepAlive) Handle(s proto.Session) error {
	return s.SendPacket(&KeepAlive{RandomID: k.RandomID})
}
