package packet

import (
	"io"

	"github.com/Alvin-LB/mcclient/pkg/proto"
	"github.com/Alvin-LB/mcclient/pkg/proto/util"
)

// PlayDisconnectID is the clientbound play state disconnect packet id.
// The login state variant is LoginDisconnectID.
const PlayDisconnectID proto.PacketID = 0x1A

// Disconnect is sent by the server right before it closes the connection.
// It is registered in both the login and the play state.
type Disconnect struct {
	// Reason is a JSON chat component explaining the disconnect.
	Reason string
}

var _ proto.Inbound = (*Disconnect)(nil)

func (d *Disconnect) Decode(rd io.Reader) (err error) {
	d.Reason, err = util.ReadString(rd)
	return err
}

func (d *Disconnect) Handle(s proto.Session) error {
	s.Disconnect(d.Reason)
	return nil
}
