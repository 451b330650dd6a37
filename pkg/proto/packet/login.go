package packet

import (
	"io"

	"github.com/google/uuid"

	"github.com/Alvin-LB/mcclient/pkg/proto"
	"github.com/Alvin-LB/mcclient/pkg/proto/util"
)

const (
	// Serverbound login state packet ids.
	LoginStartID proto.PacketID = 0x00

	// Clientbound login state packet ids.
	LoginDisconnectID   proto.PacketID = 0x00
	EncryptionRequestID proto.PacketID = 0x01
	LoginSuccessID      proto.PacketID = 0x02
	SetCompressionID    proto.PacketID = 0x03
)

// LoginStart begins the login flow for a username.
// Offline-mode servers accept it without further authentication.
type LoginStart struct {
	Username string
}

var _ proto.Outbound = (*LoginStart)(nil)

func (l *LoginStart) ID() proto.PacketID { return LoginStartID }

func (l *LoginStart) Encode(wr io.Writer) error {
	return util.WriteString(wr, l.Username)
}

// LoginSuccess completes the login flow.
// The connection is in the play state immediately after this packet.
type LoginSuccess struct {
	UUID     uuid.UUID
	Username string
}

var _ proto.Inbound = (*LoginSuccess)(nil)

func (l *LoginSuccess) Decode(rd io.Reader) (err error) {
	id, err := util.ReadStringMax(rd, 36)
	if err != nil {
		return err
	}
	if l.UUID, err = uuid.Parse(id); err != nil {
		return err
	}
	l.Username, err = util.ReadStringMax(rd, 16)
	return err
}

func (l *LoginSuccess) Handle(s proto.Session) error {
	s.SetState(proto.PlayState)
	s.FireEvent(&LoginEvent{UUID: l.UUID, Username: l.Username})
	return nil
}

// SetCompression tells the client to use the compressed frame layout for
// all following packets, in both directions.
type SetCompression struct {
	Threshold int
}

var _ proto.Inbound = (*SetCompression)(nil)

func (c *SetCompression) Decode(rd io.Reader) (err error) {
	c.Threshold, err = util.ReadVarInt(rd)
	return err
}

func (c *SetCompression) Handle(s proto.Session) error {
	s.SetCompressionThreshold(c.Threshold)
	return nil
}

// EncryptionRequest asks the client to begin the protocol encryption
// handshake. That requires Mojang session authentication, so the client
// disconnects with an explanatory reason instead.
type EncryptionRequest struct {
	ServerID    string
	PublicKey   []byte
	VerifyToken []byte
}

var _ proto.Inbound = (*EncryptionRequest)(nil)

func (e *EncryptionRequest) Decode(rd io.Reader) (err error) {
	if e.ServerID, err = util.ReadStringMax(rd, 20); err != nil {
		return err
	}
	if e.PublicKey, err = util.ReadBytesLen(rd, 256); err != nil {
		return err
	}
	e.VerifyToken, err = util.ReadBytesLen(rd, 16)
	return err
}

func (e *EncryptionRequest) Handle(s proto.Session) error {
	s.Disconnect("server requires protocol encryption which is not supported")
	return nil
}
