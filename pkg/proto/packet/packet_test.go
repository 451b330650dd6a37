package packet

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alvin-LB/mcclient/pkg/proto"
	"github.com/Alvin-LB/mcclient/pkg/proto/state"
	"github.com/Alvin-LB/mcclient/pkg/proto/util"
)

type recordSession struct {
	state     proto.State
	threshold int
	sent      []proto.Outbound
	events    []any
	reason    string
}

var _ proto.Session = (*recordSession)(nil)

func (s *recordSession) Username() string               { return "Tester" }
func (s *recordSession) State() proto.State             { return s.state }
func (s *recordSession) SetState(st proto.State)        { s.state = st }
func (s *recordSession) CompressionThreshold() int      { return s.threshold }
func (s *recordSession) SetCompressionThreshold(th int) { s.threshold = th }
func (s *recordSession) SendPacket(p proto.Outbound) error {
	s.sent = append(s.sent, p)
	return nil
}
func (s *recordSession) EnableEncryption([]byte) error { return nil }
func (s *recordSession) Disconnect(reason string)      { s.reason = reason }
func (s *recordSession) FireEvent(e any)               { s.events = append(s.events, e) }

func TestHandshakeEncode(t *testing.T) {
	h := &Handshake{
		ProtocolVersion: 340,
		ServerAddress:   "localhost",
		Port:            25565,
		NextState:       proto.LoginState,
	}
	buf := new(bytes.Buffer)
	require.NoError(t, h.Encode(buf))

	rd := bytes.NewReader(buf.Bytes())
	version, err := util.ReadVarInt(rd)
	require.NoError(t, err)
	assert.Equal(t, 340, version)
	addr, err := util.ReadString(rd)
	require.NoError(t, err)
	assert.Equal(t, "localhost", addr)
	port, err := util.ReadUint16(rd)
	require.NoError(t, err)
	assert.Equal(t, uint16(25565), port)
	next, err := util.ReadVarInt(rd)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
	assert.Zero(t, rd.Len())
}

func TestLoginStartEncode(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, (&LoginStart{Username: "Notch"}).Encode(buf))
	name, err := util.ReadString(buf)
	require.NoError(t, err)
	assert.Equal(t, "Notch", name)
}

func TestLoginSuccessSwitchesToPlay(t *testing.T) {
	id := uuid.New()
	buf := new(bytes.Buffer)
	require.NoError(t, util.WriteString(buf, id.String()))
	require.NoError(t, util.WriteString(buf, "Notch"))

	p := new(LoginSuccess)
	require.NoError(t, p.Decode(buf))
	assert.Equal(t, id, p.UUID)
	assert.Equal(t, "Notch", p.Username)

	s := &recordSession{state: proto.LoginState}
	require.NoError(t, p.Handle(s))
	assert.Equal(t, proto.PlayState, s.state)
	require.Len(t, s.events, 1)
	assert.Equal(t, &LoginEvent{UUID: id, Username: "Notch"}, s.events[0])
}

func TestLoginSuccessRejectsBadUUID(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, util.WriteString(buf, "not-a-uuid"))
	require.NoError(t, util.WriteString(buf, "Notch"))
	require.Error(t, new(LoginSuccess).Decode(buf))
}

func TestSetCompressionHandle(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, util.WriteVarInt(buf, 256))

	p := new(SetCompression)
	require.NoError(t, p.Decode(buf))

	s := new(recordSession)
	require.NoError(t, p.Handle(s))
	assert.Equal(t, 256, s.threshold)
}

func TestEncryptionRequestDisconnects(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, util.WriteString(buf, ""))
	require.NoError(t, util.WriteBytes(buf, make([]byte, 162)))
	require.NoError(t, util.WriteBytes(buf, make([]byte, 4)))

	p := new(EncryptionRequest)
	require.NoError(t, p.Decode(buf))

	s := new(recordSession)
	require.NoError(t, p.Handle(s))
	assert.NotEmpty(t, s.reason)
}

func TestDisconnectHandle(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, util.WriteString(buf, `{"text":"Server full"}`))

	p := new(Disconnect)
	require.NoError(t, p.Decode(buf))

	s := new(recordSession)
	require.NoError(t, p.Handle(s))
	assert.Equal(t, `{"text":"Server full"}`, s.reason)
}

func TestKeepAliveEcho(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, util.WriteVarInt(buf, 42))

	p := new(KeepAlive)
	require.NoError(t, p.Decode(buf))
	assert.Equal(t, 42, p.RandomID)

	s := new(recordSession)
	require.NoError(t, p.Handle(s))
	require.Len(t, s.sent, 1)
	echo, ok := s.sent[0].(*KeepAlive)
	require.True(t, ok)
	assert.Equal(t, 42, echo.RandomID)
	assert.Equal(t, KeepAliveServerboundID, echo.ID())
}

func TestStatusResponseFiresEventAndPings(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, util.WriteString(buf, `{"version":{"name":"1.12.2"}}`))

	p := new(StatusResponse)
	require.NoError(t, p.Decode(buf))

	s := &recordSession{state: proto.StatusState}
	require.NoError(t, p.Handle(s))
	require.Len(t, s.events, 1)
	assert.Equal(t, &StatusEvent{Status: `{"version":{"name":"1.12.2"}}`}, s.events[0])
	require.Len(t, s.sent, 1)
	assert.IsType(t, &StatusPing{}, s.sent[0])
}

func TestStatusPongFiresPingEvent(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, util.WriteInt64(buf, 123456789))

	p := new(StatusPong)
	require.NoError(t, p.Decode(buf))

	s := new(recordSession)
	require.NoError(t, p.Handle(s))
	require.Len(t, s.events, 1)
	assert.Equal(t, &PingEvent{Payload: 123456789}, s.events[0])
}

func TestBuiltinRegistrations(t *testing.T) {
	for _, tt := range []struct {
		state proto.State
		id    proto.PacketID
		want  proto.Inbound
	}{
		{proto.StatusState, StatusResponseID, &StatusResponse{}},
		{proto.StatusState, StatusPongID, &StatusPong{}},
		{proto.LoginState, LoginDisconnectID, &Disconnect{}},
		{proto.LoginState, EncryptionRequestID, &EncryptionRequest{}},
		{proto.LoginState, LoginSuccessID, &LoginSuccess{}},
		{proto.LoginState, SetCompressionID, &SetCompression{}},
		{proto.PlayState, KeepAliveClientboundID, &KeepAlive{}},
		{proto.PlayState, PlayDisconnectID, &Disconnect{}},
	} {
		p := state.ByState(tt.state).CreatePacket(tt.id)
		require.NotNil(t, p, "state %s id %s", tt.state, tt.id)
		assert.IsType(t, tt.want, p)
	}
}
