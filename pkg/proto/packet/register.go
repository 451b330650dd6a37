package packet

import (
	"github.com/Alvin-LB/mcclient/pkg/proto"
	"github.com/Alvin-LB/mcclient/pkg/proto/state"
)

// Packet ids are those of protocol version 340 (Minecraft 1.12.2).
func init() {
	state.Register(proto.StatusState, StatusResponseID, func() proto.Inbound { return new(StatusResponse) })
	state.Register(proto.StatusState, StatusPongID, func() proto.Inbound { return new(StatusPong) })

	state.Register(proto.LoginState, LoginDisconnectID, func() proto.Inbound { return new(Disconnect) })
	state.Register(proto.LoginState, EncryptionRequestID, func() proto.Inbound { return new(EncryptionRequest) })
	state.Register(proto.LoginState, LoginSuccessID, func() proto.Inbound { return new(LoginSuccess) })
	state.Register(proto.LoginState, SetCompressionID, func() proto.Inbound { return new(SetCompression) })

	state.Register(proto.PlayState, KeepAliveClientboundID, func() proto.Inbound { return new(KeepAlive) })
	state.Register(proto.PlayState, PlayDisconnectID, func() proto.Inbound { return new(Disconnect) })
}
