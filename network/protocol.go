package network

import "encoding/json"

const (
	MsgTypeHeartbeat   = 1
	MsgTypeSubscribe   = 101
	MsgTypeUnsubscribe = 102
	MsgTypeWalk        = 201
	MsgTypeClearRoom   = 202
	MsgTypeSnapshot    = 301
	MsgTypeRoomChange  = 302
	MsgTypeFloorChange = 303
	MsgTypeError       = 399
)

// WalkRequest asks to place the player on a door of the current room.
type WalkRequest struct {
	Direction string `json:"direction"`
}

// ErrorReply carries a failed request back to the sender.
type ErrorReply struct {
	MsgID uint16 `json:"msg_id"`
	Error string `json:"error"`
}

// Encode marshals v as the JSON payload of a packet.
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Decode unmarshals the JSON payload of p into v.
func (p *Packet) Decode(v interface{}) error {
	return json.Unmarshal(p.Data, v)
}
