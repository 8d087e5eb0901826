package proto

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the wire unit exchanged over the transport: one text frame
// carries exactly one envelope. Data stays raw so a handler can tell the
// difference between a missing field and a present-but-empty value
// (an empty chat message is legal; an absent data field is not).
type Envelope struct {
	Request string          `json:"request"`
	Data    json.RawMessage `json:"data"`
}

// Client-to-server request tags.
const (
	ReqSetUsername    = "client::set_username"
	ReqCreateRoom     = "client::create_room"
	ReqJoinRoom       = "client::join_room"
	ReqLeaveRoom      = "client::leave_room"
	ReqGetPublicRooms = "client::get_public_rooms"
	ReqSendMessage    = "client::send_message"
)

// Server-to-client event tags.
const (
	EvtUsername         = "server::username"
	EvtAttemptJoin      = "server::attempt_join"
	EvtJoinRoom         = "server::join_room"
	EvtNewPublicRoom    = "server::new_public_room"
	EvtDeletePublicRoom = "server::delete_public_room"
	EvtLeaveRoom        = "server::leave_room"
	EvtPublicRooms      = "server::public_rooms"
	EvtMessage          = "server::message"
	EvtUserStatusUpdate = "server::user_status_update"
)

// Validation failures at the envelope boundary. Per protocol, neither is
// answered on the wire: the frame is dropped and the connection stays open.
var (
	ErrNoRequest      = errors.New("envelope has no request field")
	ErrNoData         = errors.New("envelope has no data field")
	ErrUnknownRequest = errors.New("unknown request")
)

var knownRequests = map[string]struct{}{
	ReqSetUsername:    {},
	ReqCreateRoom:     {},
	ReqJoinRoom:       {},
	ReqLeaveRoom:      {},
	ReqGetPublicRooms: {},
	ReqSendMessage:    {},
}

// Validate checks envelope shape: a request tag the server knows and a
// data field that is present. Data may be empty ("" or {}) — only a
// genuinely absent field is rejected.
func (e Envelope) Validate() error {
	if e.Request == "" {
		return ErrNoRequest
	}
	if _, ok := knownRequests[e.Request]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, e.Request)
	}
	if e.Data == nil {
		return ErrNoData
	}
	return nil
}

// SetUsernameData renames the requesting client.
type SetUsernameData struct {
	Username string `json:"username"`
}

// CreateRoomData asks for a new room. Name is optional; a default is
// derived from the owner's display name.
type CreateRoomData struct {
	Public bool   `json:"public"`
	Name   string `json:"name,omitempty"`
}

// JoinRoomData joins a room by its six-letter code.
type JoinRoomData struct {
	Code string `json:"code"`
}

// UsernameData carries the generated display name sent right after connect.
type UsernameData struct {
	Username string `json:"username"`
}

// CodeData confirms a join or tells the creator which code to join.
type CodeData struct {
	Code string `json:"code"`
}

// PublicRoomData describes one public room in the listing.
type PublicRoomData struct {
	Code string `json:"code"`
	Name string `json:"name"`
	ID   string `json:"id"`
}

// DeletePublicRoomData removes a room from every client's listing.
type DeletePublicRoomData struct {
	ID string `json:"id"`
}

// MessageData is a chat message fanned out to a room.
type MessageData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// UserStatusData announces a member joining or leaving a room.
type UserStatusData struct {
	Username string `json:"username"`
	Join     bool   `json:"join"`
}

// Wrap builds an outbound envelope around an already-typed payload.
func Wrap(request string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s data: %w", request, err)
	}
	return Envelope{Request: request, Data: raw}, nil
}
