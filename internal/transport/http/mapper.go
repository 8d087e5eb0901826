package http

import (
	"encoding/json"
	"fmt"

	"github.com/parlorchat/parlor-server/internal/core"
	"github.com/parlorchat/parlor-server/internal/proto"
)

// commandFromEnvelope translates a validated envelope into a core
// command. The data payload may still be malformed for its tag; that is
// reported as an error and the frame is dropped by the caller.
func commandFromEnvelope(env proto.Envelope) (*core.Command, error) {
	switch env.Request {
	case proto.ReqSetUsername:
		var d proto.SetUsernameData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("set_username data: %w", err)
		}
		return &core.Command{Kind: core.CommandSetUsername, Username: d.Username}, nil

	case proto.ReqCreateRoom:
		var d proto.CreateRoomData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("create_room data: %w", err)
		}
		return &core.Command{Kind: core.CommandCreateRoom, RoomName: d.Name, Public: d.Public}, nil

	case proto.ReqJoinRoom:
		var d proto.JoinRoomData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("join_room data: %w", err)
		}
		return &core.Command{Kind: core.CommandJoinRoom, Code: d.Code}, nil

	case proto.ReqLeaveRoom:
		return &core.Command{Kind: core.CommandLeaveRoom}, nil

	case proto.ReqGetPublicRooms:
		return &core.Command{Kind: core.CommandListPublicRooms}, nil

	case proto.ReqSendMessage:
		// The message payload is a bare JSON string, not an object.
		var text string
		if err := json.Unmarshal(env.Data, &text); err != nil {
			return nil, fmt.Errorf("send_message data: %w", err)
		}
		return &core.Command{Kind: core.CommandSendMessage, Text: text}, nil

	default:
		return nil, fmt.Errorf("%w: %s", proto.ErrUnknownRequest, env.Request)
	}
}

// envelopeFromEvent translates a core event into its wire envelope.
func envelopeFromEvent(ev *core.Event) (proto.Envelope, error) {
	switch ev.Kind {
	case core.EventUsername:
		return proto.Wrap(proto.EvtUsername, proto.UsernameData{Username: ev.Username})

	case core.EventAttemptJoin:
		return proto.Wrap(proto.EvtAttemptJoin, proto.CodeData{Code: ev.Code})

	case core.EventJoinConfirmed:
		return proto.Wrap(proto.EvtJoinRoom, proto.CodeData{Code: ev.Code})

	case core.EventNewPublicRoom:
		if ev.Room == nil {
			return proto.Envelope{}, fmt.Errorf("new public room event without room")
		}
		return proto.Wrap(proto.EvtNewPublicRoom, proto.PublicRoomData{
			Code: ev.Room.Code,
			Name: ev.Room.Name,
			ID:   ev.Room.OwnerID,
		})

	case core.EventDeletePublicRoom:
		return proto.Wrap(proto.EvtDeletePublicRoom, proto.DeletePublicRoomData{ID: ev.OwnerID})

	case core.EventRoomClosed:
		return proto.Wrap(proto.EvtLeaveRoom, struct{}{})

	case core.EventPublicRooms:
		rooms := make([]proto.PublicRoomData, 0, len(ev.Rooms))
		for _, r := range ev.Rooms {
			rooms = append(rooms, proto.PublicRoomData{Code: r.Code, Name: r.Name, ID: r.OwnerID})
		}
		return proto.Wrap(proto.EvtPublicRooms, rooms)

	case core.EventMessage:
		if ev.Message == nil {
			return proto.Envelope{}, fmt.Errorf("message event without message")
		}
		return proto.Wrap(proto.EvtMessage, proto.MessageData{
			ID:       ev.Message.SenderID,
			Username: ev.Message.SenderName,
			Message:  ev.Message.Text,
		})

	case core.EventUserStatus:
		return proto.Wrap(proto.EvtUserStatusUpdate, proto.UserStatusData{
			Username: ev.Username,
			Join:     ev.Join,
		})

	default:
		return proto.Envelope{}, fmt.Errorf("unmapped event kind %d", ev.Kind)
	}
}
