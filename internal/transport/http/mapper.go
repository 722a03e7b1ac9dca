package http

import (
	"encoding/json"
	"time"

	"github.com/ezchat/ezchat-server/internal/core"
	"github.com/ezchat/ezchat-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinServer:
		var join proto.JoinServerData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Server == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "server is required"}, nil
		}
		if join.Username == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "username is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: proto.RoomKey(join.Server, join.Group),
			User: join.Username,
		}, nil, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.Server == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "server is required"}, nil
		}
		// The session identity set at join is authoritative for the
		// author; msg.User is not trusted. Creation time is assigned
		// by the store, not taken from msg.Timestamp.
		return &core.Command{
			Kind: core.CommandSendMessage,
			Room: proto.RoomKey(msg.Server, msg.Group),
			Text: msg.Text,
		}, nil, nil
	case proto.InboundTypePinMessage:
		var pin proto.PinMessageData
		if err := json.Unmarshal(inbound.Data, &pin); err != nil {
			return nil, nil, err
		}
		if pin.MessageID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "messageId is required"}, nil
		}
		return &core.Command{
			Kind:      core.CommandPinMessage,
			MessageID: pin.MessageID,
			Pinned:    pin.IsPinned,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventHistory:
		messages := make([]proto.MessagePayload, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, messagePayload(msg))
		}
		return proto.Outbound{
			Type: proto.OutboundTypeHistory,
			Data: proto.HistoryPayload{
				Room:     event.Room,
				Messages: messages,
			},
		}
	case core.EventPresence:
		return proto.Outbound{
			Type: proto.OutboundTypeUsersUpdate,
			Data: proto.UsersUpdatePayload{
				Room:  event.Room,
				Users: event.Users,
			},
		}
	case core.EventRoomMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeMessage,
			Data: messagePayload(event.Message),
		}
	case core.EventPinUpdate:
		return proto.Outbound{
			Type: proto.OutboundTypePinUpdate,
			Data: proto.PinUpdatePayload{
				MessageID: event.Message.ID,
				RoomKey:   event.Message.Room,
				IsPinned:  event.Message.Pinned,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}
	}
}

func messagePayload(msg *core.Message) proto.MessagePayload {
	return proto.MessagePayload{
		ID:        msg.ID,
		Room:      msg.Room,
		User:      msg.From,
		Text:      msg.Text,
		IsPinned:  msg.Pinned,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
