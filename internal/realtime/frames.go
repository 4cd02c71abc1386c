package realtime

import (
	"encoding/json"
	"fmt"
)

// FrameType is the discriminator of an inbound frame.
type FrameType string

const (
	FrameSubscribe        FrameType = "subscribe"
	FrameUnsubscribe      FrameType = "unsubscribe"
	FrameJoinRoom         FrameType = "join-room"
	FrameLeaveRoom        FrameType = "leave-room"
	FrameTyping           FrameType = "typing"
	FrameChatMessage      FrameType = "chat-message"
	FrameScreenShareStart FrameType = "screen-share-start"
	FrameScreenShareStop  FrameType = "screen-share-stop"
	FrameRecordingStart   FrameType = "recording-start"
	FrameRecordingStop    FrameType = "recording-stop"
	FrameOffer            FrameType = "offer"
	FrameAnswer           FrameType = "answer"
	FrameICECandidate     FrameType = "ice-candidate"
	FramePing             FrameType = "ping"
)

// Frame is a parsed inbound frame. The set of implementations is closed.
type Frame interface {
	Type() FrameType
	frame()
}

// JoinRoom is subscribe or join-room. Presence is set for join-room.
type JoinRoom struct {
	Room     string
	Presence bool
}

// LeaveRoom is unsubscribe or leave-room. Presence is set for leave-room.
type LeaveRoom struct {
	Room     string
	Presence bool
}

// RoomBroadcast covers typing, chat, screen share and recording notices.
type RoomBroadcast struct {
	Kind    FrameType
	Room    string
	Payload json.RawMessage
}

// Signal is a WebRTC negotiation message addressed to one connection.
type Signal struct {
	Kind    FrameType
	Target  string
	Payload json.RawMessage
}

type Ping struct{}

func (f JoinRoom) Type() FrameType {
	if f.Presence {
		return FrameJoinRoom
	}
	return FrameSubscribe
}

func (f LeaveRoom) Type() FrameType {
	if f.Presence {
		return FrameLeaveRoom
	}
	return FrameUnsubscribe
}

func (f RoomBroadcast) Type() FrameType { return f.Kind }
func (f Signal) Type() FrameType { return f.Kind }
func (Ping) Type() FrameType { return FramePing }

func (JoinRoom) frame() {}
func (LeaveRoom) frame() {}
func (RoomBroadcast) frame() {}
func (Signal) frame() {}
func (Ping) frame() {}

type rawFrame struct {
	Type    FrameType       `json:"type"`
	Room    string          `json:"room"`
	Target  string          `json:"target"`
	Payload json.RawMessage `json:"payload"`
}

// ParseFrame decodes an inbound frame. Errors wrap ErrMalformedFrame or
// ErrUnknownMessageType.
func ParseFrame(data []byte) (Frame, error) {
	var raw rawFrame
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if raw.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}

	switch raw.Type {
	case FrameSubscribe, FrameJoinRoom:
		if err := ValidateRoomID(raw.Room); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
		}
		return JoinRoom{Room: raw.Room, Presence: raw.Type == FrameJoinRoom}, nil

	case FrameUnsubscribe, FrameLeaveRoom:
		if err := ValidateRoomID(raw.Room); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
		}
		return LeaveRoom{Room: raw.Room, Presence: raw.Type == FrameLeaveRoom}, nil

	case FrameTyping, FrameChatMessage,
		FrameScreenShareStart, FrameScreenShareStop,
		FrameRecordingStart, FrameRecordingStop:
		if err := ValidateRoomID(raw.Room); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
		}
		return RoomBroadcast{Kind: raw.Type, Room: raw.Room, Payload: raw.Payload}, nil

	case FrameOffer, FrameAnswer, FrameICECandidate:
		if raw.Target == "" {
			return nil, fmt.Errorf("%w: %s requires target", ErrMalformedFrame, raw.Type)
		}
		if len(raw.Payload) == 0 || string(raw.Payload) == "null" {
			return nil, fmt.Errorf("%w: %s requires payload", ErrMalformedFrame, raw.Type)
		}
		return Signal{Kind: raw.Type, Target: raw.Target, Payload: raw.Payload}, nil

	case FramePing:
		return Ping{}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, raw.Type)
	}
}
