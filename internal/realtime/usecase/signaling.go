package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
)

// route handles one parsed inbound frame. The switch covers every Frame
// implementation; anything else is logged and ignored.
func (uc *implUseCase) route(ctx context.Context, conn *realtime.Connection, frame realtime.Frame) error {
	switch f := frame.(type) {
	case realtime.JoinRoom:
		return uc.handleJoin(ctx, conn, f)
	case realtime.LeaveRoom:
		return uc.handleLeave(ctx, conn, f)
	case realtime.RoomBroadcast:
		return uc.handleRoomBroadcast(ctx, conn, f)
	case realtime.Signal:
		return uc.handleSignal(ctx, conn, f)
	case realtime.Ping:
		uc.Dispatch(ctx, realtime.Unicast(conn.ID(), realtime.EventPong, pongPayload{Timestamp: uc.now().UTC()}))
		return nil
	default:
		uc.logger.Warnf(ctx, "internal.realtime.usecase.route: unhandled frame %T", frame)
		return nil
	}
}

func (uc *implUseCase) handleJoin(ctx context.Context, conn *realtime.Connection, f realtime.JoinRoom) error {
	joined, err := uc.reg.Join(f.Room, conn.ID())
	if err != nil {
		return err
	}

	if !f.Presence {
		uc.Dispatch(ctx, realtime.Unicast(conn.ID(), realtime.EventSubscribed, subscriptionPayload{Room: f.Room}))
		return nil
	}

	if joined {
		uc.Dispatch(ctx, realtime.BroadcastRoom(f.Room, realtime.EventUserJoined, presencePayload{
			Room:         f.Room,
			UserID:       conn.OwnerID(),
			ConnectionID: conn.ID(),
		}).Excluding(conn.ID()))
	}

	members := make([]member, 0)
	for _, id := range uc.rooms.MembersOf(f.Room) {
		if id == conn.ID() {
			continue
		}
		if c, ok := uc.reg.Get(id); ok {
			members = append(members, member{ConnectionID: id, UserID: c.OwnerID()})
		}
	}
	uc.Dispatch(ctx, realtime.Unicast(conn.ID(), realtime.EventRoomMembers, roomMembersPayload{
		Room:    f.Room,
		Members: members,
	}))
	return nil
}

func (uc *implUseCase) handleLeave(ctx context.Context, conn *realtime.Connection, f realtime.LeaveRoom) error {
	left, err := uc.reg.Leave(f.Room, conn.ID())
	if err != nil {
		return err
	}

	if !f.Presence {
		uc.Dispatch(ctx, realtime.Unicast(conn.ID(), realtime.EventUnsubscribed, subscriptionPayload{Room: f.Room}))
		return nil
	}
	if left {
		uc.Dispatch(ctx, realtime.BroadcastRoom(f.Room, realtime.EventUserLeft, presencePayload{
			Room:         f.Room,
			UserID:       conn.OwnerID(),
			ConnectionID: conn.ID(),
		}))
	}
	return nil
}

func (uc *implUseCase) handleRoomBroadcast(ctx context.Context, conn *realtime.Connection, f realtime.RoomBroadcast) error {
	if !uc.rooms.IsMember(f.Room, conn.ID()) {
		return fmt.Errorf("%w: %s", realtime.ErrNotRoomMember, f.Room)
	}
	uc.Dispatch(ctx, realtime.BroadcastRoom(f.Room, string(f.Kind), roomEventPayload{
		Room:         f.Room,
		UserID:       conn.OwnerID(),
		ConnectionID: conn.ID(),
		Data:         f.Payload,
	}).Excluding(conn.ID()))
	return nil
}

// handleSignal forwards a WebRTC negotiation message to one peer. The sender
// needs no room membership. An unknown target is dropped silently.
func (uc *implUseCase) handleSignal(ctx context.Context, conn *realtime.Connection, f realtime.Signal) error {
	if _, ok := uc.reg.Get(conn.ID()); !ok {
		return realtime.ErrConnectionNotFound
	}
	if err := validateSignal(f); err != nil {
		return err
	}
	uc.Dispatch(ctx, realtime.Relay(conn.ID(), f.Target, string(f.Kind), f.Payload))
	return nil
}

func validateSignal(f realtime.Signal) error {
	switch f.Kind {
	case realtime.FrameOffer, realtime.FrameAnswer:
		var desc webrtc.SessionDescription
		if err := json.Unmarshal(f.Payload, &desc); err != nil {
			return fmt.Errorf("%w: %v", realtime.ErrInvalidSignal, err)
		}
		if !sdpTypeMatches(f.Kind, desc.Type) {
			return fmt.Errorf("%w: %s frame carries %s description", realtime.ErrInvalidSignal, f.Kind, desc.Type)
		}
		if _, err := desc.Unmarshal(); err != nil {
			return fmt.Errorf("%w: sdp: %v", realtime.ErrInvalidSignal, err)
		}
	case realtime.FrameICECandidate:
		var candidate webrtc.ICECandidateInit
		if err := json.Unmarshal(f.Payload, &candidate); err != nil {
			return fmt.Errorf("%w: %v", realtime.ErrInvalidSignal, err)
		}
	default:
		return fmt.Errorf("%w: %s", realtime.ErrInvalidSignal, f.Kind)
	}
	return nil
}

func sdpTypeMatches(kind realtime.FrameType, t webrtc.SDPType) bool {
	switch kind {
	case realtime.FrameOffer:
		return t == webrtc.SDPTypeOffer
	case realtime.FrameAnswer:
		return t == webrtc.SDPTypeAnswer || t == webrtc.SDPTypePranswer
	default:
		return false
	}
}
