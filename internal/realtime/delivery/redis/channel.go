package redis

import (
	"fmt"
	"strings"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
)

// parseChannel maps a channel name to the event skeleton it addresses. Entity
// channels return a non-nil ref and a room-scoped event whose room is still
// empty.
func parseChannel(channel string) (realtime.Event, *entityRef, error) {
	switch {
	case channel == channelAll:
		return realtime.Event{Scope: realtime.ScopeAll}, nil, nil

	case strings.HasPrefix(channel, channelRoom):
		room := strings.TrimPrefix(channel, channelRoom)
		if err := realtime.ValidateRoomID(room); err != nil {
			return realtime.Event{}, nil, fmt.Errorf("%w %q: %w", ErrInvalidChannel, channel, err)
		}
		return realtime.Event{Scope: realtime.ScopeRoom, Room: room}, nil, nil

	case strings.HasPrefix(channel, channelUser):
		owner := strings.TrimPrefix(channel, channelUser)
		if owner == "" {
			return realtime.Event{}, nil, fmt.Errorf("%w %q", ErrInvalidChannel, channel)
		}
		return realtime.Event{Scope: realtime.ScopeOwner, Target: owner}, nil, nil

	case strings.HasPrefix(channel, channelConn):
		connID := strings.TrimPrefix(channel, channelConn)
		if connID == "" {
			return realtime.Event{}, nil, fmt.Errorf("%w %q", ErrInvalidChannel, channel)
		}
		return realtime.Event{Scope: realtime.ScopeConnection, Target: connID}, nil, nil

	case strings.HasPrefix(channel, channelEntity):
		typ, id, ok := strings.Cut(strings.TrimPrefix(channel, channelEntity), ":")
		if !ok || typ == "" || id == "" {
			return realtime.Event{}, nil, fmt.Errorf("%w %q", ErrInvalidChannel, channel)
		}
		return realtime.Event{Scope: realtime.ScopeRoom}, &entityRef{Type: typ, ID: id}, nil
	}

	return realtime.Event{}, nil, fmt.Errorf("%w %q", ErrInvalidChannel, channel)
}

// ChannelFor returns the channel a producer publishes e to.
// Relay events only originate from connected peers and have no channel.
func ChannelFor(e realtime.Event) (string, error) {
	switch e.Scope {
	case realtime.ScopeAll:
		return channelAll, nil
	case realtime.ScopeRoom:
		if err := realtime.ValidateRoomID(e.Room); err != nil {
			return "", err
		}
		return channelRoom + e.Room, nil
	case realtime.ScopeOwner:
		if e.Target == "" {
			return "", fmt.Errorf("%w: owner scope without target", ErrUnpublishable)
		}
		return channelUser + e.Target, nil
	case realtime.ScopeConnection:
		if e.Target == "" {
			return "", fmt.Errorf("%w: connection scope without target", ErrUnpublishable)
		}
		return channelConn + e.Target, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnpublishable, e.Scope)
	}
}

// EntityChannel is the channel for events about a stored record.
func EntityChannel(entityType, entityID string) string {
	return channelEntity + entityType + ":" + entityID
}
