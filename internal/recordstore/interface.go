package recordstore

import "context"

// Store is the fan-out layer's only view of persisted business entities.
type Store interface {
	// IsActiveUser reports whether a token subject still maps to a live account.
	IsActiveUser(ctx context.Context, userID string) (bool, error)
	// RoomOf returns the room an entity's events are broadcast to.
	RoomOf(ctx context.Context, entityType, entityID string) (string, error)
}
