package realtime

import "context"

// Transport is the per-connection write side. Enqueue and Ping never block
// on network I/O; the transport's own writer goroutine performs the write.
type Transport interface {
	Kind() TransportKind
	Enqueue(out *Outbound) error
	// Ping requests a liveness check: a ping control frame for WebSocket,
	// a heartbeat event for SSE.
	Ping() error
	Close(reason CloseReason)
}

// UseCase is the fan-out layer used by the delivery packages.
type UseCase interface {
	// Connection lifecycle
	Authenticate(ctx context.Context, token string) (string, error)
	Connect(ctx context.Context, input ConnectInput) (*Connection, error)
	Disconnect(ctx context.Context, connID string, cause error)
	Touch(connID string)
	HandleFrame(ctx context.Context, connID string, data []byte) error

	// Dispatch returns the number of connections the event was queued for.
	Dispatch(ctx context.Context, e Event) int
	// DispatchEntity resolves the room of an entity through the record store
	// and broadcasts e to it.
	DispatchEntity(ctx context.Context, entityType, entityID string, e Event) (int, error)

	// Membership
	Join(ctx context.Context, connID, room string) error
	Leave(ctx context.Context, connID, room string) error
	MembersOf(room string) []string
	RoomsOf(connID string) []string

	Stats() Stats
	Shutdown(ctx context.Context) error
}
