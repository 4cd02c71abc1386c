package realtime

import "errors"

var (
	ErrAuthRejected       = errors.New("authentication rejected")
	ErrMalformedFrame     = errors.New("malformed frame")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrWriteFailure       = errors.New("write failure")
	ErrLivenessTimeout    = errors.New("liveness timeout")

	ErrDuplicateConnection   = errors.New("duplicate connection id")
	ErrConnectionNotFound    = errors.New("connection not found")
	ErrMaxConnectionsReached = errors.New("maximum connections reached")
	ErrInvalidRoomID         = errors.New("invalid room id")
	ErrNotRoomMember         = errors.New("not a member of the room")
	ErrInvalidSignal         = errors.New("invalid signaling payload")

	// ErrSendBufferFull is returned by a Transport when its outbound queue is full.
	ErrSendBufferFull = errors.New("send buffer full")
	// ErrConnectionClosed is returned by a Transport after Close.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrShuttingDown rejects new connections once Shutdown has started.
	ErrShuttingDown = errors.New("server shutting down")
)
