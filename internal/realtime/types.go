package realtime

import (
	"encoding/json"
	"time"
)

// TransportKind distinguishes full-duplex connections from push-only streams.
type TransportKind int

const (
	Bidirectional TransportKind = iota
	PushOnly
)

func (k TransportKind) String() string {
	switch k {
	case Bidirectional:
		return "websocket"
	case PushOnly:
		return "sse"
	default:
		return "unknown"
	}
}

// HeartbeatState is the liveness state of a connection.
type HeartbeatState int32

const (
	Alive HeartbeatState = iota
	AwaitingPong
	Evicted
)

func (s HeartbeatState) String() string {
	switch s {
	case Alive:
		return "ALIVE"
	case AwaitingPong:
		return "AWAITING_PONG"
	case Evicted:
		return "EVICTED"
	default:
		return "UNKNOWN"
	}
}

// CloseReason tells a Transport why it is being closed.
type CloseReason int

const (
	CloseNormal CloseReason = iota
	CloseEvicted
	ClosePolicyViolation
	CloseShutdown
)

// Outbound is one serialized event ready for the wire. It is shared
// read-only by every connection the event was dispatched to.
type Outbound struct {
	Name string
	// Sequence is zero when no id was allocated.
	Sequence uint64
	// Data is the SSE data line: the JSON payload, or a RelayedData
	// wrapper when the event has an origin.
	Data []byte
	// Frame is the full JSON envelope sent over WebSocket.
	Frame []byte
}

// RelayedData is the push-only form of a relayed event.
type RelayedData struct {
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

// Envelope is the outbound WebSocket frame.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	From    string `json:"from,omitempty"`
	Seq     uint64 `json:"seq,omitempty"`
}

// Scope selects the connections an Event is delivered to.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeRoom
	ScopeConnection
	ScopeOwner
	ScopeRelay
)

func (s Scope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeRoom:
		return "room"
	case ScopeConnection:
		return "connection"
	case ScopeOwner:
		return "owner"
	case ScopeRelay:
		return "relay"
	default:
		return "unknown"
	}
}

// Event is a unit of work for the dispatcher.
type Event struct {
	Scope Scope
	Room  string
	// Target is a connection id for ScopeConnection and ScopeRelay, or an
	// owner id for ScopeOwner.
	Target  string
	From    string
	Exclude string
	Name    string
	Payload any
}

func BroadcastAll(name string, payload any) Event {
	return Event{Scope: ScopeAll, Name: name, Payload: payload}
}

func BroadcastRoom(room, name string, payload any) Event {
	return Event{Scope: ScopeRoom, Room: room, Name: name, Payload: payload}
}

func Unicast(connID, name string, payload any) Event {
	return Event{Scope: ScopeConnection, Target: connID, Name: name, Payload: payload}
}

func ToOwner(ownerID, name string, payload any) Event {
	return Event{Scope: ScopeOwner, Target: ownerID, Name: name, Payload: payload}
}

// Relay addresses a single peer and tags the event with its origin.
func Relay(from, to, name string, payload any) Event {
	return Event{Scope: ScopeRelay, From: from, Target: to, Name: name, Payload: payload}
}

// Excluding returns a copy of e that skips connID.
func (e Event) Excluding(connID string) Event {
	e.Exclude = connID
	return e
}

// ConnectInput carries an authenticated transport into the registry.
type ConnectInput struct {
	OwnerID   string
	Transport Transport
}

// RoomStats is a point in time view of the room index.
type RoomStats struct {
	Rooms       int `json:"rooms"`
	Memberships int `json:"memberships"`
}

// Stats is exposed on the metrics and health endpoints.
type Stats struct {
	ActiveConnections int       `json:"active_connections"`
	WebSocket         int       `json:"websocket_connections"`
	SSE               int       `json:"sse_connections"`
	UniqueOwners      int       `json:"unique_owners"`
	Rooms             RoomStats `json:"rooms"`
	TotalConnections  int64     `json:"total_connections"`
	EventsDispatched  int64     `json:"events_dispatched"`
	FramesDelivered   int64     `json:"frames_delivered"`
	FramesFailed      int64     `json:"frames_failed"`
	Evictions         int64     `json:"evictions"`
	LastSequence      uint64    `json:"last_sequence"`
	HeartbeatInterval string    `json:"heartbeat_interval"`
	StartedAt         time.Time `json:"started_at"`
}

// Event names emitted by the service itself.
const (
	EventConnected    = "connected"
	EventHeartbeat    = "heartbeat"
	EventPong         = "pong"
	EventUserJoined   = "user-joined"
	EventUserLeft     = "user-left"
	EventRoomMembers  = "room-members"
	EventSubscribed   = "subscribed"
	EventUnsubscribed = "unsubscribed"
)
