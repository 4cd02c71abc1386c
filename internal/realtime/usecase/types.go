package usecase

import (
	"encoding/json"
	"time"
)

const DefaultHeartbeatInterval = 30 * time.Second

// Options configures the fan-out use case.
type Options struct {
	HeartbeatInterval time.Duration
	// MaxConnections <= 0 means unlimited.
	MaxConnections int
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type connectedPayload struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
}

type presencePayload struct {
	Room         string `json:"room"`
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
}

type member struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
}

type roomMembersPayload struct {
	Room    string   `json:"room"`
	Members []member `json:"members"`
}

type subscriptionPayload struct {
	Room string `json:"room"`
}

type roomEventPayload struct {
	Room         string          `json:"room"`
	UserID       string          `json:"userId"`
	ConnectionID string          `json:"connectionId"`
	Data         json.RawMessage `json:"data,omitempty"`
}

type pongPayload struct {
	Timestamp time.Time `json:"timestamp"`
}
