package redis

import "encoding/json"

const (
	ChannelPrefix  = "realtime:"
	PatternChannel = ChannelPrefix + "*"

	channelAll    = ChannelPrefix + "all"
	channelRoom   = ChannelPrefix + "room:"
	channelUser   = ChannelPrefix + "user:"
	channelConn   = ChannelPrefix + "conn:"
	channelEntity = ChannelPrefix + "entity:"
)

// Message is the body producers publish.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Exclude string          `json:"exclude,omitempty"`
}

// entityRef names a record whose room is resolved at delivery time.
type entityRef struct {
	Type string
	ID   string
}
