package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
	pkgRedis "github.com/Jim-devENG/ispora-engine-sub009/pkg/redis"
)

// Publisher is the producer side of the ingress channels.
type Publisher struct {
	client *pkgRedis.Client
}

func NewPublisher(client *pkgRedis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends e and returns the number of subscribers that received it.
func (p *Publisher) Publish(ctx context.Context, e realtime.Event) (int64, error) {
	channel, err := ChannelFor(e)
	if err != nil {
		return 0, err
	}
	body, err := encode(e)
	if err != nil {
		return 0, err
	}
	return p.client.Publish(ctx, channel, body).Result()
}

// PublishEntity sends e to the room of a stored record. e's scope is ignored.
func (p *Publisher) PublishEntity(ctx context.Context, entityType, entityID string, e realtime.Event) (int64, error) {
	if entityType == "" || entityID == "" {
		return 0, fmt.Errorf("%w: entity type and id are required", ErrUnpublishable)
	}
	body, err := encode(e)
	if err != nil {
		return 0, err
	}
	return p.client.Publish(ctx, EntityChannel(entityType, entityID), body).Result()
}

func encode(e realtime.Event) ([]byte, error) {
	if e.Name == "" {
		return nil, ErrMissingEvent
	}
	msg := Message{Event: e.Name, Exclude: e.Exclude}
	if e.Payload != nil {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("internal.realtime.delivery.redis.encode: %w", err)
		}
		msg.Payload = raw
	}
	return json.Marshal(msg)
}
