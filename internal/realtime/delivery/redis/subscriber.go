package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/log"
	pkgRedis "github.com/Jim-devENG/ispora-engine-sub009/pkg/redis"
)

const (
	defaultMaxRetries = 10
	defaultRetryDelay = 5 * time.Second
)

// Subscriber turns producer messages published on realtime:* channels into
// dispatches.
type Subscriber struct {
	client *pkgRedis.Client
	uc     realtime.UseCase
	logger log.Logger

	pubsub  *goredis.PubSub
	pattern string
	mu      sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	maxRetries int
	retryDelay time.Duration

	lastMessageAt time.Time
	received      atomic.Int64
	dropped       atomic.Int64
	isActive      atomic.Bool
}

func NewSubscriber(client *pkgRedis.Client, uc realtime.UseCase, l log.Logger) *Subscriber {
	ctx, cancel := context.WithCancel(context.Background())
	return &Subscriber{
		client:     client,
		uc:         uc,
		logger:     l,
		pattern:    PatternChannel,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
}

// Start subscribes and begins routing in the background. The subscription is
// confirmed before Start returns.
func (s *Subscriber) Start() error {
	if s.ctx.Err() != nil {
		return ErrSubscriberClosed
	}

	pubsub := s.client.PSubscribe(s.ctx, s.pattern)
	if _, err := pubsub.Receive(s.ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("internal.realtime.delivery.redis.Start.Receive: %w", err)
	}

	s.mu.Lock()
	s.pubsub = pubsub
	s.mu.Unlock()
	s.isActive.Store(true)

	s.logger.Infof(s.ctx, "redis subscriber listening on pattern %s", s.pattern)
	go s.listen(pubsub.Channel())
	return nil
}

func (s *Subscriber) listen(ch <-chan *goredis.Message) {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info(context.Background(), "redis subscriber stopped")
			return

		case msg, ok := <-ch:
			if !ok {
				if s.ctx.Err() != nil {
					return
				}
				s.logger.Error(s.ctx, "redis pub/sub channel closed, reconnecting")
				next, err := s.reconnect()
				if err != nil {
					s.isActive.Store(false)
					s.logger.Errorf(s.ctx, "internal.realtime.delivery.redis.listen.reconnect: %v", err)
					return
				}
				ch = next
				continue
			}
			s.handleMessage(s.ctx, msg.Channel, msg.Payload)
		}
	}
}

// handleMessage routes one message. Bad messages are logged and dropped.
func (s *Subscriber) handleMessage(ctx context.Context, channel, payload string) {
	s.mu.Lock()
	s.lastMessageAt = time.Now()
	s.mu.Unlock()
	s.received.Add(1)

	e, ref, err := parseChannel(channel)
	if err != nil {
		s.dropped.Add(1)
		s.logger.Warnf(ctx, "internal.realtime.delivery.redis.handleMessage.parseChannel: %v", err)
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		s.dropped.Add(1)
		s.logger.Warnf(ctx, "internal.realtime.delivery.redis.handleMessage.Unmarshal: channel %s: %v", channel, err)
		return
	}
	if msg.Event == "" {
		s.dropped.Add(1)
		s.logger.Warnf(ctx, "internal.realtime.delivery.redis.handleMessage: channel %s: %v", channel, ErrMissingEvent)
		return
	}

	e.Name = msg.Event
	e.Exclude = msg.Exclude
	if len(msg.Payload) > 0 {
		e.Payload = msg.Payload
	}

	if ref != nil {
		n, err := s.uc.DispatchEntity(ctx, ref.Type, ref.ID, e)
		if err != nil {
			s.dropped.Add(1)
			s.logger.Warnf(ctx, "internal.realtime.delivery.redis.handleMessage.DispatchEntity: %s/%s: %v", ref.Type, ref.ID, err)
			return
		}
		s.logger.Debugf(ctx, "routed %s for %s/%s to %d connections", msg.Event, ref.Type, ref.ID, n)
		return
	}

	n := s.uc.Dispatch(ctx, e)
	s.logger.Debugf(ctx, "routed %s from %s to %d connections", msg.Event, channel, n)
}

func (s *Subscriber) reconnect() (<-chan *goredis.Message, error) {
	for i := 0; i < s.maxRetries; i++ {
		s.logger.Infof(s.ctx, "reconnecting to redis (attempt %d/%d)", i+1, s.maxRetries)

		s.mu.Lock()
		if s.pubsub != nil {
			_ = s.pubsub.Close()
		}
		pubsub := s.client.PSubscribe(s.ctx, s.pattern)
		s.pubsub = pubsub
		s.mu.Unlock()

		if _, err := pubsub.Receive(s.ctx); err == nil {
			s.logger.Info(s.ctx, "reconnected to redis")
			return pubsub.Channel(), nil
		}

		select {
		case <-s.ctx.Done():
			return nil, s.ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
	return nil, fmt.Errorf("failed to reconnect to redis after %d attempts", s.maxRetries)
}

// HealthInfo is reported on /health.
type HealthInfo struct {
	Active        bool      `json:"active"`
	Pattern       string    `json:"pattern"`
	LastMessageAt time.Time `json:"last_message_at"`
	Received      int64     `json:"received"`
	Dropped       int64     `json:"dropped"`
}

func (s *Subscriber) GetHealthInfo() HealthInfo {
	s.mu.RLock()
	last := s.lastMessageAt
	s.mu.RUnlock()

	return HealthInfo{
		Active:        s.isActive.Load(),
		Pattern:       s.pattern,
		LastMessageAt: last,
		Received:      s.received.Load(),
		Dropped:       s.dropped.Load(),
	}
}

// Shutdown stops routing and waits for the listener to exit.
func (s *Subscriber) Shutdown(ctx context.Context) error {
	s.isActive.Store(false)
	s.cancel()

	s.mu.Lock()
	pubsub := s.pubsub
	s.mu.Unlock()
	if pubsub == nil {
		return nil
	}
	if err := pubsub.Close(); err != nil {
		s.logger.Errorf(ctx, "internal.realtime.delivery.redis.Shutdown.Close: %v", err)
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
