package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/log"
)

// supervisor holds one heartbeat lease per connection. A lease is a timer
// that pings the connection every interval until it is released by removal.
type supervisor struct {
	interval time.Duration
	now      func() time.Time
	evict    func(ctx context.Context, connID string, cause error)
	logger   log.Logger
}

func newSupervisor(l log.Logger, interval time.Duration, now func() time.Time, evict func(context.Context, string, error)) *supervisor {
	return &supervisor{interval: interval, now: now, evict: evict, logger: l}
}

// Track acquires the lease for a newly registered connection.
func (s *supervisor) Track(conn *realtime.Connection) {
	conn.AttachLease(time.AfterFunc(s.interval, func() { s.tick(conn) }))
}

func (s *supervisor) tick(conn *realtime.Connection) {
	if conn.LeaseReleased() {
		return
	}
	if err := s.check(conn); err != nil {
		ctx := context.Background()
		s.logger.Infof(ctx, "internal.realtime.usecase.supervisor.tick: evicting %s (%s): %v", conn.ID(), conn.Kind(), err)
		s.evict(ctx, conn.ID(), err)
		return
	}
	conn.RenewLease(s.interval)
}

func (s *supervisor) check(conn *realtime.Connection) error {
	switch conn.Kind() {
	case realtime.PushOnly:
		// Write success is the liveness signal; no acknowledgment is expected.
		if err := conn.Transport().Ping(); err != nil {
			return fmt.Errorf("%w: heartbeat: %v", realtime.ErrWriteFailure, err)
		}
	default:
		if idle := conn.IdleFor(s.now()); idle > 2*s.interval {
			return fmt.Errorf("%w: idle for %s", realtime.ErrLivenessTimeout, idle.Round(time.Millisecond))
		}
		conn.BeginPing()
		if err := conn.Transport().Ping(); err != nil {
			return fmt.Errorf("%w: ping: %v", realtime.ErrWriteFailure, err)
		}
	}
	return nil
}
