package realtime

import (
	"sync"
	"sync/atomic"
	"time"
)

// Connection is one live client session. Identity fields are immutable;
// liveness and cursor are atomics written by the connection's own goroutines.
type Connection struct {
	id          string
	ownerID     string
	transport   Transport
	connectedAt time.Time

	lastLiveAt atomic.Int64
	cursor     atomic.Uint64
	state      atomic.Int32

	leaseMu  sync.Mutex
	lease    *time.Timer
	released bool
}

func NewConnection(id, ownerID string, t Transport, now time.Time) *Connection {
	c := &Connection{
		id:          id,
		ownerID:     ownerID,
		transport:   t,
		connectedAt: now,
	}
	c.lastLiveAt.Store(now.UnixNano())
	return c
}

func (c *Connection) ID() string { return c.id }
func (c *Connection) OwnerID() string { return c.ownerID }
func (c *Connection) Transport() Transport { return c.transport }
func (c *Connection) Kind() TransportKind { return c.transport.Kind() }
func (c *Connection) ConnectedAt() time.Time { return c.connectedAt }
func (c *Connection) Cursor() uint64 { return c.cursor.Load() }
func (c *Connection) State() HeartbeatState { return HeartbeatState(c.state.Load()) }
func (c *Connection) LastLiveAt() time.Time { return time.Unix(0, c.lastLiveAt.Load()) }
func (c *Connection) IdleFor(now time.Time) time.Duration { return now.Sub(c.LastLiveAt()) }

// Touch records liveness. A connection awaiting a pong returns to ALIVE.
func (c *Connection) Touch(now time.Time) {
	c.lastLiveAt.Store(now.UnixNano())
	c.state.CompareAndSwap(int32(AwaitingPong), int32(Alive))
}

// MarkWritten advances the outbound cursor after a successful push write.
func (c *Connection) MarkWritten(seq uint64) {
	if seq == 0 {
		return
	}
	for {
		cur := c.cursor.Load()
		if seq <= cur || c.cursor.CompareAndSwap(cur, seq) {
			return
		}
	}
}

// BeginPing moves an ALIVE connection to AWAITING_PONG.
func (c *Connection) BeginPing() bool {
	return c.state.CompareAndSwap(int32(Alive), int32(AwaitingPong))
}

// MarkEvicted reports whether this call performed the transition.
func (c *Connection) MarkEvicted() bool {
	return HeartbeatState(c.state.Swap(int32(Evicted))) != Evicted
}

// AttachLease installs the heartbeat timer. It stops t and returns false
// when the lease was already released.
func (c *Connection) AttachLease(t *time.Timer) bool {
	c.leaseMu.Lock()
	defer c.leaseMu.Unlock()
	if c.released {
		t.Stop()
		return false
	}
	c.lease = t
	return true
}

// RenewLease re-arms the heartbeat timer unless it was released.
func (c *Connection) RenewLease(d time.Duration) bool {
	c.leaseMu.Lock()
	defer c.leaseMu.Unlock()
	if c.released || c.lease == nil {
		return false
	}
	c.lease.Reset(d)
	return true
}

// ReleaseLease stops the heartbeat timer for good. Safe to call repeatedly.
func (c *Connection) ReleaseLease() {
	c.leaseMu.Lock()
	defer c.leaseMu.Unlock()
	c.released = true
	if c.lease != nil {
		c.lease.Stop()
	}
}

// LeaseReleased reports whether ReleaseLease was called.
func (c *Connection) LeaseReleased() bool {
	c.leaseMu.Lock()
	defer c.leaseMu.Unlock()
	return c.released
}
