package usecase

import (
	"sync"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
)

// registry owns the live connections. Lock order is registry then room index.
type registry struct {
	mu     sync.RWMutex
	conns  map[string]*realtime.Connection
	owners map[string]map[string]struct{}
	rooms  *roomIndex
}

func newRegistry(rooms *roomIndex) *registry {
	return &registry{
		conns:  make(map[string]*realtime.Connection),
		owners: make(map[string]map[string]struct{}),
		rooms:  rooms,
	}
}

// Register inserts conn. A limit <= 0 means unlimited.
func (r *registry) Register(conn *realtime.Connection, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn.ID()]; ok {
		return realtime.ErrDuplicateConnection
	}
	if limit > 0 && len(r.conns) >= limit {
		return realtime.ErrMaxConnectionsReached
	}

	r.conns[conn.ID()] = conn
	if r.owners[conn.OwnerID()] == nil {
		r.owners[conn.OwnerID()] = make(map[string]struct{})
	}
	r.owners[conn.OwnerID()][conn.ID()] = struct{}{}
	return nil
}

func (r *registry) Get(id string) (*realtime.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// Remove deletes the connection, drops its room memberships in the same
// critical section and releases its heartbeat lease. It returns the rooms
// the connection was in. Removing an unknown id is a no-op.
func (r *registry) Remove(id string) (*realtime.Connection, []string, bool) {
	r.mu.Lock()
	conn, ok := r.conns[id]
	if !ok {
		r.mu.Unlock()
		return nil, nil, false
	}
	delete(r.conns, id)
	if set := r.owners[conn.OwnerID()]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(r.owners, conn.OwnerID())
		}
	}
	rooms := r.rooms.DropConnection(id)
	r.mu.Unlock()

	conn.ReleaseLease()
	return conn, rooms, true
}

// ForEach calls action for every connection matching pred over a snapshot,
// so action may remove connections.
func (r *registry) ForEach(pred func(*realtime.Connection) bool, action func(*realtime.Connection)) {
	for _, conn := range r.snapshot() {
		if pred == nil || pred(conn) {
			action(conn)
		}
	}
}

func (r *registry) snapshot() []*realtime.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*realtime.Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		out = append(out, conn)
	}
	return out
}

func (r *registry) ByOwner(ownerID string) []*realtime.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.owners[ownerID]
	out := make([]*realtime.Connection, 0, len(set))
	for id := range set {
		out = append(out, r.conns[id])
	}
	return out
}

// Join adds a registered connection to room. A removed connection can
// never gain membership because Remove holds the write lock.
func (r *registry) Join(room, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.conns[id]; !ok {
		return false, realtime.ErrConnectionNotFound
	}
	return r.rooms.Join(room, id), nil
}

func (r *registry) Leave(room, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.conns[id]; !ok {
		return false, realtime.ErrConnectionNotFound
	}
	return r.rooms.Leave(room, id), nil
}

type registryCounts struct {
	total, websocket, sse, owners int
}

func (r *registry) Counts() registryCounts {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := registryCounts{total: len(r.conns), owners: len(r.owners)}
	for _, conn := range r.conns {
		if conn.Kind() == realtime.PushOnly {
			c.sse++
		} else {
			c.websocket++
		}
	}
	return c
}
