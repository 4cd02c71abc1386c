package usecase

import (
	"sort"
	"sync"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
)

// roomIndex is the bidirectional room <-> connection map. Both sides are
// mutated under one lock so readers never see a half applied change.
type roomIndex struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{}
	byConn  map[string]map[string]struct{}
}

func newRoomIndex() *roomIndex {
	return &roomIndex{
		members: make(map[string]map[string]struct{}),
		byConn:  make(map[string]map[string]struct{}),
	}
}

// Join reports whether the connection was newly added.
func (ri *roomIndex) Join(room, connID string) bool {
	ri.mu.Lock()
	defer ri.mu.Unlock()

	if _, ok := ri.members[room][connID]; ok {
		return false
	}
	if ri.members[room] == nil {
		ri.members[room] = make(map[string]struct{})
	}
	if ri.byConn[connID] == nil {
		ri.byConn[connID] = make(map[string]struct{})
	}
	ri.members[room][connID] = struct{}{}
	ri.byConn[connID][room] = struct{}{}
	return true
}

// Leave reports whether the connection was a member. Empty rooms are dropped.
func (ri *roomIndex) Leave(room, connID string) bool {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	return ri.leaveLocked(room, connID)
}

func (ri *roomIndex) leaveLocked(room, connID string) bool {
	set, ok := ri.members[room]
	if !ok {
		return false
	}
	if _, ok := set[connID]; !ok {
		return false
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(ri.members, room)
	}
	if rooms := ri.byConn[connID]; rooms != nil {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(ri.byConn, connID)
		}
	}
	return true
}

// DropConnection removes connID from every room and returns those rooms.
// Only the registry calls this, as part of removal.
func (ri *roomIndex) DropConnection(connID string) []string {
	ri.mu.Lock()
	defer ri.mu.Unlock()

	rooms := sortedKeys(ri.byConn[connID])
	for _, room := range rooms {
		ri.leaveLocked(room, connID)
	}
	return rooms
}

// MembersOf returns a snapshot of the room's members.
func (ri *roomIndex) MembersOf(room string) []string {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	return sortedKeys(ri.members[room])
}

func (ri *roomIndex) RoomsOf(connID string) []string {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	return sortedKeys(ri.byConn[connID])
}

func (ri *roomIndex) IsMember(room, connID string) bool {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	_, ok := ri.members[room][connID]
	return ok
}

func (ri *roomIndex) Stats() realtime.RoomStats {
	ri.mu.RLock()
	defer ri.mu.RUnlock()

	st := realtime.RoomStats{Rooms: len(ri.members)}
	for _, set := range ri.members {
		st.Memberships += len(set)
	}
	return st
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
