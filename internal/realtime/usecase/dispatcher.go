package usecase

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
)

// dispatcher is the write path. Calls are serialized so every connection
// sees events in call order and push-only sequence ids in increasing order.
type dispatcher struct {
	mu    sync.Mutex
	reg   *registry
	rooms *roomIndex
	seq   *sequence

	events    atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
}

// failure is a connection whose enqueue failed during a fan-out.
type failure struct {
	connID string
	err    error
}

func newDispatcher(reg *registry, rooms *roomIndex, seq *sequence) *dispatcher {
	return &dispatcher{reg: reg, rooms: rooms, seq: seq}
}

// Dispatch resolves e's targets and queues it on each. Failed connections
// are returned for eviction by the caller; they never affect the others.
func (d *dispatcher) Dispatch(e realtime.Event) (int, []failure, error) {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal %q payload: %w", e.Name, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fanOut(d.resolve(e), e, data)
}

// Send queues e on conn alone, regardless of registration. Used for the
// greeting frame before a connection is registered.
func (d *dispatcher) Send(conn *realtime.Connection, e realtime.Event) error {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshal %q payload: %w", e.Name, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	_, failures, err := d.fanOut([]*realtime.Connection{conn}, e, data)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		return failures[0].err
	}
	return nil
}

func (d *dispatcher) resolve(e realtime.Event) []*realtime.Connection {
	var targets []*realtime.Connection
	switch e.Scope {
	case realtime.ScopeAll:
		d.reg.ForEach(nil, func(c *realtime.Connection) {
			targets = append(targets, c)
		})
	case realtime.ScopeRoom:
		for _, id := range d.rooms.MembersOf(e.Room) {
			if c, ok := d.reg.Get(id); ok {
				targets = append(targets, c)
			}
		}
	case realtime.ScopeConnection, realtime.ScopeRelay:
		if c, ok := d.reg.Get(e.Target); ok {
			targets = append(targets, c)
		}
	case realtime.ScopeOwner:
		targets = d.reg.ByOwner(e.Target)
	}

	if e.Exclude == "" {
		return targets
	}
	kept := targets[:0]
	for _, c := range targets {
		if c.ID() != e.Exclude {
			kept = append(kept, c)
		}
	}
	return kept
}

// fanOut must be called with d.mu held.
func (d *dispatcher) fanOut(targets []*realtime.Connection, e realtime.Event, data []byte) (int, []failure, error) {
	if len(targets) == 0 {
		return 0, nil, nil
	}

	var seq uint64
	for _, c := range targets {
		if c.Kind() == realtime.PushOnly {
			seq = d.seq.Next()
			break
		}
	}

	frame, err := json.Marshal(realtime.Envelope{
		Type:    e.Name,
		Payload: json.RawMessage(data),
		From:    e.From,
		Seq:     seq,
	})
	if err != nil {
		return 0, nil, fmt.Errorf("marshal %q envelope: %w", e.Name, err)
	}
	// Push-only clients only see the data line, so relayed events carry
	// their origin there as well.
	if e.From != "" {
		data, err = json.Marshal(realtime.RelayedData{From: e.From, Payload: json.RawMessage(data)})
		if err != nil {
			return 0, nil, fmt.Errorf("marshal %q relay data: %w", e.Name, err)
		}
	}
	out := &realtime.Outbound{Name: e.Name, Sequence: seq, Data: data, Frame: frame}

	d.events.Add(1)
	var (
		delivered int
		failures  []failure
	)
	for _, c := range targets {
		if err := c.Transport().Enqueue(out); err != nil {
			failures = append(failures, failure{connID: c.ID(), err: err})
			continue
		}
		delivered++
	}
	d.delivered.Add(int64(delivered))
	d.failed.Add(int64(len(failures)))
	return delivered, failures, nil
}
