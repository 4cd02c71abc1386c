package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
)

// transport queues events for the streaming handler. The handler goroutine
// is the only writer to the response.
type transport struct {
	send chan *realtime.Outbound
	done chan struct{}
	now  func() time.Time

	closeOnce sync.Once
}

func newTransport(size int) *transport {
	return &transport{
		send: make(chan *realtime.Outbound, size),
		done: make(chan struct{}),
		now:  time.Now,
	}
}

func (t *transport) Kind() realtime.TransportKind { return realtime.PushOnly }

func (t *transport) Enqueue(out *realtime.Outbound) error {
	select {
	case <-t.done:
		return realtime.ErrConnectionClosed
	default:
	}
	select {
	case t.send <- out:
		return nil
	default:
		return realtime.ErrSendBufferFull
	}
}

// Ping queues a heartbeat event. A full queue means the reader has stalled,
// which is reported so the supervisor can evict.
func (t *transport) Ping() error {
	data, err := json.Marshal(map[string]int64{"timestamp": t.now().UnixMilli()})
	if err != nil {
		return err
	}
	return t.Enqueue(&realtime.Outbound{Name: realtime.EventHeartbeat, Data: data})
}

func (t *transport) Close(realtime.CloseReason) {
	t.closeOnce.Do(func() { close(t.done) })
}
