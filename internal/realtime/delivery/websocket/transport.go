package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/log"
)

// CloseEvicted is the private-use close code sent to evicted clients.
const CloseEvicted = 4000

// transport owns one socket. writePump is the only writer and readPump the
// only reader; everything else talks to them through channels.
type transport struct {
	conn      *ws.Conn
	writeWait time.Duration

	send chan []byte
	ping chan struct{}
	done chan struct{}

	closeOnce sync.Once
	reason    atomic.Int32
}

func newTransport(conn *ws.Conn, cfg Config) *transport {
	return &transport{
		conn:      conn,
		writeWait: cfg.WriteWait,
		send:      make(chan []byte, cfg.SendBufferSize),
		ping:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

func (t *transport) Kind() realtime.TransportKind { return realtime.Bidirectional }

func (t *transport) Enqueue(out *realtime.Outbound) error {
	select {
	case <-t.done:
		return realtime.ErrConnectionClosed
	default:
	}
	select {
	case t.send <- out.Frame:
		return nil
	default:
		return realtime.ErrSendBufferFull
	}
}

func (t *transport) Ping() error {
	select {
	case <-t.done:
		return realtime.ErrConnectionClosed
	default:
	}
	select {
	case t.ping <- struct{}{}:
	default:
		// a ping is already pending
	}
	return nil
}

func (t *transport) Close(reason realtime.CloseReason) {
	t.closeOnce.Do(func() {
		t.reason.Store(int32(reason))
		close(t.done)
	})
}

func closeMessage(reason realtime.CloseReason) []byte {
	switch reason {
	case realtime.CloseEvicted:
		return ws.FormatCloseMessage(CloseEvicted, "connection evicted")
	case realtime.ClosePolicyViolation:
		return ws.FormatCloseMessage(ws.ClosePolicyViolation, "policy violation")
	case realtime.CloseShutdown:
		return ws.FormatCloseMessage(ws.CloseServiceRestart, "server shutting down")
	default:
		return ws.FormatCloseMessage(ws.CloseNormalClosure, "")
	}
}

// writePump drains the send queue and ping requests. A failed write removes
// the connection; the deadline bounds a stuck write.
func (t *transport) writePump(ctx context.Context, uc realtime.UseCase, connID string, l log.Logger) {
	defer t.conn.Close()

	for {
		select {
		case msg := <-t.send:
			_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeWait))
			if err := t.conn.WriteMessage(ws.TextMessage, msg); err != nil {
				uc.Disconnect(ctx, connID, fmt.Errorf("%w: %v", realtime.ErrWriteFailure, err))
				return
			}

		case <-t.ping:
			_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeWait))
			if err := t.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				uc.Disconnect(ctx, connID, fmt.Errorf("%w: %v", realtime.ErrWriteFailure, err))
				return
			}

		case <-t.done:
			msg := closeMessage(realtime.CloseReason(t.reason.Load()))
			if err := t.conn.WriteControl(ws.CloseMessage, msg, time.Now().Add(t.writeWait)); err != nil && !errors.Is(err, ws.ErrCloseSent) {
				l.Debugf(ctx, "internal.realtime.delivery.websocket.writePump.WriteControl: %v", err)
			}
			return
		}
	}
}

// readPump feeds inbound frames to the use case until the socket fails.
// There is no read deadline: liveness is judged by the heartbeat supervisor.
func (t *transport) readPump(ctx context.Context, uc realtime.UseCase, connID string, maxMessageSize int64, l log.Logger) {
	defer uc.Disconnect(ctx, connID, nil)

	t.conn.SetReadLimit(maxMessageSize)
	t.conn.SetPongHandler(func(string) error {
		uc.Touch(connID)
		return nil
	})

	for {
		_, msg, err := t.conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway, ws.CloseNoStatusReceived) {
				l.Debugf(ctx, "internal.realtime.delivery.websocket.readPump.ReadMessage: %v", err)
			}
			return
		}
		// Frame errors are logged by the use case and never close the socket.
		_ = uc.HandleFrame(ctx, connID, msg)
	}
}
