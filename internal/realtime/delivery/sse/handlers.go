package sse

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	ginsse "github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
	pkgErrors "github.com/Jim-devENG/ispora-engine-sub009/pkg/errors"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/jwt"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/log"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/response"
)

var connectErrors = response.ErrorMapping{
	realtime.ErrMaxConnectionsReached: pkgErrors.NewServiceUnavailableHTTPError("maximum connections reached"),
	realtime.ErrShuttingDown:          pkgErrors.NewServiceUnavailableHTTPError("server shutting down"),
}

// HandleEvents streams events to one authenticated client until it goes away
// or the connection is removed.
func (h *Handler) HandleEvents(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := h.uc.Authenticate(ctx, jwt.FromRequest(c.Request, h.cfg.CookieName))
	if err != nil {
		h.logger.Warnf(ctx, "sse connection rejected from %s: %v", c.ClientIP(), err)
		response.Unauthorized(c)
		return
	}

	t := newTransport(h.cfg.SendBufferSize)
	conn, err := h.uc.Connect(ctx, realtime.ConnectInput{OwnerID: userID, Transport: t})
	if err != nil {
		h.logger.Warnf(ctx, "internal.realtime.delivery.sse.HandleEvents.Connect: %v", err)
		response.ErrorWithMap(c, err, connectErrors)
		return
	}

	ctx = h.logger.With(ctx, "conn_id", conn.ID(), "user_id", userID)

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	st := &stream{w: c.Writer, rc: http.NewResponseController(c.Writer), wait: h.cfg.WriteWait, logger: h.logger}
	for {
		select {
		case <-ctx.Done():
			h.uc.Disconnect(context.WithoutCancel(ctx), conn.ID(), nil)
			return

		case <-t.done:
			return

		case out := <-t.send:
			if err := st.write(ctx, out); err != nil {
				h.uc.Disconnect(context.WithoutCancel(ctx), conn.ID(), fmt.Errorf("%w: %v", realtime.ErrWriteFailure, err))
				return
			}
			conn.MarkWritten(out.Sequence)
			h.uc.Touch(conn.ID())
		}
	}
}

// stream is the write side of one event stream. A writer without deadline
// support still streams, but a stalled reader is then only caught by the
// heartbeat; that is logged once per connection.
type stream struct {
	w      gin.ResponseWriter
	rc     *http.ResponseController
	wait   time.Duration
	logger log.Logger

	deadlineWarned bool
}

func (s *stream) write(ctx context.Context, out *realtime.Outbound) error {
	if err := s.rc.SetWriteDeadline(time.Now().Add(s.wait)); err != nil && !s.deadlineWarned {
		s.deadlineWarned = true
		s.logger.Warnf(ctx, "internal.realtime.delivery.sse.stream.write.SetWriteDeadline: %v", err)
	}
	return writeEvent(s.w, out)
}

func writeEvent(w gin.ResponseWriter, out *realtime.Outbound) error {
	ev := ginsse.Event{
		Event: out.Name,
		Data:  string(out.Data),
	}
	if out.Sequence > 0 {
		ev.Id = strconv.FormatUint(out.Sequence, 10)
	}

	var buf bytes.Buffer
	if err := ginsse.Encode(&buf, ev); err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}
	w.Flush()
	return nil
}
