package websocket

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	ws "github.com/gorilla/websocket"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/jwt"
)

const authFailedReason = "authentication failed"

// HandleWebSocket upgrades the request and hands the socket to the use case.
// A bad credential still completes the upgrade so the client sees a 1008
// close with a readable reason instead of a bare HTTP error.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	ctx := c.Request.Context()

	userID, authErr := h.uc.Authenticate(ctx, jwt.FromRequest(c.Request, h.cfg.CookieName))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf(ctx, "internal.realtime.delivery.websocket.HandleWebSocket.Upgrade: %v", err)
		return
	}

	if authErr != nil {
		h.logger.Warnf(ctx, "websocket connection rejected from %s: %v", c.ClientIP(), authErr)
		h.reject(conn, ws.ClosePolicyViolation, authFailedReason)
		return
	}

	t := newTransport(conn, h.cfg)
	rc, err := h.uc.Connect(ctx, realtime.ConnectInput{OwnerID: userID, Transport: t})
	if err != nil {
		h.logger.Warnf(ctx, "internal.realtime.delivery.websocket.HandleWebSocket.Connect: %v", err)
		code := ws.CloseInternalServerErr
		if errors.Is(err, realtime.ErrMaxConnectionsReached) || errors.Is(err, realtime.ErrShuttingDown) {
			code = ws.CloseTryAgainLater
		}
		h.reject(conn, code, err.Error())
		return
	}

	// The request context ends when this handler returns, so the pumps run
	// on their own context.
	connCtx := h.logger.With(context.Background(), "conn_id", rc.ID(), "user_id", userID)
	go t.writePump(connCtx, h.uc, rc.ID(), h.logger)
	go t.readPump(connCtx, h.uc, rc.ID(), h.cfg.MaxMessageSize, h.logger)
}

func (h *Handler) reject(conn *ws.Conn, code int, reason string) {
	_ = conn.WriteControl(ws.CloseMessage, ws.FormatCloseMessage(code, reason), time.Now().Add(h.cfg.WriteWait))
	_ = conn.Close()
}
