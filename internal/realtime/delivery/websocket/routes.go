package websocket

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts GET /ws. Authentication happens inside the handler
// because browsers cannot set headers on a WebSocket handshake.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/ws", h.HandleWebSocket)
}
