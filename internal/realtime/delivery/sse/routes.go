package sse

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/events", h.HandleEvents)
}
