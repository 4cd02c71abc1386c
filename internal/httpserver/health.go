package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jim-devENG/ispora-engine-sub009/pkg/errors"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/response"
)

const serviceName = "ispora-realtime"

// healthCheck reports dependencies and hub counters. Any failing dependency
// turns the answer into 503 with the same body.
func (srv *HTTPServer) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	stats := srv.uc.Stats()
	body := gin.H{
		"service":            serviceName,
		"status":             "healthy",
		"active_connections": stats.ActiveConnections,
		"unique_users":       stats.UniqueOwners,
		"rooms":              stats.Rooms.Rooms,
	}

	healthy := true
	if latency, err := srv.redis.Ping(ctx); err != nil {
		srv.logger.Warnf(ctx, "internal.httpserver.healthCheck.Ping: %v", err)
		body["redis"] = "unreachable"
		healthy = false
	} else {
		body["redis"] = "connected"
		body["redis_latency_ms"] = latency.Milliseconds()
	}

	if srv.subscriber != nil {
		info := srv.subscriber.GetHealthInfo()
		body["subscriber"] = info
		if !info.Active {
			healthy = false
		}
	}

	if !healthy {
		body["status"] = "degraded"
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Resp{
			ErrorCode: http.StatusServiceUnavailable,
			Message:   "degraded",
			Data:      body,
		})
		return
	}
	response.OK(c, body)
}

func (srv *HTTPServer) readyCheck(c *gin.Context) {
	if srv.shuttingDown.Load() {
		response.HttpError(c, errors.NewServiceUnavailableHTTPError("shutting down"))
		return
	}
	if _, err := srv.redis.Ping(c.Request.Context()); err != nil {
		response.HttpError(c, errors.NewServiceUnavailableHTTPError("redis connection not available"))
		return
	}
	response.OK(c, gin.H{"service": serviceName, "status": "ready"})
}

func (srv *HTTPServer) liveCheck(c *gin.Context) {
	response.OK(c, gin.H{"service": serviceName, "status": "alive"})
}

func (srv *HTTPServer) metrics(c *gin.Context) {
	c.JSON(http.StatusOK, srv.uc.Stats())
}
