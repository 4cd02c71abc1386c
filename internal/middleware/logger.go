package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

var quietPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/live":   true,
}

// Logger logs one line per finished request. Streaming endpoints finish when
// the client goes away, so their latency is the session length.
func (m Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		path := c.Request.URL.Path
		status := c.Writer.Status()
		latency := time.Since(start)

		switch {
		case status >= 500:
			m.logger.Errorf(ctx, "%s %s %d %s %s", c.Request.Method, path, status, latency, c.ClientIP())
		case quietPaths[path]:
			m.logger.Debugf(ctx, "%s %s %d %s", c.Request.Method, path, status, latency)
		default:
			m.logger.Infof(ctx, "%s %s %d %s %s", c.Request.Method, path, status, latency, c.ClientIP())
		}
	}
}
