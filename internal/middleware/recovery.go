package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/Jim-devENG/ispora-engine-sub009/pkg/errors"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/response"
)

func (m Middleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				m.logger.Errorf(c.Request.Context(), "panic recovered: %v | %s %s\n%s",
					rec, c.Request.Method, c.Request.URL.Path, debug.Stack())
				if c.Writer.Written() {
					c.Abort()
					return
				}
				response.HttpError(c, errors.NewHTTPError(http.StatusInternalServerError, "internal server error", http.StatusInternalServerError))
			}
		}()
		c.Next()
	}
}
