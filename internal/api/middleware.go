package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"token-minter/internal/observability"
)

// observe records every request by route and status.
func (self *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		observability.RecordHTTPRequest(route, strconv.Itoa(c.Writer.Status()), elapsed)

		self.log.WithField("method", c.Request.Method).
			WithField("route", route).
			WithField("status", c.Writer.Status()).
			WithField("elapsed", elapsed.String()).
			Debug("Request handled")
	}
}
