package middleware

import (
	"github.com/gin-gonic/gin"
)

const ContextRealIPKey = "real_ip"

// RealIP sets the client IP into the Gin context under "real_ip". It relies on
// c.ClientIP, so forwarding headers are honored only for peers listed in the
// engine's trusted proxies and listed in engine.RemoteIPHeaders.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextRealIPKey, c.ClientIP())
		c.Next()
	}
}
