package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrivateNetworkOnly answers 404 unless the direct peer is a loopback or
// private address. Forwarding headers are ignored.
func PrivateNetworkOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := net.ParseIP(c.RemoteIP())
		if ip == nil || !(ip.IsLoopback() || ip.IsPrivate()) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}
}
