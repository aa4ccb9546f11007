package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	handlers "github.com/oksasatya/go-session-auth/internal/interface/http"
	"github.com/oksasatya/go-session-auth/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

// Register exposes expvar at /debug/vars and Prometheus metrics at
// /debug/metrics, reachable from private networks only.
func (m *DebugModule) Register(rg *gin.RouterGroup) {
	private := middleware.PrivateNetworkOnly()
	rg.GET("/debug/vars", private, gin.WrapH(expvar.Handler()))
	rg.GET("/debug/metrics", private, gin.WrapH(promhttp.HandlerFor(handlers.Registry, promhttp.HandlerOpts{})))
}
