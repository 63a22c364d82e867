package debug

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chat-client/internal/observability"
)

// StateFunc produces the current client state snapshot for /debug/state.
type StateFunc func() map[string]any

// Serve starts the localhost debug server when addr is configured. It
// exposes prometheus metrics and a live state snapshot; it is never
// reachable from outside unless the operator binds it that way.
func Serve(addr string, state StateFunc) {
	if addr == "" {
		return
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("chat-client"))
	router.Use(observability.DebugMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/debug/state", func(c *gin.Context) {
		if state == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "state snapshot not configured"})
			return
		}
		c.JSON(http.StatusOK, state())
	})

	go func() {
		if err := router.Run(addr); err != nil {
			log.Printf("debug server error: %v", err)
		}
	}()
}
