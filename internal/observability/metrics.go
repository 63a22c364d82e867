package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_client_http_requests_total",
			Help: "Total number of REST requests issued to the backend.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_client_http_request_duration_seconds",
			Help:    "Backend REST request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
	wsConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_client_ws_connected",
			Help: "1 while the websocket session is acknowledged, 0 otherwise.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_client_ws_events_total",
			Help: "Total number of websocket events, by kind.",
		},
		[]string{"event"},
	)
	wsReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_client_ws_reconnects_total",
			Help: "Total number of automatic reconnect attempts.",
		},
	)
	sendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_client_sends_total",
			Help: "Total number of outbound message sends, by result.",
		},
		[]string{"result"},
	)
	debugRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_client_debug_http_requests_total",
			Help: "Total number of requests served by the local debug endpoint.",
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsConnected,
		wsEventsTotal,
		wsReconnectsTotal,
		sendsTotal,
		debugRequestsTotal,
	)
}

// ObserveHTTP records one completed REST request to the backend.
func ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

func SetWSConnected(up bool) {
	if up {
		wsConnected.Set(1)
		return
	}
	wsConnected.Set(0)
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncWSReconnect() {
	wsReconnectsTotal.Inc()
}

func IncSend(result string) {
	sendsTotal.WithLabelValues(result).Inc()
}

// DebugMetricsMiddleware instruments the local debug server.
func DebugMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		debugRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
