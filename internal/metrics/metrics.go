// Package metrics exposes the Prometheus collectors of the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
	RoomJoins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_room_joins_total",
		Help: "Room join attempts by result",
	}, []string{"result"})
	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})
)

// Register registers the collectors with reg. Panics on duplicate registration.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequestsTotal, HTTPRequestDuration, RoomJoins, Logins)
}

// RecordLogin increments the login counter for result.
func RecordLogin(result string) {
	Logins.WithLabelValues(result).Inc()
}

// RecordRoomJoin increments the room join counter for result.
func RecordRoomJoin(result string) {
	RoomJoins.WithLabelValues(result).Inc()
}

// GinMiddleware records request count and latency. Requests that matched no route share the "unmatched"
// path label so scanners cannot blow up label cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
