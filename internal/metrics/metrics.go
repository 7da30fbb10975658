// Package metrics holds the Prometheus collectors shared by the HTTP API
// and the tutor backends.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	TutorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutor_requests_total",
			Help: "Tutor backend calls by backend, operation and outcome",
		},
		[]string{"backend", "operation", "outcome"},
	)

	TutorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tutor_request_duration_seconds",
			Help:    "Latency of tutor backend calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"backend", "operation"},
	)

	TutorFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutor_fallbacks_total",
			Help: "Times the tutor factory substituted the cloud backend for the local one",
		},
	)

	LLMTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Tokens consumed by provider, model and direction (input or output)",
		},
		[]string{"provider", "model", "direction"},
	)

	LLMErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_errors_total",
			Help: "Failed LLM requests by provider and error kind",
		},
		[]string{"provider", "kind"},
	)

	ProblemsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "problems_generated_total",
			Help: "Generated practice problems by type and source",
		},
		[]string{"type", "source"},
	)
)

var initOnce sync.Once

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(TutorRequests)
		prometheus.MustRegister(TutorDuration)
		prometheus.MustRegister(TutorFallbacks)
		prometheus.MustRegister(LLMTokens)
		prometheus.MustRegister(LLMErrors)
		prometheus.MustRegister(ProblemsGenerated)
	})
}

// ObserveTutor records one tutor backend call.
func ObserveTutor(backend, operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	TutorRequests.WithLabelValues(backend, operation, outcome).Inc()
	TutorDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
