// Package metrics exposes the Prometheus collectors of the API server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studentapi", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "studentapi", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	StorePing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "studentapi", Name: "store_ping_seconds", Help: "Store ping latency",
		Buckets: prometheus.DefBuckets,
	})
	EventPublishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studentapi", Name: "event_publish_failures_total", Help: "Student events that could not be published",
	}, []string{"type"})
	StudentExports = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "studentapi", Name: "student_exports_total", Help: "Student workbooks uploaded to object storage",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, StorePing, EventPublishFailures, StudentExports)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveStorePing(d time.Duration) { StorePing.Observe(d.Seconds()) }

// Middleware records request counts and latency labelled by the matched
// chi route pattern, so path parameters do not inflate cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
