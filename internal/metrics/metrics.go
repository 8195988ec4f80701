// Package metrics provides Prometheus instrumentation for the live gate.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LockVerdictsTotal counts lock verdicts produced, partitioned by reason
	// ("unlocked" for open matches).
	LockVerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livegate_lock_verdicts_total",
		Help: "Total lock verdicts produced by the decision engine",
	}, []string{"reason"})

	// LockedMatches tracks the number of currently locked matches.
	LockedMatches = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livegate_locked_matches",
		Help: "Number of matches currently locked for betting",
	})

	// FeedFetchErrors counts upstream feed failures by feed kind.
	FeedFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livegate_feed_fetch_errors_total",
		Help: "Upstream feed fetch failures",
	}, []string{"feed"})

	// OddsDriftsTotal counts drifted selections detected at checkout.
	OddsDriftsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livegate_odds_drifts_total",
		Help: "Selections with material odds drift detected at checkout",
	})

	// CouponsPlaced counts successfully placed coupons.
	CouponsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livegate_coupons_placed_total",
		Help: "Total coupons placed",
	})

	// SelectionsRejected counts slip adds refused at the gate, by cause.
	SelectionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livegate_selections_rejected_total",
		Help: "Slip selections rejected",
	}, []string{"cause"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livegate_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livegate_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "livegate_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
