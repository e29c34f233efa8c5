// Package metrics provides Prometheus instrumentation for the auction desk.
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
	// Reveals counts lots put on the block, partitioned by round.
	Reveals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_reveals_total",
		Help: "Total number of lots revealed",
	}, []string{"round"})

	// Bids counts accepted bid updates.
	Bids = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_bids_total",
		Help: "Total number of bid updates recorded",
	})

	// Settlements counts settled lots by outcome (sold, unsold).
	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_settlements_total",
		Help: "Total number of lots settled",
	}, []string{"outcome"})

	// PurseSpent accumulates the currency paid in sold settlements.
	PurseSpent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_purse_spent_total",
		Help: "Cumulative amount paid for sold lots",
	})

	// TimerRemaining is the countdown of the lot on the block.
	TimerRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "auction_timer_seconds_remaining",
		Help: "Seconds left on the lot countdown",
	})

	// PoolPlayers tracks players per status.
	PoolPlayers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "auction_pool_players",
		Help: "Number of players by status",
	}, []string{"status"})

	// CommandErrors counts rejected engine commands.
	CommandErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_command_errors_total",
		Help: "Engine commands rejected, by command",
	}, []string{"command"})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auction_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "route"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request metrics labelled by the chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
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
