// Package health serves the liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/jensholdgaard/player-auction/internal/clock"
)

// Status represents a health check result.
type Status struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Info      map[string]string `json:"info,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// Checker defines a named health check function.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler provides HTTP health check endpoints.
type Handler struct {
	ready    atomic.Bool
	checkers []Checker
	clock    clock.Clock
	timeout  time.Duration

	mu   sync.RWMutex
	info map[string]func() string
}

// NewHandler creates a new health handler with the given checkers.
func NewHandler(clk clock.Clock, checkers ...Checker) *Handler {
	return &Handler{
		checkers: checkers,
		clock:    clk,
		timeout:  5 * time.Second,
		info:     make(map[string]func() string),
	}
}

// SetReady marks the service as ready to receive traffic.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Ready reports the last value passed to SetReady.
func (h *Handler) Ready() bool {
	return h.ready.Load()
}

// AddInfo attaches a value reported with every readiness response, such as
// the auction phase or leadership.
func (h *Handler) AddInfo(name string, fn func() string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.info[name] = fn
}

// Mount registers /healthz and /readyz on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/healthz", h.LivenessHandler())
	r.Get("/readyz", h.ReadinessHandler())
}

// LivenessHandler returns HTTP 200 if the process is alive.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Status{
			Status:    "ok",
			Timestamp: h.now(),
		})
	}
}

// ReadinessHandler returns HTTP 200 once SetReady(true) was called and every
// checker passes. Checkers run concurrently.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, Status{
				Status:    "not_ready",
				Info:      h.collectInfo(),
				Timestamp: h.now(),
			})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		results := make([]error, len(h.checkers))
		var g errgroup.Group
		for i, c := range h.checkers {
			g.Go(func() error {
				results[i] = c.Check(ctx)
				return nil
			})
		}
		_ = g.Wait()

		checks := make(map[string]string, len(h.checkers))
		allOK := true
		for i, c := range h.checkers {
			if err := results[i]; err != nil {
				checks[c.Name] = err.Error()
				allOK = false
				continue
			}
			checks[c.Name] = "ok"
		}

		status := "ready"
		code := http.StatusOK
		if !allOK {
			status = "not_ready"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, Status{
			Status:    status,
			Checks:    checks,
			Info:      h.collectInfo(),
			Timestamp: h.now(),
		})
	}
}

func (h *Handler) collectInfo() map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.info) == 0 {
		return nil
	}
	out := make(map[string]string, len(h.info))
	for k, fn := range h.info {
		out[k] = fn()
	}
	return out
}

func (h *Handler) now() string {
	return h.clock.Now().UTC().Format(time.RFC3339)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
