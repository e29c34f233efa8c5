// Package httpapi serves the read-only view of the auction floor for
// scoreboards and presentation clients.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jensholdgaard/player-auction/internal/auction"
	"github.com/jensholdgaard/player-auction/internal/health"
	"github.com/jensholdgaard/player-auction/internal/ledger"
	"github.com/jensholdgaard/player-auction/internal/metrics"
	"github.com/jensholdgaard/player-auction/internal/store"
)

// Desk is the part of the auction manager the API reads from.
type Desk interface {
	Snapshot() auction.Snapshot
	Standings() []ledger.Standing
	Report(ctx context.Context, sessionID string) (*auction.Report, error)
	Settlements(ctx context.Context, sessionID string) ([]store.Settlement, error)
}

// Server holds the API handlers.
type Server struct {
	desk   Desk
	logger *slog.Logger
}

// NewRouter builds the HTTP surface: probes, metrics and the /api routes.
// A nil limiter disables throttling.
func NewRouter(desk Desk, hh *health.Handler, limiter *Limiter, logger *slog.Logger) http.Handler {
	s := &Server{desk: desk, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	hh.Mount(r)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Get("/state", s.State)
		r.Get("/players", s.Players)
		r.Get("/players/{playerID}", s.Player)
		r.Get("/teams", s.Teams)
		r.Get("/standings", s.Standings)
		r.Get("/settlements", s.Settlements)
		r.Get("/sessions/{sessionID}/report", s.Report)
		r.Get("/sessions/{sessionID}/settlements", s.Settlements)
	})
	return r
}

// State returns the full snapshot.
func (s *Server) State(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.desk.Snapshot())
}

// Players lists the pool, optionally filtered by ?status=.
func (s *Server) Players(w http.ResponseWriter, r *http.Request) {
	players := s.desk.Snapshot().Players
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := players[:0:0]
		for _, p := range players {
			if string(p.Status) == status {
				filtered = append(filtered, p)
			}
		}
		players = filtered
	}
	writeJSON(w, http.StatusOK, players)
}

// Player returns one player.
func (s *Server) Player(w http.ResponseWriter, r *http.Request) {
	p, ok := s.desk.Snapshot().Player(chi.URLParam(r, "playerID"))
	if !ok {
		writeError(w, "player not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Teams lists the team pool.
func (s *Server) Teams(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.desk.Snapshot().Teams)
}

// Standings lists remaining purses and squads.
func (s *Server) Standings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.desk.Standings())
}

// Settlements lists the recorded lot outcomes of a session. Without a
// session id in the path the running session is used.
func (s *Server) Settlements(w http.ResponseWriter, r *http.Request) {
	list, err := s.desk.Settlements(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "listing settlements", slog.Any("error", err))
		writeError(w, "failed to list settlements", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []store.Settlement{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Report replays a session's journal.
func (s *Server) Report(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "current" {
		sessionID = ""
	}
	rep, err := s.desk.Report(r.Context(), sessionID)
	switch {
	case errors.Is(err, auction.ErrEmptyJournal):
		writeError(w, "session not found", http.StatusNotFound)
	case err != nil:
		s.logger.ErrorContext(r.Context(), "building report",
			slog.String("session_id", sessionID),
			slog.Any("error", err),
		)
		writeError(w, "failed to build report", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, rep)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
