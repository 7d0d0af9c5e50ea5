package dashboard

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// stateTTL is how long a refreshed state is served without hitting the
// upstream APIs again.
const stateTTL = 5 * time.Minute

// Server exposes the aggregated state over HTTP for the frontend. It keeps
// the last successful state and serves it stale when a refresh fails; the
// worst outcome is an outdated dashboard, never a crash.
type Server struct {
	orch *Orchestrator
	ttl  time.Duration

	mu        sync.Mutex
	state     *State
	refreshed time.Time
}

func NewServer(orch *Orchestrator) *Server {
	return &Server{orch: orch, ttl: stateTTL}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// ListenAndServe blocks serving the dashboard API on addr.
func (s *Server) ListenAndServe(addr string) error {
	log.Info().Str("addr", addr).Msg("Dashboard API listening")
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.state != nil && now.Sub(s.refreshed) < s.ttl {
		writeJSON(w, http.StatusOK, s.state)
		return
	}

	state, err := s.orch.Refresh(r.Context())
	if err != nil {
		if s.state != nil {
			log.Warn().Err(err).Msg("Refresh failed, serving last-known state")
			w.Header().Set("X-Stale", "true")
			writeJSON(w, http.StatusOK, s.state)
			return
		}
		log.Error().Err(err).Msg("Refresh failed with no cached state")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	s.state = state
	s.refreshed = now
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
