// Package adminhttp exposes the engine's health and statistics surface over
// HTTP: /health, /stats, /metrics, routed with gorilla/mux the way the
// teacher wires its monitoring endpoints.
package adminhttp

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"wparse/internal/backpressure"
	"wparse/internal/routing"
)

// Server owns the mux.Router and the dependencies its handlers report on.
type Server struct {
	router    *mux.Router
	stats     *routing.StatRecord
	sampler   *backpressure.Sampler
	startTime time.Time
	version   string
}

// Deps bundles the components health/stats handlers read from.
type Deps struct {
	Stats   *routing.StatRecord
	Sampler *backpressure.Sampler
	Version string
}

func NewServer(d Deps) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		stats:     d.Stats,
		sampler:   d.Sampler,
		startTime: time.Now(),
		version:   d.Version,
	}
	s.registerHandlers()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerHandlers() {
	s.router.Use(loggingMiddleware)
	s.router.Handle("/health", http.HandlerFunc(s.healthHandler)).Methods("GET")
	s.router.Handle("/stats", http.HandlerFunc(s.statsHandler)).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"component": "adminhttp",
			"path":      r.URL.Path,
			"duration":  time.Since(start).String(),
		}).Debug("handled request")
	})
}

// healthHandler reports overall status, degrading to 503 when the sampled
// backpressure level is high or critical.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	level := backpressure.LevelNone
	if s.sampler != nil {
		level = s.sampler.Level()
	}
	if level == backpressure.LevelHigh || level == backpressure.LevelCritical {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	body := map[string]interface{}{
		"status":       status,
		"version":      s.version,
		"uptime":       time.Since(s.startTime).String(),
		"timestamp":    time.Now().Unix(),
		"backpressure": level.String(),
	}
	writeJSON(w, code, body)
}

// statsHandler reports admission counters partitioned by outcome (§8
// admitted-exactly invariant).
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{})
		return
	}
	body := map[string]interface{}{
		"begin":    atomic.LoadInt64(&s.stats.Begin),
		"end":      atomic.LoadInt64(&s.stats.End),
		"ok":       atomic.LoadInt64(&s.stats.OK),
		"miss":     atomic.LoadInt64(&s.stats.Miss),
		"residue":  atomic.LoadInt64(&s.stats.Residue),
		"error":    atomic.LoadInt64(&s.stats.Error),
		"admitted": s.stats.Admitted(),
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Warn("adminhttp: failed to encode response")
	}
}
