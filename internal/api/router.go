package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)
	})

	// Sensors post here. Every method is routed so non-POST requests get
	// the usage hint instead of a 405.
	r.HandleFunc(s.cfg.IngestPath, s.handleIngest)

	return r
}

// Health status values.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"

	backendOK          = "ok"
	backendUnavailable = "unavailable"
	backendDisabled    = "disabled"
)

// handleHealth reports server health and InfluxDB reachability.
//
// The endpoint always answers 200: an unreachable database degrades
// ingestion but does not stop readings reaching the CSV journal.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := statusOK
	influx := backendDisabled

	if s.influx != nil {
		if err := s.influx.HealthCheck(r.Context()); err != nil {
			s.logger.Warn("influxdb health check failed", "error", err)
			status = statusDegraded
			influx = backendUnavailable
		} else {
			influx = backendOK
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"version":  s.version,
		"influxdb": influx,
	})
}
