package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/pressure-logger/internal/infrastructure/config"
	"github.com/nerrad567/pressure-logger/internal/infrastructure/logging"
	"github.com/nerrad567/pressure-logger/internal/ingest"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Ingester runs the ingest flow for one payload.
type Ingester interface {
	Ingest(ctx context.Context, payload []byte) ingest.Result
	Stats() ingest.Stats
}

// HealthChecker is implemented by backing services that can be pinged.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ConnectionReporter reports a live connection state.
type ConnectionReporter interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Ingester Ingester

	// InfluxDB is pinged by the health endpoint. Nil means disabled.
	InfluxDB HealthChecker

	// MQTT is reported by the metrics endpoint. Nil means disabled.
	MQTT ConnectionReporter

	Version string
}

// Server is the HTTP server for the pressure logger.
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	ingester  Ingester
	influx    HealthChecker
	mqtt      ConnectionReporter
	version   string
	startTime time.Time
	server    *http.Server
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Ingester == nil {
		return nil, fmt.Errorf("ingester is required")
	}

	if deps.Config.IngestPath == "" {
		deps.Config.IngestPath = "/"
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger.With("component", "api"),
		ingester:  deps.Ingester,
		influx:    deps.InfluxDB,
		mqtt:      deps.MQTT,
		version:   deps.Version,
		startTime: time.Now(),
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server listening",
			"address", s.server.Addr,
			"ingest_path", s.cfg.IngestPath,
		)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
