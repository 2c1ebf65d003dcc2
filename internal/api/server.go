package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/mqtt-tickbridge/internal/bridge"
	"github.com/nerrad567/mqtt-tickbridge/internal/host"
	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/config"
	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/logging"
	"github.com/nerrad567/mqtt-tickbridge/internal/journal"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Bridge is the adapter surface the API drives. *bridge.Adapter satisfies it.
type Bridge interface {
	host.Bridge
	Stats() bridge.Stats
}

// JournalReader gives read access to the message journal.
type JournalReader interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
	Stats() journal.Stats
}

// HostMetrics reports on the built-in polling host.
type HostMetrics interface {
	Ticks() uint64
	HatCounts() (connected, received uint64)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Bridge   Bridge
	Journal  JournalReader // optional; journal endpoints answer 404 without it
	Host     HostMetrics   // optional
	Version  string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	bridge    Bridge
	journal   JournalReader
	host      HostMetrics
	version   string
	startTime time.Time
	server    *http.Server
	hub       *Hub
	cancel    context.CancelFunc
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Bridge == nil {
		return nil, fmt.Errorf("bridge is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		secCfg:    deps.Security,
		logger:    deps.Logger,
		bridge:    deps.Bridge,
		journal:   deps.Journal,
		host:      deps.Host,
		version:   deps.Version,
		startTime: time.Now(),
	}
	s.hub = NewHub(s.logger)

	if s.secCfg.JWT.Secret == "" {
		s.logger.Warn("API auth disabled: no JWT secret configured")
	}
	return s, nil
}

// Start binds the listener and serves in a background goroutine.
//
// Binding happens before Start returns, so a port already in use is
// reported here rather than logged later.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}

	s.logger.Info("API server starting", "address", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	// Stop the hub first; hijacked WebSocket connections are not tracked
	// by Shutdown.
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
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
