// Package api implements the agent self-service HTTP API.
//
// Every authenticated call follows the same pipeline: authenticate →
// authorize and validate → persist → record activity → respond. The first
// three stages exit early on failure; activity recording is best-effort
// and never affects the response.
package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/soyeahso/crustspace/internal/config"
	"github.com/soyeahso/crustspace/internal/logging"
	"github.com/soyeahso/crustspace/internal/store"
	"github.com/soyeahso/crustspace/internal/version"
)

// Server is the Crustspace self-service API server.
type Server struct {
	cfg          config.ServerConfig
	log          *logging.Logger
	agents       *store.AgentStore
	capabilities *store.CapabilityStore
	verifier     *Verifier
	recorder     *Recorder
	version      string

	startedAt  time.Time
	httpServer *http.Server
}

// ServerOption configures the API server.
type ServerOption func(*Server)

// WithRecorder replaces the default activity recorder. Used by tests to
// inject failing log stores.
func WithRecorder(r *Recorder) ServerOption {
	return func(s *Server) {
		s.recorder = r
	}
}

// New creates an API server over the given database. All collaborators are
// constructed here and injected explicitly; there is no process-wide state.
func New(cfg config.ServerConfig, db *store.DB, log *logging.Logger, opts ...ServerOption) *Server {
	agents := store.NewAgentStore(db)
	activity := store.NewActivityStore(db)

	s := &Server{
		cfg:          cfg,
		log:          log.Sub("api"),
		agents:       agents,
		capabilities: store.NewCapabilityStore(db),
		verifier:     NewVerifier(agents),
		recorder:     NewRecorder(activity, agents, log),
		version:      version.Version,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Handler returns the fully wired HTTP handler, including middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return withMiddleware(mux, s.log, s.cfg.AllowedOrigins)
}

// Start begins listening for HTTP connections. It blocks until the context
// is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.cfg.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(s.cfg.TLS.CertPath, s.cfg.TLS.KeyPath)
		if err != nil {
			ln.Close()
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		tlsCfg := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		ln = tls.NewListener(ln, tlsCfg)
		s.log.Info().Msg("TLS enabled")
	} else if s.cfg.Bind != "loopback" && s.cfg.Bind != "" {
		s.log.Warn().Msg("TLS is not enabled — API keys will be transmitted in cleartext")
	}

	s.startedAt = time.Now()

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Bind).
		Msg("api server ready")

	// Shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}
