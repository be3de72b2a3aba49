package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/embedfarm/wifid/internal/config"
	"github.com/embedfarm/wifid/internal/logging"
	"github.com/embedfarm/wifid/internal/wifi"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second

	// scanTimeout bounds how long /api/v1/scan waits for the radio.
	scanTimeout = 15 * time.Second
)

// Config holds the server configuration.
type Config struct {
	// Listen is the host:port to bind, e.g. "127.0.0.1:8590".
	Listen string

	// ConfigPath is where applied configuration changes are persisted.
	// Empty disables persistence.
	ConfigPath string
}

// Server serves the wifid HTTP API over a wifi.Manager.
type Server struct {
	config  *Config
	manager *wifi.Manager

	httpServer *http.Server
	listener   net.Listener

	// mu serializes configuration apply+persist cycles.
	mu        sync.Mutex
	deviceCfg *config.Config
}

// New creates a Server. deviceCfg is the running configuration; applied
// changes are written back into it and saved to Config.ConfigPath.
func New(cfg *Config, manager *wifi.Manager, deviceCfg *config.Config) (*Server, error) {
	if cfg == nil || cfg.Listen == "" {
		return nil, fmt.Errorf("server requires a listen address")
	}
	if manager == nil {
		return nil, fmt.Errorf("server requires a wifi manager")
	}
	if deviceCfg == nil {
		deviceCfg = config.New()
	}

	s := &Server{
		config:    cfg,
		manager:   manager,
		deviceCfg: deviceCfg,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/scan", s.handleScan)
	mux.HandleFunc("PUT /api/v1/config/station", s.handleConfigStation)
	mux.HandleFunc("PUT /api/v1/config/ap", s.handleConfigAP)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)

	s.httpServer = &http.Server{
		Handler:           s.logRequests(mux),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s, nil
}

// Start begins listening and blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	s.listener = listener

	logging.Info("API server listening",
		zap.String("addr", listener.Addr().String()),
	)

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address. Valid after Start has opened the
// listener; useful when Listen was ":0".
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Listen
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down API server...")

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Warn("API server shutdown timed out, forcing close", zap.Error(err))
		return s.httpServer.Close()
	}

	logging.Info("API server stopped")
	return nil
}

// logRequests wraps the mux with per-request structured logging.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, sw.status)
	})
}

// statusWriter captures the response status for logging.
type statusWriter struct {
	http.ResponseWriter
	status   int
	hijacked bool
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack is needed so the WebSocket upgrade works through the wrapper.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.hijacked = true
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
