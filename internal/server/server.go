package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/pushevent/internal/connection"
	"github.com/rickgao/pushevent/internal/dispatch"
	"github.com/rickgao/pushevent/internal/metrics"
)

// Config holds server settings.
type Config struct {
	Addr            string
	ReadBufferSize  int
	WriteBufferSize int
	MaxPathLength   int
	ShutdownTimeout time.Duration

	// MetricsPath is served only when a Gatherer is passed to New.
	MetricsPath string

	// Per-subscriber settings
	OutboxSize int
	Session    connection.SessionConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:3012",
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		MaxPathLength:   256,
		ShutdownTimeout: 10 * time.Second,
		MetricsPath:     "/metrics",
		OutboxSize:      256,
		Session:         connection.DefaultSessionConfig(),
	}
}

// Server accepts subscribers and publishers for a Dispatcher.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	dispatcher dispatch.Dispatcher
	producer   dispatch.Producer
	metrics    *metrics.Metrics

	upgrader websocket.Upgrader
	router   *mux.Router

	// Sessions outlive http.Server.Shutdown because their connections are
	// hijacked, so they get their own context.
	sessionCtx    context.Context
	cancelSession context.CancelFunc
	sessions      sync.WaitGroup
}

// New creates a Server. gatherer may be nil to disable the metrics route.
func New(cfg Config, d dispatch.Dispatcher, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New(nil)
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		dispatcher: d,
		producer:   d.Producer(),
		metrics:    m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// Subscriptions are read-only, so any origin may listen.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.sessionCtx, s.cancelSession = context.WithCancel(context.Background())
	s.router = s.routes(gatherer)

	return s
}

func (s *Server) routes(gatherer prometheus.Gatherer) *mux.Router {
	// Paths are matched verbatim, so /a//b is its own resource.
	r := mux.NewRouter().SkipClean(true)

	// WebSocket upgrades win on every path, including /health.
	r.MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
		return websocket.IsWebSocketUpgrade(req)
	}).HandlerFunc(s.handleSubscribe)

	r.Path("/health").Methods(http.MethodGet).HandlerFunc(s.handleHealth)
	if gatherer != nil && s.cfg.MetricsPath != "" {
		r.Path(s.cfg.MetricsPath).Methods(http.MethodGet).Handler(
			promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		)
	}

	r.PathPrefix("/").Methods(http.MethodPost).HandlerFunc(s.handlePublish)

	return r
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.cancelSession()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.waitSessions(shutdownCtx)

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	s.logger.Info("server stopped")
	return nil
}

// Close ends every open subscriber session and waits for them to finish.
func (s *Server) Close() {
	s.cancelSession()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.waitSessions(ctx)
}

func (s *Server) waitSessions(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("timed out waiting for sessions to close")
	}
}
