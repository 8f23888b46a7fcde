package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/pushevent/internal/config"
	"github.com/rickgao/pushevent/internal/connection"
	"github.com/rickgao/pushevent/internal/demo"
	"github.com/rickgao/pushevent/internal/dispatch"
	"github.com/rickgao/pushevent/internal/metrics"
	"github.com/rickgao/pushevent/internal/server"
	"github.com/rickgao/pushevent/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := newLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting pushevent",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("pushevent failed", "error", err)
		os.Exit(1)
	}

	logger.Info("pushevent stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	var gatherer prometheus.Gatherer
	if cfg.Metrics.IsEnabled() {
		gatherer = reg
	}

	// Dispatcher
	d := dispatch.New(dispatch.Config{QueueSize: cfg.Dispatcher.QueueSize}, m, logger)
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer stopCancel()
		d.Stop(stopCtx)
	}()

	// HTTP / WebSocket server
	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		ReadBufferSize:  cfg.Server.ReadBufferSize,
		WriteBufferSize: cfg.Server.WriteBufferSize,
		MaxPathLength:   cfg.Server.MaxPathLength,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsPath:     cfg.Metrics.Path,
		OutboxSize:      cfg.Connections.OutboxSize,
		Session: connection.SessionConfig{
			WriteTimeout:   cfg.Connections.WriteTimeout,
			PingInterval:   cfg.Connections.PingInterval,
			PongTimeout:    cfg.Connections.PongTimeout,
			MaxMessageSize: cfg.Connections.MaxMessageSize,
		},
	}, d, m, gatherer, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gctx)
	})

	if cfg.Demo.Enabled {
		publisher := demo.NewPublisher(demo.Config{
			Path:     cfg.Demo.Path,
			Message:  cfg.Demo.Message,
			Interval: cfg.Demo.Interval,
		}, d.Producer(), logger)

		g.Go(func() error {
			return publisher.Run(gctx)
		})
	}

	logger.Info("pushevent running",
		"addr", cfg.Server.Addr,
		"metrics", cfg.Metrics.IsEnabled(),
		"demo", cfg.Demo.Enabled,
	)

	return g.Wait()
}
