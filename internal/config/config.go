package config

import (
	"log/slog"
	"time"
)

// Config is the root configuration for a pushevent server.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Dispatcher  DispatcherConfig  `yaml:"dispatcher"`
	Connections ConnectionsConfig `yaml:"connections"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Log         LogConfig         `yaml:"log"`
	Demo        DemoConfig        `yaml:"demo"`
}

// ServerConfig holds the HTTP/WebSocket listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadBufferSize  int           `yaml:"read_buffer_size"`
	WriteBufferSize int           `yaml:"write_buffer_size"`
	MaxPathLength   int           `yaml:"max_path_length"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DispatcherConfig holds dispatcher queue settings.
type DispatcherConfig struct {
	QueueSize int `yaml:"queue_size"` // initial capacity; the queue grows
}

// ConnectionsConfig holds per-subscriber connection settings.
type ConnectionsConfig struct {
	OutboxSize     int           `yaml:"outbox_size"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	PongTimeout    time.Duration `yaml:"pong_timeout"`
	MaxMessageSize int64         `yaml:"max_message_size"`
}

// MetricsConfig holds Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// IsEnabled reports whether the metrics endpoint is served. Unset means enabled.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// SlogLevel maps Level to a slog.Level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DemoConfig configures the built-in hello world publisher.
type DemoConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Path     string        `yaml:"path"`
	Message  string        `yaml:"message"`
	Interval time.Duration `yaml:"interval"`
}
