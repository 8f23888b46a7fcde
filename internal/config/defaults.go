package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAddr            = "127.0.0.1:3012"
	DefaultReadBufferSize  = 1024
	DefaultWriteBufferSize = 1024
	DefaultMaxPathLength   = 256
	DefaultShutdownTimeout = 10 * time.Second
	DefaultQueueSize       = 1024
	DefaultOutboxSize      = 256
	DefaultWriteTimeout    = 5 * time.Second
	DefaultPingInterval    = 30 * time.Second
	DefaultPongTimeout     = 60 * time.Second
	DefaultMaxMessageSize  = 512
	DefaultMetricsPath     = "/metrics"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultDemoPath        = "/hello_world"
	DefaultDemoMessage     = "Hello world"
	DefaultDemoInterval    = 100 * time.Millisecond
)

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadBufferSize == 0 {
		c.Server.ReadBufferSize = DefaultReadBufferSize
	}
	if c.Server.WriteBufferSize == 0 {
		c.Server.WriteBufferSize = DefaultWriteBufferSize
	}
	if c.Server.MaxPathLength == 0 {
		c.Server.MaxPathLength = DefaultMaxPathLength
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Dispatcher defaults
	if c.Dispatcher.QueueSize == 0 {
		c.Dispatcher.QueueSize = DefaultQueueSize
	}

	// Connections defaults
	if c.Connections.OutboxSize == 0 {
		c.Connections.OutboxSize = DefaultOutboxSize
	}
	if c.Connections.WriteTimeout == 0 {
		c.Connections.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connections.PingInterval == 0 {
		c.Connections.PingInterval = DefaultPingInterval
	}
	if c.Connections.PongTimeout == 0 {
		c.Connections.PongTimeout = DefaultPongTimeout
	}
	if c.Connections.MaxMessageSize == 0 {
		c.Connections.MaxMessageSize = DefaultMaxMessageSize
	}

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	// Demo defaults
	if c.Demo.Path == "" {
		c.Demo.Path = DefaultDemoPath
	}
	if c.Demo.Message == "" {
		c.Demo.Message = DefaultDemoMessage
	}
	if c.Demo.Interval == 0 {
		c.Demo.Interval = DefaultDemoInterval
	}
}
