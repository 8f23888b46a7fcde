package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.ReadBufferSize < 1 {
		return errors.New("server.read_buffer_size must be >= 1")
	}
	if c.Server.WriteBufferSize < 1 {
		return errors.New("server.write_buffer_size must be >= 1")
	}
	if c.Server.MaxPathLength < 1 {
		return errors.New("server.max_path_length must be >= 1")
	}

	if c.Dispatcher.QueueSize < 1 {
		return errors.New("dispatcher.queue_size must be >= 1")
	}

	if c.Connections.OutboxSize < 1 {
		return errors.New("connections.outbox_size must be >= 1")
	}
	if c.Connections.WriteTimeout <= 0 {
		return errors.New("connections.write_timeout must be > 0")
	}
	if c.Connections.PingInterval >= c.Connections.PongTimeout {
		return fmt.Errorf("connections.ping_interval (%s) must be less than pong_timeout (%s)",
			c.Connections.PingInterval, c.Connections.PongTimeout)
	}

	if c.Metrics.IsEnabled() && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	if c.Demo.Enabled {
		if !strings.HasPrefix(c.Demo.Path, "/") {
			return fmt.Errorf("demo.path must start with /, got %q", c.Demo.Path)
		}
		if c.Demo.Interval <= 0 {
			return errors.New("demo.interval must be > 0")
		}
	}

	return nil
}
