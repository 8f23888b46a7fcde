package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrOutboxFull      = errors.New("outbox full")
	ErrOutboxClosed    = errors.New("outbox closed")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps a received text frame with its local receive time.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// SessionConfig configures a server-side subscriber session.
type SessionConfig struct {
	WriteTimeout   time.Duration // Write deadline for each frame
	PingInterval   time.Duration // How often the server pings the subscriber
	PongTimeout    time.Duration // Max time without a pong before the session is dropped
	MaxMessageSize int64         // Read limit for client frames (0 = unlimited)
}

// DefaultSessionConfig returns sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		WriteTimeout:   5 * time.Second,
		PingInterval:   30 * time.Second,
		PongTimeout:    60 * time.Second,
		MaxMessageSize: 512,
	}
}

// ClientConfig configures a subscriber client.
type ClientConfig struct {
	URL          string        // WebSocket URL including the resource path (e.g., ws://127.0.0.1:3012/hello_world)
	PingTimeout  time.Duration // Max time without ping before considering connection stale
	WriteTimeout time.Duration // Write deadline for control frames
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  90 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   1000,
	}
}
