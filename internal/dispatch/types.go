package dispatch

import (
	"errors"

	"github.com/google/uuid"

	"github.com/rickgao/pushevent/internal/connection"
	"github.com/rickgao/pushevent/internal/event"
)

// Errors
var (
	// ErrQueueClosed is returned to producers and transports once the
	// dispatcher has shut down. It is the only error Producer.Send returns.
	ErrQueueClosed    = errors.New("dispatcher queue closed")
	ErrAlreadyStarted = errors.New("dispatcher already started")
	ErrNilHandle      = errors.New("nil connection handle")
)

// Config holds configuration for the Dispatcher.
type Config struct {
	QueueSize int // Initial queue capacity; the queue grows on demand. Default: 1024
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		QueueSize: 1024,
	}
}

// Kind identifies a control message.
type Kind int

const (
	KindConnect Kind = iota + 1
	KindDisconnect
	KindPublish
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindDisconnect:
		return "disconnect"
	case KindPublish:
		return "publish"
	default:
		return "unknown"
	}
}

// ControlMessage is one entry of the dispatcher queue.
// Which fields are set depends on Kind.
type ControlMessage struct {
	Kind Kind

	Handle *connection.Handle // Connect
	ID     uuid.UUID          // Disconnect
	Event  event.Event        // Publish

	// result receives the outcome of a Connect when the sender waits for it.
	result chan error
}

// Stats contains runtime statistics.
type Stats struct {
	MessagesReceived     int64
	EventsPublished      int64
	Deliveries           int64
	DeliveryFailures     int64
	DuplicateConnections int64
	RenderPanics         int64
	Subscribers          int // Snapshot taken by the dispatcher loop
	Paths                int
	Queue                QueueStats
}
