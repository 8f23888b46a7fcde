package connection

import (
	"github.com/google/uuid"
)

// Outbound accepts rendered event text for one subscriber.
// Deliver must not block; a delivery that cannot complete immediately fails.
type Outbound interface {
	Deliver(text string) error
}

// Handle is the dispatcher's view of one live subscriber. The path is fixed
// at creation; a subscriber cannot change or add subscriptions.
type Handle struct {
	id   uuid.UUID
	path string
	out  Outbound
}

// NewHandle creates a handle with a fresh random identifier.
func NewHandle(path string, out Outbound) *Handle {
	return NewHandleWithID(uuid.New(), path, out)
}

// NewHandleWithID creates a handle with a caller-chosen identifier.
func NewHandleWithID(id uuid.UUID, path string, out Outbound) *Handle {
	return &Handle{id: id, path: path, out: out}
}

// ID returns the handle's unique identifier.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Path returns the resource path the handle is subscribed to.
func (h *Handle) Path() string {
	return h.path
}

// Deliver hands text to the handle's outbound channel.
func (h *Handle) Deliver(text string) error {
	if h.out == nil {
		return ErrOutboxClosed
	}
	return h.out.Deliver(text)
}

func (h *Handle) String() string {
	return h.id.String() + "@" + h.path
}
