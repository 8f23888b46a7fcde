package connection

import "sync"

// Outbox is a bounded delivery buffer between the dispatcher and a Session.
//
// Deliver never blocks. When the buffer is full the outbox closes itself and
// reports ErrOutboxFull, which makes the owning session hang up on the
// subscriber instead of queueing behind it.
type Outbox struct {
	mu         sync.Mutex
	ch         chan string
	closed     bool
	overflowed bool
}

// NewOutbox creates an outbox that buffers up to size messages.
func NewOutbox(size int) *Outbox {
	if size < 1 {
		size = 1
	}
	return &Outbox{ch: make(chan string, size)}
}

// Deliver enqueues text without blocking.
func (o *Outbox) Deliver(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrOutboxClosed
	}

	select {
	case o.ch <- text:
		return nil
	default:
		o.overflowed = true
		o.closed = true
		close(o.ch)
		return ErrOutboxFull
	}
}

// Messages returns the channel the session drains. It is closed when the
// outbox closes; messages buffered before that are still readable.
func (o *Outbox) Messages() <-chan string {
	return o.ch
}

// Close closes the outbox. Safe to call more than once.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	close(o.ch)
}

// Overflowed reports whether the outbox closed itself because it was full.
func (o *Outbox) Overflowed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.overflowed
}

// Len returns the number of buffered messages.
func (o *Outbox) Len() int {
	return len(o.ch)
}
