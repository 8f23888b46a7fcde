package dispatch

import "github.com/rickgao/pushevent/internal/event"

// Producer enqueues events for routing. It is a small value: copy it freely and
// use the copies from as many goroutines as needed.
type Producer struct {
	queue *Queue[ControlMessage]
}

// Send enqueues ev and returns without waiting for delivery. It fails only
// with ErrQueueClosed, once the dispatcher has shut down. An event for a path
// with no subscribers is accepted and silently dropped.
func (p Producer) Send(ev event.Event) error {
	if p.queue == nil || !p.queue.Push(ControlMessage{Kind: KindPublish, Event: ev}) {
		return ErrQueueClosed
	}
	return nil
}
