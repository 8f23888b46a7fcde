package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rickgao/pushevent/internal/connection"
	"github.com/rickgao/pushevent/internal/event"
	"github.com/rickgao/pushevent/internal/metrics"
	"github.com/rickgao/pushevent/internal/registry"
)

// Dispatcher routes published events to the connections subscribed to their path.
type Dispatcher interface {
	// Start launches the dispatcher loop. Cancelling ctx shuts the queue.
	// Returns ErrQueueClosed once the dispatcher has been stopped.
	Start(ctx context.Context) error

	// Stop closes the queue and waits for queued messages to be processed.
	Stop(ctx context.Context) error

	// Connect enqueues a registration for h.
	Connect(h *connection.Handle) error

	// ConnectAndWait enqueues a registration for h and waits until the loop
	// has processed it. Returns registry.ErrDuplicateConnection if h's ID is
	// already registered.
	ConnectAndWait(ctx context.Context, h *connection.Handle) error

	// Disconnect enqueues removal of the connection with id. Idempotent.
	Disconnect(id uuid.UUID) error

	// Producer returns a send handle over the dispatcher queue.
	Producer() Producer

	// Stats returns current dispatcher statistics.
	Stats() Stats
}

// dispatcher is the internal implementation.
type dispatcher struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	queue *Queue[ControlMessage]

	// Owned by the loop goroutine; never touched elsewhere.
	registry *registry.Registry

	// Lifecycle
	started bool
	done    chan struct{}

	// Stats
	mu              sync.RWMutex
	received        int64
	published       int64
	deliveries      int64
	failures        int64
	duplicates      int64
	renderPanics    int64
	subscriberCount int
	pathCount       int
}

// New creates a Dispatcher. A nil m gets unregistered collectors.
func New(cfg Config, m *metrics.Metrics, logger *slog.Logger) Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New(nil)
	}

	return &dispatcher{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		queue:    NewQueue[ControlMessage](cfg.QueueSize),
		registry: registry.New(),
		done:     make(chan struct{}),
	}
}

// Start launches the dispatcher loop.
func (d *dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	// A stopped dispatcher cannot be restarted.
	if d.queue.Closed() {
		d.mu.Unlock()
		return ErrQueueClosed
	}
	if d.started {
		d.mu.Unlock()
		return ErrAlreadyStarted
	}
	d.started = true
	d.mu.Unlock()

	go d.loop()

	go func() {
		select {
		case <-ctx.Done():
			d.queue.Close()
		case <-d.done:
		}
	}()

	d.logger.Info("dispatcher started", "queue_size", d.cfg.QueueSize)

	return nil
}

// Stop closes the queue and waits for the loop to drain it.
func (d *dispatcher) Stop(ctx context.Context) error {
	d.logger.Info("stopping dispatcher")

	d.queue.Close()

	d.mu.RLock()
	started := d.started
	d.mu.RUnlock()
	if !started {
		return nil
	}

	select {
	case <-d.done:
		d.logger.Info("dispatcher stopped")
	case <-ctx.Done():
		d.logger.Warn("dispatcher stop timed out", "pending", d.queue.Len())
	}

	return nil
}

// Connect enqueues a registration.
func (d *dispatcher) Connect(h *connection.Handle) error {
	return d.enqueueConnect(h, nil)
}

// ConnectAndWait enqueues a registration and waits for its outcome.
func (d *dispatcher) ConnectAndWait(ctx context.Context, h *connection.Handle) error {
	result := make(chan error, 1)
	if err := d.enqueueConnect(h, result); err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect enqueues a removal.
func (d *dispatcher) Disconnect(id uuid.UUID) error {
	if !d.queue.Push(ControlMessage{Kind: KindDisconnect, ID: id}) {
		return ErrQueueClosed
	}
	return nil
}

// Producer returns a send handle over the queue.
func (d *dispatcher) Producer() Producer {
	return Producer{queue: d.queue}
}

// Stats returns current statistics.
func (d *dispatcher) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return Stats{
		MessagesReceived:     d.received,
		EventsPublished:      d.published,
		Deliveries:           d.deliveries,
		DeliveryFailures:     d.failures,
		DuplicateConnections: d.duplicates,
		RenderPanics:         d.renderPanics,
		Subscribers:          d.subscriberCount,
		Paths:                d.pathCount,
		Queue:                d.queue.Stats(),
	}
}

func (d *dispatcher) enqueueConnect(h *connection.Handle, result chan error) error {
	if h == nil {
		return ErrNilHandle
	}
	if !d.queue.Push(ControlMessage{Kind: KindConnect, Handle: h, result: result}) {
		return ErrQueueClosed
	}
	return nil
}

// loop is the only goroutine that touches the registry.
func (d *dispatcher) loop() {
	defer close(d.done)

	for {
		msg, ok := d.queue.Pop()
		if !ok {
			d.logger.Info("dispatcher queue closed")
			return
		}
		d.handle(msg)
	}
}

// fanout is the outcome of one publish.
type fanout struct {
	routed    bool
	delivered int64
	failed    int64
}

// handle applies a single control message.
func (d *dispatcher) handle(msg ControlMessage) {
	var out fanout

	switch msg.Kind {
	case KindConnect:
		d.handleConnect(msg)
	case KindDisconnect:
		d.handleDisconnect(msg.ID)
	case KindPublish:
		out = d.handlePublish(msg.Event)
	default:
		d.logger.Warn("skipping unknown control message", "kind", int(msg.Kind))
	}

	subscribers, paths := d.registry.Len(), d.registry.PathCount()

	d.metrics.Messages.WithLabelValues(msg.Kind.String()).Inc()
	d.metrics.Subscribers.Set(float64(subscribers))
	d.metrics.Paths.Set(float64(paths))
	queue := d.queue.Stats()
	d.metrics.QueueDepth.Set(float64(queue.Count))
	d.metrics.QueueHighWater.Set(float64(queue.HighWater))
	if out.routed {
		d.metrics.Published.Inc()
		d.metrics.Deliveries.Add(float64(out.delivered))
		d.metrics.DeliveryFailures.Add(float64(out.failed))
	}

	// Stats last, so anyone polling them also sees the collectors updated.
	d.mu.Lock()
	d.received++
	if out.routed {
		d.published++
	}
	d.deliveries += out.delivered
	d.failures += out.failed
	d.subscriberCount = subscribers
	d.pathCount = paths
	d.mu.Unlock()
}

func (d *dispatcher) handleConnect(msg ControlMessage) {
	h := msg.Handle
	err := d.registry.Register(h)
	if err != nil {
		d.logger.Warn("rejecting connection", "conn_id", h.ID(), "path", h.Path(), "error", err)
		d.mu.Lock()
		d.duplicates++
		d.mu.Unlock()
		d.metrics.DuplicateConnections.Inc()
	} else {
		d.logger.Debug("subscriber connected", "conn_id", h.ID(), "path", h.Path())
	}

	if msg.result != nil {
		msg.result <- err
	}
}

func (d *dispatcher) handleDisconnect(id uuid.UUID) {
	if d.registry.Unregister(id) {
		d.logger.Debug("subscriber disconnected", "conn_id", id)
	}
}

// handlePublish renders ev once and fans it out to a snapshot of the path's
// subscribers. Failed subscribers are removed after the fan-out completes.
func (d *dispatcher) handlePublish(ev event.Event) fanout {
	text, ok := d.render(ev)
	if !ok {
		return fanout{}
	}

	out := fanout{routed: true}
	var failed []*connection.Handle

	for _, h := range d.registry.SubscribersFor(ev.Path()) {
		if err := deliver(h, text); err != nil {
			d.logger.Debug("delivery failed, dropping subscriber",
				"conn_id", h.ID(),
				"path", h.Path(),
				"error", err,
			)
			failed = append(failed, h)
			continue
		}
		out.delivered++
	}

	for _, h := range failed {
		d.registry.Unregister(h.ID())
	}
	out.failed = int64(len(failed))

	return out
}

// render calls the payload, turning a panic into a dropped event.
func (d *dispatcher) render(ev event.Event) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("payload render panicked, dropping event", "path", ev.Path(), "panic", r)
			d.mu.Lock()
			d.renderPanics++
			d.mu.Unlock()
			d.metrics.RenderPanics.Inc()
			ok = false
		}
	}()

	return ev.Render(), true
}

// deliver treats a panicking outbound like any other failed write.
func deliver(h *connection.Handle, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("outbound panicked: %v", r)
		}
	}()

	return h.Deliver(text)
}
