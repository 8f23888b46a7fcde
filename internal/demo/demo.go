// Package demo publishes a fixed message to one path on a timer, which is
// handy for trying a subscriber without writing a producer.
package demo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rickgao/pushevent/internal/dispatch"
	"github.com/rickgao/pushevent/internal/event"
)

// Sender is the part of dispatch.Producer the publisher needs.
type Sender interface {
	Send(ev event.Event) error
}

// Config configures a Publisher.
type Config struct {
	Path     string
	Message  string
	Interval time.Duration
}

// DefaultConfig publishes {"message":"Hello world"} to /hello_world every 100ms.
func DefaultConfig() Config {
	return Config{
		Path:     "/hello_world",
		Message:  "Hello world",
		Interval: 100 * time.Millisecond,
	}
}

// Publisher sends event.Message payloads on a ticker.
type Publisher struct {
	cfg    Config
	sender Sender
	logger *slog.Logger
}

// NewPublisher creates a Publisher.
func NewPublisher(cfg Config, sender Sender, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{cfg: cfg, sender: sender, logger: logger}
}

// Run publishes until ctx is done or the dispatcher shuts its queue.
// Both are normal stops and return nil; any other send error is returned.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.logger.Info("demo publisher started", "path", p.cfg.Path, "interval", p.cfg.Interval)

	var sent int64
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("demo publisher stopped", "sent", sent)
			return nil
		case <-ticker.C:
			ev := event.New(p.cfg.Path, event.Message{Message: p.cfg.Message})
			if err := p.sender.Send(ev); err != nil {
				if errors.Is(err, dispatch.ErrQueueClosed) {
					p.logger.Info("dispatcher closed, demo publisher stopping", "sent", sent)
					return nil
				}
				return err
			}
			sent++
		}
	}
}
