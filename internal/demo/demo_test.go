package demo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rickgao/pushevent/internal/dispatch"
	"github.com/rickgao/pushevent/internal/event"
)

type fakeSender struct {
	mu     sync.Mutex
	events []event.Event
	err    error
}

func (f *fakeSender) Send(ev event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeSender) Events() []event.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]event.Event(nil), f.events...)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Interval = 5 * time.Millisecond
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Path != "/hello_world" {
		t.Errorf("Path = %q, want /hello_world", cfg.Path)
	}
	if cfg.Interval != 100*time.Millisecond {
		t.Errorf("Interval = %v, want 100ms", cfg.Interval)
	}
}

func TestPublisher_SendsHelloWorld(t *testing.T) {
	sender := &fakeSender{}
	p := NewPublisher(testConfig(), sender, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for len(sender.Events()) < 3 {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for events")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}

	for _, ev := range sender.Events() {
		if ev.Path() != "/hello_world" {
			t.Errorf("Path() = %q, want /hello_world", ev.Path())
		}
		if got := ev.Render(); got != `{"message":"Hello world"}` {
			t.Errorf("Render() = %q, want %q", got, `{"message":"Hello world"}`)
		}
	}
}

func TestPublisher_StopsOnQueueClosed(t *testing.T) {
	sender := &fakeSender{err: dispatch.ErrQueueClosed}
	p := NewPublisher(testConfig(), sender, nil)

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after ErrQueueClosed")
	}
}

func TestPublisher_ReturnsOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	p := NewPublisher(testConfig(), &fakeSender{err: boom}, nil)

	if err := p.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run() = %v, want %v", err, boom)
	}
}

func TestPublisher_WithDispatcher(t *testing.T) {
	d := dispatch.New(dispatch.DefaultConfig(), nil, nil)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	p := NewPublisher(testConfig(), d.Producer(), nil)
	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for d.Stats().EventsPublished < 2 {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for published events")
		}
		time.Sleep(time.Millisecond)
	}

	// Stopping the dispatcher is what ends the publisher
	d.Stop(context.Background())

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after dispatcher Stop")
	}
}
