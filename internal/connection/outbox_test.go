package connection

import (
	"errors"
	"testing"
)

func TestOutbox_Deliver(t *testing.T) {
	o := NewOutbox(4)

	for _, msg := range []string{"a", "b", "c"} {
		if err := o.Deliver(msg); err != nil {
			t.Fatalf("Deliver(%q) failed: %v", msg, err)
		}
	}

	if o.Len() != 3 {
		t.Errorf("Len() = %d, want 3", o.Len())
	}

	for _, want := range []string{"a", "b", "c"} {
		if got := <-o.Messages(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestOutbox_FullClosesOutbox(t *testing.T) {
	o := NewOutbox(1)

	if err := o.Deliver("first"); err != nil {
		t.Fatalf("first Deliver failed: %v", err)
	}
	if err := o.Deliver("second"); !errors.Is(err, ErrOutboxFull) {
		t.Fatalf("second Deliver = %v, want ErrOutboxFull", err)
	}
	if !o.Overflowed() {
		t.Error("Overflowed() = false, want true")
	}

	// Later deliveries see a closed outbox
	if err := o.Deliver("third"); !errors.Is(err, ErrOutboxClosed) {
		t.Errorf("third Deliver = %v, want ErrOutboxClosed", err)
	}

	// Buffered message still drains, then the channel reports closed
	if got, ok := <-o.Messages(); !ok || got != "first" {
		t.Errorf("drain = %q, %v; want first, true", got, ok)
	}
	if _, ok := <-o.Messages(); ok {
		t.Error("Messages() should be closed after overflow")
	}
}

func TestOutbox_Close(t *testing.T) {
	o := NewOutbox(2)
	o.Close()
	o.Close() // idempotent

	if err := o.Deliver("late"); !errors.Is(err, ErrOutboxClosed) {
		t.Errorf("Deliver after Close = %v, want ErrOutboxClosed", err)
	}
	if o.Overflowed() {
		t.Error("Overflowed() = true after plain Close")
	}
	if _, ok := <-o.Messages(); ok {
		t.Error("Messages() should be closed")
	}
}

func TestNewOutbox_MinSize(t *testing.T) {
	o := NewOutbox(0)
	if err := o.Deliver("x"); err != nil {
		t.Errorf("Deliver on size-0 outbox failed: %v", err)
	}
}

func TestHandle(t *testing.T) {
	o := NewOutbox(1)
	h := NewHandle("/hello_world", o)

	if h.Path() != "/hello_world" {
		t.Errorf("Path() = %q, want /hello_world", h.Path())
	}
	if h.ID().String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("ID() should not be the zero UUID")
	}
	if other := NewHandle("/hello_world", o); other.ID() == h.ID() {
		t.Error("two handles share an ID")
	}
	if err := h.Deliver("hi"); err != nil {
		t.Errorf("Deliver failed: %v", err)
	}
	if got := <-o.Messages(); got != "hi" {
		t.Errorf("got %q, want hi", got)
	}
}

func TestHandle_NilOutbound(t *testing.T) {
	h := NewHandle("/nowhere", nil)
	if err := h.Deliver("x"); !errors.Is(err, ErrOutboxClosed) {
		t.Errorf("Deliver = %v, want ErrOutboxClosed", err)
	}
}
