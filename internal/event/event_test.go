package event

import "testing"

func TestEvent_Accessors(t *testing.T) {
	ev := New("/events/message", Text("Hello world"))

	if ev.Path() != "/events/message" {
		t.Errorf("Path() = %q, want %q", ev.Path(), "/events/message")
	}
	if ev.Render() != "Hello world" {
		t.Errorf("Render() = %q, want %q", ev.Render(), "Hello world")
	}
	if ev.Payload() != Text("Hello world") {
		t.Errorf("Payload() = %v, want Text(Hello world)", ev.Payload())
	}
}

func TestEvent_NilPayload(t *testing.T) {
	ev := New("/empty", nil)

	if got := ev.Render(); got != "" {
		t.Errorf("Render() = %q, want empty string", got)
	}
}

func TestMessage_Render(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"hello world", Message{Message: "Hello world"}, `{"message":"Hello world"}`},
		{"empty", Message{}, `{"message":""}`},
		{"escaped", Message{Message: `say "hi"`}, `{"message":"say \"hi\""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.Render(); got != tt.want {
				t.Errorf("Render() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderFunc(t *testing.T) {
	calls := 0
	p := RenderFunc(func() string {
		calls++
		return "rendered"
	})

	ev := New("/fn", p)
	if got := ev.Render(); got != "rendered" {
		t.Errorf("Render() = %q, want %q", got, "rendered")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
