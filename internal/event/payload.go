package event

import "encoding/json"

// Text is a payload that renders to itself.
type Text string

// Render returns the text unchanged.
func (t Text) Render() string {
	return string(t)
}

// Message is a JSON payload carrying a single human-readable message.
type Message struct {
	Message string `json:"message"`
}

// Render encodes the message as JSON, e.g. {"message":"Hello world"}.
func (m Message) Render() string {
	// A struct holding one string field always marshals.
	data, _ := json.Marshal(m)
	return string(data)
}

// RenderFunc adapts an ordinary function to the Payload interface.
type RenderFunc func() string

// Render calls f.
func (f RenderFunc) Render() string {
	return f()
}
