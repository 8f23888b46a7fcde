package event

// Payload renders an event body to its textual wire representation.
// Render must be deterministic and safe to call from any goroutine.
type Payload interface {
	Render() string
}

// Event pairs a target resource path with a payload. Events are immutable.
type Event struct {
	path    string
	payload Payload
}

// New returns an Event targeting subscribers of path.
func New(path string, payload Payload) Event {
	return Event{path: path, payload: payload}
}

// Path returns the resource path this event targets.
func (e Event) Path() string {
	return e.path
}

// Payload returns the wrapped payload.
func (e Event) Payload() Payload {
	return e.payload
}

// Render renders the payload. An event without a payload renders to "".
func (e Event) Render() string {
	if e.payload == nil {
		return ""
	}
	return e.payload.Render()
}
