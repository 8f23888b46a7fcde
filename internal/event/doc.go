// Package event defines the payloads and events that producers hand to the dispatcher.
//
// A Payload is anything that can render itself to text. The dispatcher treats the
// rendered string as opaque and writes it verbatim to every subscriber of the
// event's resource path.
package event
