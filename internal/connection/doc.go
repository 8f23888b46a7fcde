// Package connection holds the per-subscriber side of the dispatcher.
//
//   - Handle: a subscriber's identity, its resource path and its outbound channel
//   - Outbox: bounded, non-blocking delivery buffer behind a Handle
//   - Session: pumps an Outbox onto a server-side WebSocket and keeps it alive
//   - Client: subscriber-side WebSocket client for consoles and tests
package connection
