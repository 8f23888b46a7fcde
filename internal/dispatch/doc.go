// Package dispatch implements the single-owner event dispatcher.
//
// All registry mutation and event fan-out happens on one goroutine that drains
// one FIFO queue of control messages (connect, disconnect, publish). Producers
// and transports only ever enqueue, so the registry needs no locks and a
// connect processed before a publish is guaranteed to see that publish.
//
// Delivery is best-effort: a subscriber whose outbound channel cannot take a
// message immediately is dropped, and producers never learn per-subscriber
// outcomes.
package dispatch
