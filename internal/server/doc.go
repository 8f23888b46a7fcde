// Package server exposes the dispatcher over HTTP.
//
// Routes:
//
//	ws://host/<path>     WebSocket upgrade on any path subscribes to <path>
//	POST /<path>         publishes the request body to <path> as plain text
//	GET /health          JSON status with dispatcher statistics
//	GET /metrics         Prometheus metrics (path configurable)
//
// Paths must be valid UTF-8 and between 1 and MaxPathLength characters.
package server
