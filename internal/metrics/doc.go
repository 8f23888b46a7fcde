// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Control messages processed, by kind
//   - Events published, deliveries and delivery failures
//   - Current subscribers and subscribed paths
//   - Duplicate connection rejections
//   - Dispatcher queue depth
//   - Open WebSocket sessions and HTTP publish requests by status code
package metrics
