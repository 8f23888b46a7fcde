// Package registry stores which connection handles are subscribed to which
// resource path.
//
// A Registry is not safe for concurrent use. It is owned by the dispatcher
// loop, which serializes every access through its message queue.
package registry
