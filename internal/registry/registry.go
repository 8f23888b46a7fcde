package registry

import (
	"errors"

	"github.com/google/uuid"

	"github.com/rickgao/pushevent/internal/connection"
)

// ErrDuplicateConnection is returned when a handle's ID is already registered.
var ErrDuplicateConnection = errors.New("duplicate connection")

// Registry maps resource paths to the handles subscribed to them.
// Handles under one path keep their registration order.
type Registry struct {
	byPath map[string][]*connection.Handle
	byID   map[uuid.UUID]string // handle ID → path
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byPath: make(map[string][]*connection.Handle),
		byID:   make(map[uuid.UUID]string),
	}
}

// Register adds h under h.Path().
func (r *Registry) Register(h *connection.Handle) error {
	if _, exists := r.byID[h.ID()]; exists {
		return ErrDuplicateConnection
	}

	r.byPath[h.Path()] = append(r.byPath[h.Path()], h)
	r.byID[h.ID()] = h.Path()
	return nil
}

// Unregister removes the handle with the given ID and reports whether it was
// present. Removing an unknown ID is a no-op.
func (r *Registry) Unregister(id uuid.UUID) bool {
	path, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)

	handles := r.byPath[path]
	for i, h := range handles {
		if h.ID() != id {
			continue
		}
		copy(handles[i:], handles[i+1:])
		handles[len(handles)-1] = nil
		handles = handles[:len(handles)-1]
		break
	}

	if len(handles) == 0 {
		delete(r.byPath, path)
	} else {
		r.byPath[path] = handles
	}
	return true
}

// SubscribersFor returns a snapshot of the handles subscribed to path, in
// registration order. The result is nil when nobody is subscribed.
func (r *Registry) SubscribersFor(path string) []*connection.Handle {
	handles := r.byPath[path]
	if len(handles) == 0 {
		return nil
	}
	snapshot := make([]*connection.Handle, len(handles))
	copy(snapshot, handles)
	return snapshot
}

// Contains reports whether a handle with id is registered.
func (r *Registry) Contains(id uuid.UUID) bool {
	_, ok := r.byID[id]
	return ok
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	return len(r.byID)
}

// PathCount returns the number of paths with at least one subscriber.
func (r *Registry) PathCount() int {
	return len(r.byPath)
}
