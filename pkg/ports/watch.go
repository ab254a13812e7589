package ports

import "context"

// Watchable defines an interface for backends that can notify about external changes.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying data changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
