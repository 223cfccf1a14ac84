package core

import "context"

// CacheStorage holds the whole serialized event collection under a single key.
// Get reports false when nothing has been stored yet.
type CacheStorage interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, blob []byte) error
}

// RemoteStore is the client side of the remote /events collection.
// Every failure is reported as a *TransportError.
type RemoteStore interface {
	ListEvents(ctx context.Context) ([]RawEvent, error)
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
	DeleteEvent(ctx context.Context, id string) error
}
