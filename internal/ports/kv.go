package ports

import "context"

// PersistentKV is a durable string slot store. The cart is written under a single key.
type PersistentKV interface {
	// Get returns the value under key. found is false, with a nil error, when the key was never set.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}
