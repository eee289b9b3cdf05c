package loader

import "context"

// Storage is the optional persistent byte store backing the cascade's
// second tier. Implementations must tolerate sharing a namespace across
// loader instances: Put is idempotent per key and Match never mutates.
//
// A nil Storage on the loader silently skips the persistent tier. Every
// Storage error is non-fatal to a load; the cascade proceeds without
// persistence.
type Storage interface {
	// Open prepares the namespace. Called once per loader before the first
	// Match or Put.
	Open(ctx context.Context, namespace string) error

	// Match returns the bytes persisted under key, if any.
	Match(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Put persists bytes under key, overwriting any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the whole namespace.
	Delete(ctx context.Context, namespace string) error
}
