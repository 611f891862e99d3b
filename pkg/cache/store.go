package cache

import "context"

// Store is a persistent key/value tier.
//
// Read reports ok=false for a missing key. AtomicWrite must never expose a
// partially written value to concurrent readers. Delete of a missing key is
// not an error.
type Store interface {
	Read(ctx context.Context, key string) (data []byte, ok bool, err error)
	AtomicWrite(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by stores that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) (removed int, err error)
}

// Locator is implemented by stores that can describe where entries live.
type Locator interface {
	Location() string
}
