package cache

import "context"

// NullStore is a no-op store that never keeps anything.
// It backs the persistent tier when that tier is disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return NullStore{}
}

// Read always misses.
func (NullStore) Read(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// AtomicWrite discards data.
func (NullStore) AtomicWrite(context.Context, string, []byte) error { return nil }

// Delete does nothing.
func (NullStore) Delete(context.Context, string) error { return nil }

// Close does nothing.
func (NullStore) Close() error { return nil }

// Location reports that nothing is persisted.
func (NullStore) Location() string { return "(disabled)" }

var (
	_ Store   = NullStore{}
	_ Locator = NullStore{}
)
