package cache

import "context"

// ScopedStore prefixes every key of an inner store. It keeps icon entries
// apart from other data sharing a Redis database:
//
//	icons := cache.NewScopedStore(redisStore, "graphrender:icons:")
type ScopedStore struct {
	inner  Store
	prefix string
}

// NewScopedStore wraps inner. A nil inner behaves like [NullStore].
func NewScopedStore(inner Store, prefix string) *ScopedStore {
	if inner == nil {
		inner = NullStore{}
	}
	return &ScopedStore{inner: inner, prefix: prefix}
}

// Prefix returns the key prefix.
func (s *ScopedStore) Prefix() string { return s.prefix }

func (s *ScopedStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Read(ctx, s.prefix+key)
}

func (s *ScopedStore) AtomicWrite(ctx context.Context, key string, data []byte) error {
	return s.inner.AtomicWrite(ctx, s.prefix+key, data)
}

func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *ScopedStore) Close() error { return s.inner.Close() }

// Location describes the inner store and the prefix.
func (s *ScopedStore) Location() string {
	if l, ok := s.inner.(Locator); ok {
		return l.Location() + " (prefix " + s.prefix + ")"
	}
	return s.prefix
}

// Clear removes the scoped entries when the inner store supports prefix
// clearing.
func (s *ScopedStore) Clear(ctx context.Context) (int, error) {
	if pc, ok := s.inner.(prefixClearer); ok {
		return pc.clearPrefix(ctx, s.prefix)
	}
	if c, ok := s.inner.(Clearer); ok {
		return c.Clear(ctx)
	}
	return 0, nil
}

type prefixClearer interface {
	clearPrefix(ctx context.Context, prefix string) (int, error)
}

var _ Store = (*ScopedStore)(nil)
