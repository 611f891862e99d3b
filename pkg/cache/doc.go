// Package cache provides the persistent tier of the icon cache.
//
// The tier is modeled as a [Store] capability with three operations: Read,
// AtomicWrite and Delete. The icon cache only talks to a Store, never to a
// path, so tests can run entirely in memory.
//
// # Implementations
//
//   - [FileStore]: one file per key under a root directory. Writes go to a
//     temporary file in the same directory and are renamed into place, so a
//     concurrent reader in another process sees either the old entry or the
//     new one, never a partial file.
//   - [RedisStore]: entries in Redis, shared by every renderer that points
//     at the same server. SET is atomic.
//   - [NullStore]: stores nothing; used when the persistent tier is disabled.
//   - [ScopedStore]: prefixes keys of another Store.
//
// # Keys
//
// Keys are plain file names. [EntryName] derives a readable, collision-safe
// name from an arbitrary identifier:
//
//	cache.EntryName("mdi:router", ".svg") // "mdi-router-1b2f...c9.svg"
//
// # Root directory
//
// [ResolveDir] implements the lookup used by the CLI: the
// GRAPHRENDER_ICON_CACHE_DIR variable (set but empty disables the tier),
// then the platform cache directory.
package cache
