// Package icons resolves icon identifiers to validated SVG fragments.
//
// # Tiers
//
// [Cache.Resolve] looks an identifier up in three places, in order:
//
//  1. the in-process memory tier, owned by one [Cache]
//  2. a persistent [cache.Store] shared across processes
//  3. the network, through an [Fetcher]
//
// The memory tier remembers failures as well as successes, so every
// identifier reaches the network at most once per [Cache].
//
// # Self-heal
//
// A persistent entry that does not parse as SVG with positive extents is
// deleted and treated as a miss. The icon is then fetched again and the
// entry rewritten with [cache.Store.AtomicWrite].
//
// # Failures
//
// Icon failures never abort a render. Resolve returns no fragment and a
// warning carrying the FETCH or CACHE_CORRUPTION code; the node is drawn
// without its icon.
package icons
