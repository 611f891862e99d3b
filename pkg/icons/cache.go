package icons

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphrender/pkg/cache"
	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/observability"
)

// Sources reported in [Result.Source].
const (
	SourceMemory     = "memory"
	SourcePersistent = "persistent"
	SourceNetwork    = "network"
	SourceNone       = "none"
)

// Result is the outcome of resolving one icon.
type Result struct {
	// Fragment is nil when the icon is unavailable.
	Fragment *Fragment
	// Source names the tier that produced Fragment.
	Source string
	// Warnings holds the recoverable problems met while resolving,
	// such as a healed persistent entry or a failed fetch.
	Warnings []error
}

// OK reports whether a fragment was resolved.
func (r Result) OK() bool { return r.Fragment != nil }

type entry struct {
	once sync.Once
	res  Result
}

// Cache is the two-tier icon cache. A Cache is safe for concurrent use;
// concurrent lookups of one identifier share a single load.
type Cache struct {
	mu      sync.Mutex
	mem     map[string]*entry
	store   cache.Store
	fetcher Fetcher
	logger  *log.Logger
}

// Option configures a [Cache].
type Option func(*Cache)

// WithStore sets the persistent tier. Nil disables it.
func WithStore(s cache.Store) Option {
	return func(c *Cache) {
		if s != nil {
			c.store = s
		}
	}
}

// WithFetcher sets the network collaborator. Nil disables fetching.
func WithFetcher(f Fetcher) Option {
	return func(c *Cache) { c.fetcher = f }
}

// WithLogger sets the logger used for warnings and debug tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Cache with an empty memory tier. Without options it has no
// persistent tier and no fetcher.
func New(opts ...Option) *Cache {
	c := &Cache{
		mem:    make(map[string]*entry),
		store:  cache.NewNullStore(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns the fragment for icon. It never fails: problems are
// reported in [Result.Warnings] and leave Fragment nil.
func (c *Cache) Resolve(ctx context.Context, icon string) Result {
	c.mu.Lock()
	e, seen := c.mem[icon]
	if !seen {
		e = &entry{}
		c.mem[icon] = e
	}
	c.mu.Unlock()

	loaded := false
	e.once.Do(func() {
		e.res = c.load(ctx, icon)
		loaded = true
	})
	if loaded {
		return e.res
	}

	observability.Icons().OnCacheHit(ctx, observability.TierMemory, icon)
	res := e.res
	if res.Fragment != nil {
		res.Source = SourceMemory
	}
	return res
}

// Len returns the number of identifiers in the memory tier.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mem)
}

func (c *Cache) load(ctx context.Context, icon string) Result {
	var res Result
	if err := errors.ValidateIconID(icon); err != nil {
		return c.fail(res, errors.Wrap(errors.ErrCodeFetch, err, "icon %q skipped", icon).At(icon))
	}

	key := cache.EntryName(icon, ".svg")
	if frag, warn := c.readStore(ctx, icon, key); frag != nil {
		observability.Icons().OnCacheHit(ctx, observability.TierPersistent, icon)
		c.logger.Debug("icon from persistent cache", "icon", icon)
		return Result{Fragment: frag, Source: SourcePersistent}
	} else if warn != nil {
		res.Warnings = append(res.Warnings, warn)
	}

	observability.Icons().OnCacheMiss(ctx, icon)
	if c.fetcher == nil {
		return c.fail(res, errors.New(errors.ErrCodeFetch, "icon %q not cached and fetching is disabled", icon))
	}
	data, err := c.fetcher.Fetch(ctx, icon)
	if err != nil {
		if !errors.Is(err, errors.ErrCodeFetch) {
			err = errors.Wrap(errors.ErrCodeFetch, err, "fetch icon %s", icon).At(icon)
		}
		return c.fail(res, err)
	}
	frag, err := Parse(data)
	if err != nil {
		return c.fail(res, errors.Wrap(errors.ErrCodeFetch, err, "icon %s", icon).At(icon))
	}

	if err := c.store.AtomicWrite(ctx, key, data); err != nil {
		c.logger.Warn("icon cache write failed", "icon", icon, "err", err)
	} else {
		observability.Icons().OnCacheSet(ctx, icon, len(data))
	}
	c.logger.Debug("icon fetched", "icon", icon, "bytes", len(data))
	res.Fragment = frag
	res.Source = SourceNetwork
	return res
}

// readStore returns a valid persistent entry, or a warning when an entry
// existed but had to be deleted.
func (c *Cache) readStore(ctx context.Context, icon, key string) (*Fragment, error) {
	data, ok, err := c.store.Read(ctx, key)
	if err != nil {
		c.logger.Warn("icon cache read failed", "icon", icon, "err", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	frag, perr := Parse(data)
	if perr == nil {
		return frag, nil
	}

	warn := errors.Wrap(errors.ErrCodeCacheCorruption, perr, "discarded cached icon %s", icon).At(icon)
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Warn("icon cache delete failed", "icon", icon, "err", err)
	}
	observability.Icons().OnCacheHeal(ctx, icon, warn)
	c.logger.Warn("corrupted icon cache entry removed", "icon", icon, "err", perr)
	return nil, warn
}

func (c *Cache) fail(res Result, err error) Result {
	c.logger.Warn("icon unavailable", "err", err)
	res.Source = SourceNone
	res.Warnings = append(res.Warnings, err)
	return res
}
