// Package observability lets callers watch renders without the libraries
// depending on a metrics or tracing backend.
//
// Four hook interfaces cover the pipeline stages that do I/O or take time:
// [RenderHooks] (whole renders), [ThemeHooks] (stylesheet resolution),
// [IconHooks] (the two-tier icon cache) and [HTTPHooks] (outgoing requests).
// Each defaults to a no-op. [Register] installs any value implementing one or
// more of them:
//
//	counters := observability.NewCounters()
//	observability.Register(counters)
//	defer observability.Reset()
//
// Libraries look hooks up per call:
//
//	observability.Render().OnRenderStart(ctx, input)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Hook interfaces
// =============================================================================

// RenderStats summarizes one finished render.
type RenderStats struct {
	Nodes    int
	Edges    int
	Skipped  int
	Icons    int
	Warnings int
	Bytes    int
}

// RenderHooks observes whole renders.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, input string)
	OnRenderComplete(ctx context.Context, input string, stats RenderStats, duration time.Duration, err error)
}

// ThemeHooks observes loading and compiling a theme file. It is not called
// for the built-in stylesheet.
type ThemeHooks interface {
	OnThemeLoad(ctx context.Context, path string, compiled bool, duration time.Duration, err error)
}

// Icon cache tiers reported to [IconHooks].
const (
	TierMemory     = "memory"
	TierPersistent = "persistent"
)

// IconHooks observes the icon cache.
type IconHooks interface {
	OnCacheHit(ctx context.Context, tier, icon string)
	// OnCacheMiss fires when neither tier holds the icon.
	OnCacheMiss(ctx context.Context, icon string)
	// OnCacheSet fires after a persistent write succeeded.
	OnCacheSet(ctx context.Context, icon string, size int)
	// OnCacheHeal fires when a corrupted persistent entry was dropped.
	OnCacheHeal(ctx context.Context, icon string, err error)
}

// HTTPHooks observes outgoing requests made by the retrying client.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op implementations
// =============================================================================

// Noop implements every hook interface and does nothing.
type Noop struct{}

func (Noop) OnRenderStart(context.Context, string)                                       {}
func (Noop) OnRenderComplete(context.Context, string, RenderStats, time.Duration, error) {}
func (Noop) OnThemeLoad(context.Context, string, bool, time.Duration, error)             {}
func (Noop) OnCacheHit(context.Context, string, string)                                  {}
func (Noop) OnCacheMiss(context.Context, string)                                         {}
func (Noop) OnCacheSet(context.Context, string, int)                                     {}
func (Noop) OnCacheHeal(context.Context, string, error)                                  {}
func (Noop) OnRequest(context.Context, string, string, string)                           {}
func (Noop) OnResponse(context.Context, string, string, string, int, time.Duration)      {}
func (Noop) OnError(context.Context, string, string, string, error)                      {}

// =============================================================================
// Registry
// =============================================================================

// slot holds one registered hook set.
type slot[T any] struct {
	mu sync.RWMutex
	h  T
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h
}

func (s *slot[T]) set(h T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h = h
}

var (
	renderSlot = &slot[RenderHooks]{h: Noop{}}
	themeSlot  = &slot[ThemeHooks]{h: Noop{}}
	iconSlot   = &slot[IconHooks]{h: Noop{}}
	httpSlot   = &slot[HTTPHooks]{h: Noop{}}
)

// Register installs h for every hook interface it implements and reports
// whether it implemented any. Call it at startup, before rendering.
func Register(h any) bool {
	matched := false
	if r, ok := h.(RenderHooks); ok {
		renderSlot.set(r)
		matched = true
	}
	if t, ok := h.(ThemeHooks); ok {
		themeSlot.set(t)
		matched = true
	}
	if i, ok := h.(IconHooks); ok {
		iconSlot.set(i)
		matched = true
	}
	if c, ok := h.(HTTPHooks); ok {
		httpSlot.set(c)
		matched = true
	}
	return matched
}

// Render returns the registered render hooks.
func Render() RenderHooks { return renderSlot.get() }

// Theme returns the registered theme hooks.
func Theme() ThemeHooks { return themeSlot.get() }

// Icons returns the registered icon cache hooks.
func Icons() IconHooks { return iconSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op hooks.
func Reset() { Register(Noop{}) }
