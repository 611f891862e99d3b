package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Counters is an in-process recorder implementing every hook interface.
// The serve command exposes its [Snapshot] on /stats.
type Counters struct {
	renders, renderFailures  atomic.Int64
	renderNanos, renderBytes atomic.Int64
	skippedEdges, warnings   atomic.Int64

	themeLoads, themeCompiles, themeFailures atomic.Int64

	memoryHits, persistentHits atomic.Int64
	misses, writes, heals      atomic.Int64

	requests, requestErrors atomic.Int64
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters { return &Counters{} }

// CounterSnapshot is a point-in-time copy of [Counters].
type CounterSnapshot struct {
	Renders        int64         `json:"renders"`
	RenderFailures int64         `json:"render_failures"`
	RenderTime     time.Duration `json:"render_time_ns"`
	BytesWritten   int64         `json:"bytes_written"`
	SkippedEdges   int64         `json:"skipped_edges"`
	Warnings       int64         `json:"warnings"`

	ThemeLoads    int64 `json:"theme_loads"`
	ThemeCompiles int64 `json:"theme_compiles"`
	ThemeFailures int64 `json:"theme_failures"`

	IconMemoryHits     int64 `json:"icon_memory_hits"`
	IconPersistentHits int64 `json:"icon_persistent_hits"`
	IconMisses         int64 `json:"icon_misses"`
	IconWrites         int64 `json:"icon_writes"`
	IconHeals          int64 `json:"icon_heals"`

	HTTPRequests int64 `json:"http_requests"`
	HTTPErrors   int64 `json:"http_errors"`
}

// Snapshot copies the current values.
func (c *Counters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		Renders:            c.renders.Load(),
		RenderFailures:     c.renderFailures.Load(),
		RenderTime:         time.Duration(c.renderNanos.Load()),
		BytesWritten:       c.renderBytes.Load(),
		SkippedEdges:       c.skippedEdges.Load(),
		Warnings:           c.warnings.Load(),
		ThemeLoads:         c.themeLoads.Load(),
		ThemeCompiles:      c.themeCompiles.Load(),
		ThemeFailures:      c.themeFailures.Load(),
		IconMemoryHits:     c.memoryHits.Load(),
		IconPersistentHits: c.persistentHits.Load(),
		IconMisses:         c.misses.Load(),
		IconWrites:         c.writes.Load(),
		IconHeals:          c.heals.Load(),
		HTTPRequests:       c.requests.Load(),
		HTTPErrors:         c.requestErrors.Load(),
	}
}

func (c *Counters) OnRenderStart(context.Context, string) {}

func (c *Counters) OnRenderComplete(_ context.Context, _ string, stats RenderStats, d time.Duration, err error) {
	c.renders.Add(1)
	c.renderNanos.Add(int64(d))
	if err != nil {
		c.renderFailures.Add(1)
		return
	}
	c.renderBytes.Add(int64(stats.Bytes))
	c.skippedEdges.Add(int64(stats.Skipped))
	c.warnings.Add(int64(stats.Warnings))
}

func (c *Counters) OnThemeLoad(_ context.Context, _ string, compiled bool, _ time.Duration, err error) {
	c.themeLoads.Add(1)
	if compiled {
		c.themeCompiles.Add(1)
	}
	if err != nil {
		c.themeFailures.Add(1)
	}
}

func (c *Counters) OnCacheHit(_ context.Context, tier, _ string) {
	if tier == TierMemory {
		c.memoryHits.Add(1)
	} else {
		c.persistentHits.Add(1)
	}
}

func (c *Counters) OnCacheMiss(context.Context, string)        { c.misses.Add(1) }
func (c *Counters) OnCacheSet(context.Context, string, int)    { c.writes.Add(1) }
func (c *Counters) OnCacheHeal(context.Context, string, error) { c.heals.Add(1) }

func (c *Counters) OnRequest(context.Context, string, string, string) { c.requests.Add(1) }

func (c *Counters) OnResponse(context.Context, string, string, string, int, time.Duration) {}

func (c *Counters) OnError(context.Context, string, string, string, error) {
	c.requestErrors.Add(1)
}
