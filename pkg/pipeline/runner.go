package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphrender/pkg/cache"
	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/graph"
	"github.com/matzehuels/graphrender/pkg/icons"
	"github.com/matzehuels/graphrender/pkg/observability"
	"github.com/matzehuels/graphrender/pkg/style"
)

// Runner encapsulates pipeline execution with its external collaborators.
// Both CLI and server use this to avoid duplicating wiring.
//
// The Runner is stateless except for its collaborators - it doesn't store
// render results, and every render gets its own icon memory tier. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Store    cache.Store    // persistent icon tier
	Fetcher  icons.Fetcher  // nil disables icon downloads
	Compiler style.Compiler // nil rejects .scss/.sass themes
	Logger   *log.Logger
}

// NewRunner creates a runner with the given collaborators.
// If store is nil, a NullStore is used (persistent caching disabled).
func NewRunner(store cache.Store, fetcher icons.Fetcher, compiler style.Compiler, logger *log.Logger) *Runner {
	if store == nil {
		store = cache.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:    store,
		Fetcher:  fetcher,
		Compiler: compiler,
		Logger:   logger,
	}
}

// RenderFile reads a layout file and renders it.
func (r *Runner) RenderFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return r.execute(ctx, path, data, opts)
}

// Render renders layout JSON held in memory.
func (r *Runner) Render(ctx context.Context, data []byte, opts Options) (*Result, error) {
	return r.execute(ctx, "<input>", data, opts)
}

// RenderToFile renders input and writes the document to output atomically.
// Nothing is written when the render fails.
func (r *Runner) RenderToFile(ctx context.Context, input, output string, opts Options) (*Result, error) {
	result, err := r.RenderFile(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	if err := cache.WriteFileAtomic(output, result.Document, 0o644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
	}
	return result, nil
}

// DefaultOutputPath derives the output path from the input file name:
// layout.json becomes layout.svg in the same directory.
func DefaultOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
}

func (r *Runner) execute(ctx context.Context, name string, data []byte, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, name)
	start := time.Now()
	result = &Result{}
	defer func() {
		hooks.OnRenderComplete(ctx, name, renderStats(result), time.Since(start), err)
	}()

	// Stage 1: Load
	m, err := Load(data)
	if err != nil {
		return nil, err
	}
	result.Model = m
	result.Stats.LoadTime = time.Since(start)
	result.Stats.NodeCount = len(m.Nodes) - 1
	result.Stats.EdgeCount = len(m.Edges)
	opts.Logger.Debug("loaded layout", "input", name, "nodes", result.Stats.NodeCount, "edges", result.Stats.EdgeCount)

	// Stage 2: Geometry
	routes, err := Geometry(m, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.SkippedEdges = len(routes.Skipped)
	r.warn(result, opts.Logger, routes.Warnings...)

	// Stage 3: Resources
	theme, err := style.ResolveTheme(ctx, opts.ThemeOptions(r.Compiler))
	if err != nil {
		return nil, err
	}
	result.Theme = theme
	if theme.Warning != nil {
		r.warn(result, opts.Logger, theme.Warning)
	}
	opts.Logger.Debug("resolved theme", "origin", theme.Origin, "embed", theme.Embed)

	frags := r.resolveIcons(ctx, m, opts.Logger, result)

	// Stage 4: Assemble
	renderStart := time.Now()
	result.Document = Assemble(m, routes, theme, frags, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	result.Stats.Bytes = len(result.Document)

	opts.Logger.Info("rendered svg",
		"input", name,
		"bytes", result.Stats.Bytes,
		"warnings", len(result.Warnings),
		"duration", time.Since(start))
	return result, nil
}

func (r *Runner) resolveIcons(ctx context.Context, m *graph.Model, logger *log.Logger, result *Result) map[string]*icons.Fragment {
	ids := m.Icons()
	result.Stats.IconCount = len(ids)
	if len(ids) == 0 {
		return nil
	}

	c := icons.New(
		icons.WithStore(r.Store),
		icons.WithFetcher(r.Fetcher),
		icons.WithLogger(logger),
	)
	frags := make(map[string]*icons.Fragment, len(ids))
	for _, id := range ids {
		res := c.Resolve(ctx, id)
		result.Warnings = append(result.Warnings, res.Warnings...)
		if !res.OK() {
			result.Stats.MissingIcons++
			continue
		}
		frags[id] = res.Fragment
	}
	return frags
}

// warn logs and records recoverable problems.
func (r *Runner) warn(result *Result, logger *log.Logger, warnings ...error) {
	for _, w := range warnings {
		logger.Warn(w)
		result.Warnings = append(result.Warnings, w)
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func renderStats(result *Result) observability.RenderStats {
	if result == nil {
		return observability.RenderStats{}
	}
	return observability.RenderStats{
		Nodes:    result.Stats.NodeCount,
		Edges:    result.Stats.EdgeCount,
		Skipped:  result.Stats.SkippedEdges,
		Icons:    result.Stats.IconCount - result.Stats.MissingIcons,
		Warnings: len(result.Warnings),
		Bytes:    result.Stats.Bytes,
	}
}
