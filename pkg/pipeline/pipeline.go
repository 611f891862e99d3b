// Package pipeline provides the render pipeline for graphrender.
//
// This package implements the complete load → normalize → route → style →
// assemble pipeline used by the CLI and the HTTP server. By centralizing
// this logic, both entry points share defaults, warnings and error codes.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Decode layout JSON into a [graph.Model]
//  2. Geometry: Normalize coordinates and route edges
//  3. Resources: Resolve the theme and the icons the model references
//  4. Assemble: Build and serialize the SVG document
//
// Recoverable problems (skipped edges, missing icons, healed cache entries,
// an unloadable theme while embedding is off) are logged and collected in
// [Result.Warnings]. Everything else aborts the render.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, fetcher, style.SassCLI{}, logger)
//	opts := pipeline.DefaultOptions()
//	opts.ThemePath = "theme.scss"
//	result, err := runner.RenderFile(ctx, "layout.json", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Document)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/graph"
	"github.com/matzehuels/graphrender/pkg/route"
	"github.com/matzehuels/graphrender/pkg/style"
	"github.com/matzehuels/graphrender/pkg/svg"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultPadding is the canvas margin on each side.
	DefaultPadding = graph.DefaultPadding

	// DefaultFontSize is the size of labels that carry none.
	DefaultFontSize = svg.DefaultFontSize

	// DefaultEdgePolicy skips edges whose endpoints do not resolve.
	DefaultEdgePolicy = route.PolicySkip
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one render.
// This struct supports JSON serialization for server requests.
type Options struct {
	Padding   float64     `json:"padding"`
	FontSize  float64     `json:"font_size,omitempty"`
	NodeStyle style.Attrs `json:"node_style,omitempty"`
	PortStyle style.Attrs `json:"port_style,omitempty"`
	EdgeStyle style.Attrs `json:"edge_style,omitempty"`

	// Theme options. ThemeCSS wins over ThemePath when non-nil.
	EmbedTheme bool    `json:"embed_theme"`
	ThemeCSS   *string `json:"theme_css,omitempty"`
	ThemePath  string  `json:"-"`

	Pretty     bool         `json:"pretty"`
	EdgePolicy route.Policy `json:"edge_policy,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// DefaultOptions returns the options used when nothing is configured:
// default padding and font size, embedded default theme, pretty output,
// unresolved edges skipped.
func DefaultOptions() Options {
	return Options{
		Padding:    DefaultPadding,
		FontSize:   DefaultFontSize,
		EmbedTheme: true,
		Pretty:     true,
		EdgePolicy: DefaultEdgePolicy,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the serialized SVG.
	Document []byte

	// Model is the normalized geometry the document was built from.
	Model *graph.Model

	// Theme is the resolved stylesheet, whether or not it was embedded.
	Theme style.Theme

	// Warnings are the recoverable problems met during the render.
	Warnings []error

	// Stats contains counts and timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	SkippedEdges int
	IconCount    int // distinct icons referenced
	MissingIcons int // referenced but unavailable
	Bytes        int
	LoadTime     time.Duration
	RenderTime   time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks option values and fills in defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "padding must not be negative (got %g)", o.Padding)
	}
	if o.FontSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "font size must not be negative (got %g)", o.FontSize)
	}
	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
	policy, err := route.ParsePolicy(string(o.EdgePolicy))
	if err != nil {
		return err
	}
	o.EdgePolicy = policy
	for _, st := range []struct {
		name  string
		attrs style.Attrs
	}{{"node", o.NodeStyle}, {"port", o.PortStyle}, {"edge", o.EdgeStyle}} {
		if keys := st.attrs.Geometry(); len(keys) > 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s style sets %s, which the layout determines", st.name, strings.Join(keys, ", "))
		}
	}
	// an unembedded theme is never read
	if o.EmbedTheme && o.ThemePath != "" && o.ThemeCSS == nil {
		if _, err := errors.ValidateThemePath(o.ThemePath); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ApplyProfile switches the options to the stylesheet of a profile bundle.
func (o *Options) ApplyProfile(p style.Profile) {
	to := p.ThemeOptions()
	o.ThemeCSS = to.CSS
	o.EmbedTheme = to.Embed
	o.validated = false
}

// ThemeOptions returns the theme selection for style.ResolveTheme.
func (o *Options) ThemeOptions(compiler style.Compiler) style.ThemeOptions {
	return style.ThemeOptions{
		CSS:      o.ThemeCSS,
		Path:     o.ThemePath,
		Embed:    o.EmbedTheme,
		Compiler: compiler,
	}
}

// AssemblerOptions returns the svg options for node, port and edge styles
// and the default font size.
func (o *Options) AssemblerOptions() []svg.Option {
	return []svg.Option{
		svg.WithNodeAttrs(o.NodeStyle),
		svg.WithPortAttrs(o.PortStyle),
		svg.WithEdgeAttrs(o.EdgeStyle),
		svg.WithFontSize(o.FontSize),
	}
}
