package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphrender/pkg/cache"
	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/pipeline"
	"github.com/matzehuels/graphrender/pkg/route"
	"github.com/matzehuels/graphrender/pkg/style"
)

// stdio names standard input or output in place of a file path.
const stdio = "-"

// renderOpts holds the command-line flags for the render command.
// Only flags the user set override the config file.
type renderOpts struct {
	output      string            // output file, "-" for stdout
	theme       string            // .css, .scss or .sass theme file
	profile     string            // profile bundle (JSON or YAML)
	noTheme     bool              // do not embed the theme
	strictEdges bool              // fail on unresolved edges
	pretty      bool              // indented output
	compact     bool              // single-line output
	padding     float64           // canvas margin
	fontSize    float64           // default label size
	nodeStyle   map[string]string // node rectangle attribute overrides
	portStyle   map[string]string // port rectangle attribute overrides
	edgeStyle   map[string]string // edge path attribute overrides
}

// renderCommand creates the render command.
//
// Settings are layered: pipeline defaults, then the config file, then the
// flags given on the command line.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <layout.json>",
		Short: "Render a laid-out graph to SVG",
		Long: `Render an ELK laid-out graph JSON file to SVG.

The output defaults to the input path with an .svg extension. Use "-" as the
input to read standard input and "-o -" to write the document to standard
output.`,
		Example: `  graphrender render layout.json
  graphrender render layout.json -o out.svg --theme theme.scss
  cat layout.json | graphrender render - -o - --compact`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	defaults := pipeline.DefaultOptions()
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input with .svg extension, \"-\" for stdout)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "theme stylesheet (.css, .scss or .sass)")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "profile render bundle (JSON or YAML)")
	cmd.Flags().BoolVar(&opts.noTheme, "no-theme", false, "do not embed a stylesheet")
	cmd.Flags().BoolVar(&opts.strictEdges, "strict-edges", false, "fail when an edge references an unknown node or port")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", defaults.Pretty, "indent the output")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "write the document on a single line")
	cmd.Flags().Float64Var(&opts.padding, "padding", defaults.Padding, "canvas margin on each side")
	cmd.Flags().Float64Var(&opts.fontSize, "font-size", defaults.FontSize, "font size of labels that carry none")
	cmd.Flags().StringToStringVar(&opts.nodeStyle, "node-style", nil, "node attribute overrides (e.g. fill=#eef,rx=4)")
	cmd.Flags().StringToStringVar(&opts.portStyle, "port-style", nil, "port attribute overrides")
	cmd.Flags().StringToStringVar(&opts.edgeStyle, "edge-style", nil, "edge attribute overrides (e.g. stroke-width=2)")

	cmd.MarkFlagsMutuallyExclusive("theme", "profile")
	cmd.MarkFlagsMutuallyExclusive("pretty", "compact")

	return cmd
}

// runRender executes the render command.
func (c *CLI) runRender(cmd *cobra.Command, input string, ro *renderOpts) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts := baseOptions(cfg)
	opts.Logger = c.Logger
	if err := ro.apply(cmd, &opts); err != nil {
		return err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	watch := newStopwatch(c.Logger)
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Store.Close()
	watch.lap("icon store ready", "store", storeLocation(runner.Store))

	output := ro.output
	if output == "" {
		output = stdio
		if input != stdio {
			output = pipeline.DefaultOutputPath(input)
		}
	}

	result, err := c.render(ctx, runner, input, output, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
	if err != nil {
		return err
	}
	watch.lap("rendered", "load", result.Stats.LoadTime, "render", result.Stats.RenderTime)

	printWarnings(result.Warnings)
	if output != stdio {
		watch.done("Rendered " + output)
		printSuccess("Rendered %s", input)
		printFile(output)
		printStats(result.Stats)
	}
	return nil
}

// render runs the pipeline and delivers the document. File-to-file renders
// are written atomically; nothing is written when the render fails.
func (c *CLI) render(ctx context.Context, runner *pipeline.Runner, input, output string, stdin io.Reader, stdout io.Writer, opts pipeline.Options) (*pipeline.Result, error) {
	if input != stdio && output != stdio {
		return runner.RenderToFile(ctx, input, output, opts)
	}

	var (
		result *pipeline.Result
		err    error
	)
	if input == stdio {
		data, rerr := io.ReadAll(stdin)
		if rerr != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, rerr, "read standard input")
		}
		result, err = runner.Render(ctx, data, opts)
	} else {
		result, err = runner.RenderFile(ctx, input, opts)
	}
	if err != nil {
		return nil, err
	}

	if output == stdio {
		_, err = stdout.Write(result.Document)
		return result, err
	}
	if err := cache.WriteFileAtomic(output, result.Document, 0o644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
	}
	return result, nil
}

// apply layers the flags the user set on top of opts.
func (ro *renderOpts) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	flags := cmd.Flags()
	if flags.Changed("padding") {
		opts.Padding = ro.padding
	}
	if flags.Changed("font-size") {
		opts.FontSize = ro.fontSize
	}
	if flags.Changed("pretty") {
		opts.Pretty = ro.pretty
	}
	if ro.compact {
		opts.Pretty = false
	}
	if ro.strictEdges {
		opts.EdgePolicy = route.PolicyAbort
	}
	if ro.theme != "" {
		opts.ThemePath = ro.theme
		opts.ThemeCSS = nil
	}
	if ro.profile != "" {
		p, err := style.ReadProfileFile(ro.profile)
		if err != nil {
			return err
		}
		opts.ApplyProfile(p)
	}
	if ro.noTheme {
		opts.EmbedTheme = false
	}
	opts.NodeStyle = opts.NodeStyle.Overlay(style.Attrs(ro.nodeStyle))
	opts.PortStyle = opts.PortStyle.Overlay(style.Attrs(ro.portStyle))
	opts.EdgeStyle = opts.EdgeStyle.Overlay(style.Attrs(ro.edgeStyle))
	return nil
}
