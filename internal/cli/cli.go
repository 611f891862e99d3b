package cli

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphrender/pkg/buildinfo"
	"github.com/matzehuels/graphrender/pkg/cache"
	"github.com/matzehuels/graphrender/pkg/config"
	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/icons"
	"github.com/matzehuels/graphrender/pkg/pipeline"
	"github.com/matzehuels/graphrender/pkg/style"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "graphrender"

	// redisIconPrefix scopes icon entries in a shared Redis database.
	redisIconPrefix = "graphrender:icons:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag value.
	configPath string

	// compiler compiles .scss/.sass themes. Tests replace it.
	compiler style.Compiler

	// fetcher overrides the Iconify fetcher built from the config. Tests
	// replace it.
	fetcher icons.Fetcher
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		compiler: style.SassCLI{},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "graphrender turns laid-out ELK graphs into SVG",
		Long:         `graphrender renders ELK-style laid-out graph JSON into a deterministic, themeable SVG document with nested nodes, ports, routed edges and cached icons.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $GRAPHRENDER_CONFIG, ./graphrender.toml, ~/.config/graphrender/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.iconsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig loads the config file selected by --config or the search path.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return cfg, nil
}

// newRunner creates a pipeline runner for the given config. The caller
// closes the runner's store.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	fetcher := c.fetcher
	if fetcher == nil {
		f, err := icons.NewIconifyFetcher(cfg.Icons.BaseURL, cfg.Icons.Timeout)
		if err != nil {
			store.Close()
			return nil, err
		}
		fetcher = f
	}
	c.Logger.Debug("icon store", "location", storeLocation(store))
	return pipeline.NewRunner(store, fetcher, c.compiler, c.Logger), nil
}

// openStore returns the persistent icon tier: Redis when icons.redis_url is
// set, otherwise the resolved cache directory.
func openStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.Icons.RedisURL != "" {
		rs, err := cache.NewRedisStore(ctx, cache.RedisConfig{URL: cfg.Icons.RedisURL})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open icon store")
		}
		return cache.NewScopedStore(rs, redisIconPrefix), nil
	}
	dir, enabled := cfg.IconCacheDir(nil)
	return cache.StoreForDir(dir, enabled), nil
}

func storeLocation(s cache.Store) string {
	if l, ok := s.(cache.Locator); ok {
		return l.Location()
	}
	return "(unknown)"
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions layers the config file over the pipeline defaults.
func baseOptions(cfg *config.Config) pipeline.Options {
	opts := pipeline.DefaultOptions()
	cfg.Apply(&opts)
	return opts
}

// =============================================================================
// Exit codes
// =============================================================================

// Process exit codes returned by [ExitCode].
const (
	ExitFailure     = 1   // internal, I/O and config errors
	ExitBadInput    = 2   // the layout could not be rendered as given
	ExitBadTheme    = 3   // theme or profile problems
	ExitInterrupted = 130 // SIGINT/SIGTERM
)

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	switch {
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, errors.ErrCodeInvalidInput), errors.Is(err, errors.ErrCodeStructural),
		errors.Is(err, errors.ErrCodeEdgeResolution), errors.Is(err, errors.ErrCodeFileNotFound):
		return ExitBadInput
	case errors.Is(err, errors.ErrCodeThemeCompilation), errors.Is(err, errors.ErrCodeInvalidTheme),
		errors.Is(err, errors.ErrCodeInvalidProfile):
		return ExitBadTheme
	}
	return ExitFailure
}
