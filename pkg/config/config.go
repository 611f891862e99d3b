// Package config loads graphrender settings from a TOML or YAML file.
//
// Settings layer on top of [pipeline.DefaultOptions]: a key that is absent
// from the file leaves the default alone, and CLI flags are applied after
// the file by the caller.
//
// # File format
//
//	padding = 10
//	font_size = 12
//	embed_theme = true
//	theme = "theme.scss"     # relative to the config file
//	pretty = true
//	edge_policy = "skip"     # or "abort"
//
//	[node_style]
//	fill = "#eef"
//	rx = 4
//
//	[icons]
//	cache_dir = "~/.cache/graphrender/icons"   # "" disables the persistent tier
//	redis_url = "redis://localhost:6379/0"
//	base_url = "https://api.iconify.design"
//	timeout = "5s"
//
// The same keys are accepted in YAML. Unknown keys are rejected.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/graphrender/pkg/cache"
	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/pipeline"
	"github.com/matzehuels/graphrender/pkg/route"
	"github.com/matzehuels/graphrender/pkg/style"
)

// Config is the decoded config file. Pointer fields distinguish an absent
// key from a zero value.
type Config struct {
	Padding    *float64       `toml:"padding" yaml:"padding"`
	FontSize   *float64       `toml:"font_size" yaml:"font_size"`
	EmbedTheme *bool          `toml:"embed_theme" yaml:"embed_theme"`
	Theme      string         `toml:"theme" yaml:"theme"`
	Pretty     *bool          `toml:"pretty" yaml:"pretty"`
	EdgePolicy string         `toml:"edge_policy" yaml:"edge_policy"`
	NodeStyle  map[string]any `toml:"node_style" yaml:"node_style"`
	PortStyle  map[string]any `toml:"port_style" yaml:"port_style"`
	EdgeStyle  map[string]any `toml:"edge_style" yaml:"edge_style"`
	Icons      IconsConfig    `toml:"icons" yaml:"icons"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// IconsConfig holds icon cache and fetcher settings.
type IconsConfig struct {
	// CacheDir overrides the platform cache root. An explicit empty string
	// disables the persistent tier.
	CacheDir *string       `toml:"cache_dir" yaml:"cache_dir"`
	RedisURL string        `toml:"redis_url" yaml:"redis_url"`
	BaseURL  string        `toml:"base_url" yaml:"base_url"`
	Timeout  time.Duration `toml:"timeout" yaml:"timeout"`
}

// Load finds and loads the config file. With no file found it returns an
// empty Config, which applies no changes.
func Load(explicit string) (*Config, error) {
	path := FindConfigPath(explicit, nil)
	if path == "" {
		return &Config{}, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the config file at path. The format follows the
// extension: .toml, or .yaml/.yml.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		cfg, err = parseTOML(data)
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (use .toml, .yaml or .yml)", ext)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseTOML(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return &cfg, nil
}

func parseYAML(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges. Padding and font size must not be
// negative and the edge policy must be known.
func (c *Config) Validate() error {
	if c.Padding != nil && *c.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "padding must not be negative (got %g)", *c.Padding)
	}
	if c.FontSize != nil && *c.FontSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "font_size must not be negative (got %g)", *c.FontSize)
	}
	if _, err := route.ParsePolicy(c.EdgePolicy); err != nil {
		return err
	}
	if c.Icons.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "icons.timeout must not be negative")
	}
	if c.Icons.BaseURL != "" {
		if err := errors.ValidateURL(c.Icons.BaseURL); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the keys present in the file onto opts.
func (c *Config) Apply(opts *pipeline.Options) {
	if c.Padding != nil {
		opts.Padding = *c.Padding
	}
	if c.FontSize != nil {
		opts.FontSize = *c.FontSize
	}
	if c.EmbedTheme != nil {
		opts.EmbedTheme = *c.EmbedTheme
	}
	if c.Pretty != nil {
		opts.Pretty = *c.Pretty
	}
	if c.Theme != "" {
		opts.ThemePath = c.ThemePath()
	}
	if c.EdgePolicy != "" {
		opts.EdgePolicy = route.Policy(c.EdgePolicy)
	}
	opts.NodeStyle = opts.NodeStyle.Overlay(style.AttrsFromMap(c.NodeStyle))
	opts.PortStyle = opts.PortStyle.Overlay(style.AttrsFromMap(c.PortStyle))
	opts.EdgeStyle = opts.EdgeStyle.Overlay(style.AttrsFromMap(c.EdgeStyle))
}

// ThemePath returns the theme file, resolved against the directory of the
// config file when relative.
func (c *Config) ThemePath() string {
	if c.Theme == "" || filepath.IsAbs(c.Theme) || c.Path == "" {
		return c.Theme
	}
	return filepath.Join(filepath.Dir(c.Path), c.Theme)
}

// IconCacheDir returns the persistent icon cache root and whether the tier
// is enabled. $GRAPHRENDER_ICON_CACHE_DIR wins over icons.cache_dir, which
// wins over the platform default.
func (c *Config) IconCacheDir(lookup func(string) (string, bool)) (string, bool) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if _, ok := lookup(cache.EnvIconCacheDir); !ok && c.Icons.CacheDir != nil {
		dir := expandHome(*c.Icons.CacheDir)
		return dir, dir != ""
	}
	return cache.ResolveDir(lookup)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
