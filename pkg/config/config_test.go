package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/pipeline"
	"github.com/matzehuels/graphrender/pkg/route"
	"github.com/matzehuels/graphrender/pkg/style"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const tomlConfig = `
padding = 4
font_size = 14
embed_theme = false
theme = "themes/dark.scss"
pretty = false
edge_policy = "abort"

[node_style]
fill = "#eef"
rx = 4
stroke = ""

[edge_style]
stroke_width = 2.5

[icons]
cache_dir = ""
redis_url = "redis://localhost:6379/1"
base_url = "https://icons.example.com"
timeout = "2s"
`

const yamlConfig = `
padding: 4
font_size: 14
embed_theme: false
theme: themes/dark.scss
pretty: false
edge_policy: abort
node_style:
  fill: "#eef"
  rx: 4
  stroke: ""
edge_style:
  stroke_width: 2.5
icons:
  cache_dir: ""
  redis_url: redis://localhost:6379/1
  base_url: https://icons.example.com
  timeout: 2s
`

func TestLoadFromPathFormats(t *testing.T) {
	for _, tt := range []struct{ name, content string }{
		{"graphrender.toml", tomlConfig},
		{"graphrender.yaml", yamlConfig},
		{"graphrender.yml", yamlConfig},
	} {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, tt.name, tt.content)

			cfg, err := LoadFromPath(path)
			require.NoError(t, err)
			assert.Equal(t, path, cfg.Path)
			require.NotNil(t, cfg.Padding)
			assert.Equal(t, 4.0, *cfg.Padding)
			assert.Equal(t, "abort", cfg.EdgePolicy)
			assert.Equal(t, "redis://localhost:6379/1", cfg.Icons.RedisURL)
			assert.Equal(t, "https://icons.example.com", cfg.Icons.BaseURL)
			assert.Equal(t, 2*time.Second, cfg.Icons.Timeout)

			opts := pipeline.DefaultOptions()
			cfg.Apply(&opts)
			assert.Equal(t, 4.0, opts.Padding)
			assert.Equal(t, 14.0, opts.FontSize)
			assert.False(t, opts.EmbedTheme)
			assert.False(t, opts.Pretty)
			assert.Equal(t, route.PolicyAbort, opts.EdgePolicy)
			assert.Equal(t, filepath.Join(dir, "themes", "dark.scss"), opts.ThemePath)
			assert.Equal(t, style.Attrs{"fill": "#eef", "rx": "4", "stroke": ""}, opts.NodeStyle)
			assert.Equal(t, style.Attrs{"stroke-width": "2.5"}, opts.EdgeStyle)
			assert.Nil(t, opts.PortStyle)

			dirPath, enabled := cfg.IconCacheDir(func(string) (string, bool) { return "", false })
			assert.False(t, enabled)
			assert.Empty(t, dirPath)
		})
	}
}

func TestApplyLeavesAbsentKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.toml", "padding = 0\n")
	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	opts := pipeline.DefaultOptions()
	cfg.Apply(&opts)

	want := pipeline.DefaultOptions()
	want.Padding = 0
	assert.Equal(t, want, opts)
}

func TestEmptyConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "")
	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	opts := pipeline.DefaultOptions()
	cfg.Apply(&opts)
	assert.Equal(t, pipeline.DefaultOptions(), opts)
}

func TestLoadFromPathErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errors.Code
	}{
		{"unknown toml key", "c.toml", "paddin = 3\n", errors.ErrCodeInvalidConfig},
		{"unknown yaml key", "c.yaml", "paddin: 3\n", errors.ErrCodeInvalidConfig},
		{"bad toml", "c.toml", "padding = = 3\n", errors.ErrCodeInvalidConfig},
		{"bad yaml type", "c.yaml", "padding: [1]\n", errors.ErrCodeInvalidConfig},
		{"negative padding", "c.toml", "padding = -1\n", errors.ErrCodeInvalidConfig},
		{"negative font", "c.toml", "font_size = -2\n", errors.ErrCodeInvalidConfig},
		{"bad policy", "c.toml", "edge_policy = \"ignore\"\n", errors.ErrCodeInvalidConfig},
		{"bad base url", "c.toml", "[icons]\nbase_url = \"ftp://x\"\n", errors.ErrCodeInvalidConfig},
		{"unsupported ext", "c.json", "{}", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			_, err := LoadFromPath(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}

	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestFindConfigPath(t *testing.T) {
	xdg := t.TempDir()
	home := t.TempDir()
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	// The working directory of the test binary has no graphrender config.
	assert.Equal(t, "", FindConfigPath("", getenv))

	homeCfg := writeFile(t, home, ".config/graphrender/config.yaml", "padding: 1\n")
	env["HOME"] = home
	assert.Equal(t, homeCfg, FindConfigPath("", getenv))

	xdgCfg := writeFile(t, xdg, "graphrender/config.toml", "padding = 1\n")
	env["XDG_CONFIG_HOME"] = xdg
	assert.Equal(t, xdgCfg, FindConfigPath("", getenv))

	env[EnvConfigPath] = "/from/env.toml"
	assert.Equal(t, "/from/env.toml", FindConfigPath("", getenv))

	assert.Equal(t, "/from/flag.yaml", FindConfigPath("/from/flag.yaml", getenv))
}

func TestIconCacheDir(t *testing.T) {
	custom := "/var/cache/icons"
	cfg := &Config{Icons: IconsConfig{CacheDir: &custom}}

	none := func(string) (string, bool) { return "", false }
	dir, ok := cfg.IconCacheDir(none)
	assert.True(t, ok)
	assert.Equal(t, custom, dir)

	fromEnv := func(k string) (string, bool) {
		if k == "GRAPHRENDER_ICON_CACHE_DIR" {
			return "/env/icons", true
		}
		return "", false
	}
	dir, ok = cfg.IconCacheDir(fromEnv)
	assert.True(t, ok)
	assert.Equal(t, "/env/icons", dir)

	xdg := func(k string) (string, bool) {
		if k == "XDG_CACHE_HOME" {
			return "/xdg", true
		}
		return "", false
	}
	dir, ok = (&Config{}).IconCacheDir(xdg)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("/xdg", "graphrender", "icons"), dir)
}
