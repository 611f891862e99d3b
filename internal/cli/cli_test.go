package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/graphrender/pkg/cache"
	"github.com/matzehuels/graphrender/pkg/config"
	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/icons"
	"github.com/matzehuels/graphrender/pkg/style"
)

const flatLayout = `{
  "id": "root", "width": 200, "height": 100,
  "children": [
    {"id": "a", "x": 10, "y": 10, "width": 50, "height": 20, "type": "Router", "icon": "mdi:router"}
  ]
}`

const danglingLayout = `{
  "children": [{"id": "a", "x": 0, "y": 0, "width": 10, "height": 10}],
  "edges": [{"id": "bad", "source": "a", "target": "ghost"}]
}`

const iconSVG = `<svg viewBox="0 0 24 24"><path d="M0 0h24v24H0z"/></svg>`

// testEnv isolates a CLI from the user's config and cache directories.
type testEnv struct {
	cli      *CLI
	ui       *bytes.Buffer
	cacheDir string
	dir      string
	fetches  atomic.Int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{ui: &bytes.Buffer{}, cacheDir: t.TempDir(), dir: t.TempDir()}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(cache.EnvIconCacheDir, env.cacheDir)

	env.cli = New(io.Discard, LogInfo)
	env.cli.compiler = style.CompilerFunc(func(_ context.Context, src style.Source) (string, error) {
		return "/* compiled */\n.node { fill: red; }", nil
	})
	env.cli.fetcher = icons.FetcherFunc(func(_ context.Context, icon string) ([]byte, error) {
		env.fetches.Add(1)
		return []byte(iconSVG), nil
	})

	old := uiOut
	uiOut = env.ui
	t.Cleanup(func() { uiOut = old })
	return env
}

func (e *testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command and returns what it wrote to stdout.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := e.cli.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRenderDefaultOutputPath(t *testing.T) {
	env := newTestEnv(t)
	input := env.write(t, "layout.json", flatLayout)

	if _, err := env.run(t, "", "render", input); err != nil {
		t.Fatalf("render: %v", err)
	}

	doc := readFile(t, filepath.Join(env.dir, "layout.svg"))
	for _, want := range []string{`width="220"`, `height="120"`, `<style>`, `<use href="#icon-mdi-router"/>`} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %s", want)
		}
	}
	if !strings.Contains(env.ui.String(), "Rendered") {
		t.Errorf("status output = %q", env.ui.String())
	}
	if env.fetches.Load() != 1 {
		t.Errorf("fetches = %d, want 1", env.fetches.Load())
	}
}

func TestRenderStdinToStdout(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, flatLayout, "render", "-", "-o", "-", "--compact", "--no-theme")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Count(out, "\n") != 1 || !strings.HasSuffix(out, "</svg>\n") {
		t.Errorf("compact output should be one line, got %q", out)
	}
	if strings.Contains(out, "<style") {
		t.Error("--no-theme should not embed a stylesheet")
	}
	if env.ui.Len() != 0 {
		t.Errorf("stdout render should not print status, got %q", env.ui.String())
	}
}

func TestRenderFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		want  []string
		avoid []string
	}{
		{"padding", []string{"--padding", "5"}, []string{`width="210"`, `height="110"`}, nil},
		{"node style", []string{"--node-style", "fill=red,rx="}, []string{`fill="red"`}, []string{`rx="2"`}},
		{"font size", []string{"--font-size", "20"}, []string{`font-size="20"`}, []string{`font-size="12"`}},
		{"pretty off", []string{"--pretty=false"}, nil, []string{"\n  <"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			input := env.write(t, "layout.json", flatLayout)
			out, err := env.run(t, "", append([]string{"render", input, "-o", "-"}, tt.args...)...)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %s", w)
				}
			}
			for _, a := range tt.avoid {
				if strings.Contains(out, a) {
					t.Errorf("output should not contain %q", a)
				}
			}
		})
	}
}

func TestRenderRejectsGeometryStyle(t *testing.T) {
	env := newTestEnv(t)
	input := env.write(t, "layout.json", flatLayout)
	output := filepath.Join(t.TempDir(), "out.svg")

	_, err := env.run(t, "", "render", input, "-o", output, "--node-style", "x=5")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("err = %v, want INVALID_CONFIG", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("no output should be written")
	}
}

func TestRenderThemeAndProfile(t *testing.T) {
	env := newTestEnv(t)
	input := env.write(t, "layout.json", flatLayout)
	theme := env.write(t, "theme.scss", "$c: red;\n.node { fill: $c; }\n")
	profile := env.write(t, "bundle.json", `{"profileId": "p", "profileVersion": 1, "checksum": "x", "renderCss": ".edge{stroke:blue}"}`)

	out, err := env.run(t, "", "render", input, "-o", "-", "--theme", theme)
	if err != nil {
		t.Fatalf("render --theme: %v", err)
	}
	if !strings.Contains(out, "/* compiled */") {
		t.Error("compiled theme not embedded")
	}

	out, err = env.run(t, "", "render", input, "-o", "-", "--profile", profile)
	if err != nil {
		t.Fatalf("render --profile: %v", err)
	}
	if !strings.Contains(out, ".edge{stroke:blue}") {
		t.Error("profile css not embedded")
	}

	if _, err := env.run(t, "", "render", input, "--theme", theme, "--profile", profile); err == nil {
		t.Error("--theme and --profile should be mutually exclusive")
	}
}

func TestRenderConfigFile(t *testing.T) {
	env := newTestEnv(t)
	input := env.write(t, "layout.json", flatLayout)
	cfg := env.write(t, "graphrender.toml", "padding = 0\npretty = false\n\n[node_style]\nfill = \"#eef\"\n")

	out, err := env.run(t, "", "--config", cfg, "render", input, "-o", "-")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{`width="200"`, `fill="#eef"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
	if strings.Count(out, "\n") != 1 {
		t.Error("config pretty = false should give compact output")
	}

	// Flags win over the config file.
	out, err = env.run(t, "", "--config", cfg, "render", input, "-o", "-", "--padding", "1")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `width="202"`) {
		t.Error("--padding should override the config file")
	}
}

func TestRenderErrors(t *testing.T) {
	env := newTestEnv(t)
	dangling := env.write(t, "dangling.json", danglingLayout)
	output := filepath.Join(env.dir, "out.svg")

	_, err := env.run(t, "", "render", dangling, "-o", output, "--strict-edges")
	if !errors.Is(err, errors.ErrCodeEdgeResolution) {
		t.Errorf("err = %v, want EDGE_RESOLUTION", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("failed render must not write output")
	}

	if _, err := env.run(t, "", "render", dangling, "-o", output); err != nil {
		t.Fatalf("skip policy should render: %v", err)
	}
	if !strings.Contains(env.ui.String(), "ghost") {
		t.Errorf("skipped edge warning missing from %q", env.ui.String())
	}

	_, err = env.run(t, "", "render", filepath.Join(env.dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}

	_, err = env.run(t, "{", "render", "-", "-o", "-")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestIconsPathAndClear(t *testing.T) {
	env := newTestEnv(t)
	input := env.write(t, "layout.json", flatLayout)
	if _, err := env.run(t, "", "render", input); err != nil {
		t.Fatalf("render: %v", err)
	}

	out, err := env.run(t, "", "icons", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != env.cacheDir {
		t.Errorf("icons path = %q, want %q", out, env.cacheDir)
	}

	entries, _ := os.ReadDir(env.cacheDir)
	if len(entries) != 1 {
		t.Fatalf("cache entries = %d, want 1", len(entries))
	}

	// A second render is served from the persistent tier.
	if _, err := env.run(t, "", "render", input); err != nil {
		t.Fatalf("render: %v", err)
	}
	if env.fetches.Load() != 1 {
		t.Errorf("fetches = %d, want 1", env.fetches.Load())
	}

	if _, err := env.run(t, "", "icons", "clear"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.ui.String(), "Cleared 1 cached icons") {
		t.Errorf("status output = %q", env.ui.String())
	}
	entries, _ = os.ReadDir(env.cacheDir)
	if len(entries) != 0 {
		t.Errorf("cache entries after clear = %d", len(entries))
	}
}

func TestIconsDisabled(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(cache.EnvIconCacheDir, "")

	out, err := env.run(t, "", "icons", "path")
	if err != nil {
		t.Fatal(err)
	}
	if out != "" || !strings.Contains(env.ui.String(), "disabled") {
		t.Errorf("stdout = %q, status = %q", out, env.ui.String())
	}
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.run(t, "", "version"); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"version", "commit", "built"} {
		if !strings.Contains(env.ui.String(), want) {
			t.Errorf("version output missing %q", want)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	env := newTestEnv(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := env.run(t, "", "completion", shell)
		if err != nil {
			t.Fatalf("%s: %v", shell, err)
		}
		if !strings.Contains(out, "graphrender") {
			t.Errorf("%s completion does not mention graphrender", shell)
		}
	}
	out, err := env.run(t, "", "completion", "zsh", "--no-descriptions")
	if err != nil || !strings.Contains(out, "graphrender") {
		t.Errorf("zsh --no-descriptions: %v", err)
	}
	if _, err := env.run(t, "", "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	old := uiOut
	uiOut = &buf
	defer func() { uiOut = old }()

	PrintError(errors.New(errors.ErrCodeStructural, "cycle at %q", "n1"))
	if got := buf.String(); !strings.Contains(got, `cycle at "n1"`) || strings.Contains(got, "STRUCTURAL") {
		t.Errorf("PrintError output = %q", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{context.Canceled, ExitInterrupted},
		{errors.New(errors.ErrCodeInvalidInput, "x"), ExitBadInput},
		{errors.New(errors.ErrCodeEdgeResolution, "x").At("e1"), ExitBadInput},
		{errors.New(errors.ErrCodeFileNotFound, "x"), ExitBadInput},
		{errors.Wrap(errors.ErrCodeThemeCompilation, errors.New(errors.ErrCodeFileNotFound, "sass"), "x"), ExitBadTheme},
		{errors.New(errors.ErrCodeInvalidProfile, "x"), ExitBadTheme},
		{errors.New(errors.ErrCodeInvalidConfig, "x"), ExitFailure},
		{io.ErrUnexpectedEOF, ExitFailure},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
