package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/graphrender/pkg/cache"
	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/icons"
	"github.com/matzehuels/graphrender/pkg/route"
	"github.com/matzehuels/graphrender/pkg/style"
)

const flatLayout = `{
  "width": 200, "height": 100,
  "children": [{"id": "a", "x": 10, "y": 10, "width": 50, "height": 20, "type": "Router"}]
}`

const iconLayout = `{
  "children": [
    {"id": "a", "x": 0, "y": 0, "width": 40, "height": 40, "icon": "mdi:router"},
    {"id": "b", "x": 60, "y": 0, "width": 40, "height": 40, "icon": "mdi:router"}
  ],
  "edges": [
    {"id": "e", "source": "a", "target": "b"},
    {"id": "dangling", "source": "a", "target": "ghost"}
  ]
}`

const iconSVG = `<svg viewBox="0 0 24 24"><path d="M0 0h24v24H0z"/></svg>`

type fakeFetcher struct{ calls atomic.Int32 }

func (f *fakeFetcher) Fetch(context.Context, string) ([]byte, error) {
	f.calls.Add(1)
	return []byte(iconSVG), nil
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr errors.Code
	}{
		{"defaults", func(*Options) {}, ""},
		{"zero padding", func(o *Options) { o.Padding = 0 }, ""},
		{"negative padding", func(o *Options) { o.Padding = -1 }, errors.ErrCodeInvalidConfig},
		{"negative font", func(o *Options) { o.FontSize = -2 }, errors.ErrCodeInvalidConfig},
		{"bad policy", func(o *Options) { o.EdgePolicy = "maybe" }, errors.ErrCodeInvalidConfig},
		{"bad theme ext", func(o *Options) { o.ThemePath = "theme.less" }, errors.ErrCodeInvalidTheme},
		{"explicit css wins over path", func(o *Options) {
			css := "x"
			o.ThemeCSS = &css
			o.ThemePath = "theme.less"
		}, ""},
		{"unembedded theme path is not checked", func(o *Options) {
			o.EmbedTheme = false
			o.ThemePath = "theme.txt"
		}, ""},
		{"node style sets x", func(o *Options) { o.NodeStyle = style.Attrs{"x": "5"} }, errors.ErrCodeInvalidConfig},
		{"port style sets width", func(o *Options) { o.PortStyle = style.Attrs{"width": "1"} }, errors.ErrCodeInvalidConfig},
		{"edge style sets d", func(o *Options) { o.EdgeStyle = style.Attrs{"d": "M 0 0"} }, errors.ErrCodeInvalidConfig},
		{"presentation styles pass", func(o *Options) { o.NodeStyle = style.Attrs{"fill": "red", "rx": "4"} }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.ValidateAndSetDefaults()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if opts.Logger == nil || opts.FontSize <= 0 || opts.EdgePolicy == "" {
					t.Errorf("defaults not applied: %+v", opts)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %s", err, tt.wantErr)
			}
		})
	}
}

func TestRenderFlat(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	res, err := r.Render(context.Background(), []byte(flatLayout), DefaultOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := string(res.Document)
	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="220" height="120" viewBox="0 0 220 120">`,
		`<g id="a" class="node router">`,
		`<rect x="20" y="20" width="50" height="20"`,
		"  <style>\n    :root {",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
	if res.Stats.NodeCount != 1 || res.Stats.Bytes != len(res.Document) {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := NewRunner(nil, &fakeFetcher{}, nil, nil)
	for _, pretty := range []bool{true, false} {
		opts := DefaultOptions()
		opts.Pretty = pretty
		first, err := r.Render(context.Background(), []byte(iconLayout), opts)
		if err != nil {
			t.Fatal(err)
		}
		second, err := r.Render(context.Background(), []byte(iconLayout), opts)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first.Document, second.Document) {
			t.Errorf("pretty=%v: renders differ", pretty)
		}
	}
}

func TestRenderNoThemeWithThemePath(t *testing.T) {
	dir := t.TempDir()
	theme := filepath.Join(dir, "theme.css")
	if err := os.WriteFile(theme, []byte("rect { fill: red; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions()
	opts.EmbedTheme = false
	opts.ThemePath = theme
	res, err := NewRunner(nil, nil, nil, nil).Render(context.Background(), []byte(flatLayout), opts)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(res.Document, []byte("<style")) {
		t.Error("style block emitted with theming disabled")
	}
	if res.Theme.CSS != "rect { fill: red; }\n" {
		t.Errorf("theme CSS = %q, want file contents", res.Theme.CSS)
	}
}

func TestRenderThemeCompilation(t *testing.T) {
	dir := t.TempDir()
	theme := filepath.Join(dir, "theme.scss")
	if err := os.WriteFile(theme, []byte("$c: red; rect { fill: $c; }"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.ThemePath = theme

	// no compiler: fatal while embedding
	_, err := NewRunner(nil, nil, nil, nil).Render(context.Background(), []byte(flatLayout), opts)
	if !errors.Is(err, errors.ErrCodeThemeCompilation) {
		t.Fatalf("err = %v, want THEME_COMPILATION", err)
	}

	compiler := style.CompilerFunc(func(_ context.Context, src style.Source) (string, error) {
		return "rect { fill: red; }", nil
	})
	res, err := NewRunner(nil, nil, compiler, nil).Render(context.Background(), []byte(flatLayout), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(res.Document, []byte("    rect { fill: red; }\n")) {
		t.Errorf("compiled CSS not embedded:\n%s", res.Document)
	}
}

func TestRenderIconsAndWarnings(t *testing.T) {
	f := &fakeFetcher{}
	store := cache.NewFileStore(t.TempDir())
	res, err := NewRunner(store, f, nil, nil).Render(context.Background(), []byte(iconLayout), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if f.calls.Load() != 1 {
		t.Errorf("fetches = %d, want 1", f.calls.Load())
	}
	doc := string(res.Document)
	if strings.Count(doc, `<g id="icon-mdi-router">`) != 1 || strings.Count(doc, `<use href="#icon-mdi-router"/>`) != 2 {
		t.Errorf("icon not de-duplicated:\n%s", doc)
	}
	if res.Stats.SkippedEdges != 1 || len(res.Warnings) != 1 {
		t.Fatalf("stats = %+v warnings = %v", res.Stats, res.Warnings)
	}
	if !errors.Is(res.Warnings[0], errors.ErrCodeEdgeResolution) {
		t.Errorf("warning = %v, want EDGE_RESOLUTION", res.Warnings[0])
	}
}

func TestRenderMissingIconIsRecoverable(t *testing.T) {
	failing := icons.FetcherFunc(func(context.Context, string) ([]byte, error) {
		return nil, errors.New(errors.ErrCodeFetch, "offline")
	})
	res, err := NewRunner(nil, failing, nil, nil).Render(context.Background(), []byte(iconLayout), DefaultOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Stats.MissingIcons != 1 {
		t.Errorf("missing icons = %d", res.Stats.MissingIcons)
	}
	if bytes.Contains(res.Document, []byte("<use")) {
		t.Error("missing icon referenced")
	}
}

func TestRenderStrictEdges(t *testing.T) {
	opts := DefaultOptions()
	opts.EdgePolicy = route.PolicyAbort
	_, err := NewRunner(nil, nil, nil, nil).Render(context.Background(), []byte(iconLayout), opts)
	if !errors.Is(err, errors.ErrCodeEdgeResolution) {
		t.Errorf("err = %v, want EDGE_RESOLUTION", err)
	}
}

func TestRenderToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "layout.json")
	out := DefaultOutputPath(in)
	if out != filepath.Join(dir, "layout.svg") {
		t.Fatalf("DefaultOutputPath = %q", out)
	}

	if err := os.WriteFile(in, []byte(flatLayout), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRunner(nil, nil, nil, nil).RenderToFile(context.Background(), in, out, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if data, err := os.ReadFile(out); err != nil || !bytes.HasPrefix(data, []byte("<svg")) {
		t.Errorf("output = %q, %v", data, err)
	}
}

func TestRenderToFileWritesNothingOnError(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.json")
	out := filepath.Join(dir, "bad.svg")
	if err := os.WriteFile(in, []byte(`{"children": [{"id": "a"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewRunner(nil, nil, nil, nil).RenderToFile(context.Background(), in, out, DefaultOptions())
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("output written on failure: %v", statErr)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("stray files left behind: %v", entries)
	}
}

func TestRenderFileNotFound(t *testing.T) {
	_, err := NewRunner(nil, nil, nil, nil).RenderFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"), DefaultOptions())
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRenderUnembeddedBadThemeWarns(t *testing.T) {
	opts := DefaultOptions()
	opts.EmbedTheme = false
	opts.ThemePath = "theme.txt"
	res, err := NewRunner(nil, nil, nil, nil).Render(context.Background(), []byte(flatLayout), opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], errors.ErrCodeInvalidTheme) {
		t.Errorf("warnings = %v, want one INVALID_THEME", res.Warnings)
	}
	if bytes.Contains(res.Document, []byte("<style")) {
		t.Error("style block emitted with theming disabled")
	}
}

func TestRenderRejectsGeometryStyle(t *testing.T) {
	opts := DefaultOptions()
	opts.NodeStyle = style.Attrs{"x": "5"}
	_, err := NewRunner(nil, nil, nil, nil).Render(context.Background(), []byte(flatLayout), opts)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("err = %v, want INVALID_CONFIG", err)
	}
	if !strings.Contains(err.Error(), "node style sets x") {
		t.Errorf("err = %v, want the offending key named", err)
	}
}

func TestApplyProfile(t *testing.T) {
	p, err := style.ParseProfile([]byte(`{"profileId": "p", "profileVersion": 1, "checksum": "abc", "renderCss": "rect { fill: blue; }"}`))
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.EmbedTheme = false
	opts.ApplyProfile(p)

	res, err := NewRunner(nil, nil, nil, nil).Render(context.Background(), []byte(flatLayout), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(res.Document, []byte("rect { fill: blue; }")) {
		t.Error("profile CSS not embedded")
	}
	if res.Theme.Origin != style.OriginExplicit {
		t.Errorf("origin = %s", res.Theme.Origin)
	}
}
