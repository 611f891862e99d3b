package style

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/observability"
)

//go:embed default_theme.css
var defaultThemeCSS string

// DefaultThemeCSS returns the bundled stylesheet.
func DefaultThemeCSS() string { return defaultThemeCSS }

// Origin records where a theme's CSS came from.
type Origin string

const (
	OriginExplicit Origin = "explicit"
	OriginFile     Origin = "file"
	OriginDefault  Origin = "default"
)

// Theme is a resolved stylesheet.
type Theme struct {
	CSS    string
	Embed  bool   // whether the assembler inlines CSS in a <style> block
	Origin Origin
	Path   string // theme file, for OriginFile

	// Warning is set when embedding is disabled and the theme file could
	// not be loaded; the failure is then not fatal.
	Warning error
}

// ThemeOptions selects a theme. See [ResolveTheme].
type ThemeOptions struct {
	CSS      *string  // explicit CSS, wins outright when non-nil
	Path     string   // .css, .scss or .sass file
	Embed    bool     // inline the CSS into the document
	Compiler Compiler // required for .scss/.sass paths

	// ReadFile reads theme files. Defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// ResolveTheme resolves the stylesheet for one render.
//
// Errors are INVALID_THEME (unsupported extension), FILE_NOT_FOUND or
// THEME_COMPILATION. With Embed false they are downgraded to Theme.Warning
// and the default CSS is returned.
func ResolveTheme(ctx context.Context, opts ThemeOptions) (Theme, error) {
	if opts.CSS != nil {
		return Theme{CSS: *opts.CSS, Embed: opts.Embed, Origin: OriginExplicit}, nil
	}
	if opts.Path != "" {
		start := time.Now()
		css, err := loadThemeFile(ctx, opts)
		compiled := !strings.EqualFold(filepath.Ext(opts.Path), errors.ThemeExtCSS)
		observability.Theme().OnThemeLoad(ctx, opts.Path, compiled, time.Since(start), err)
		if err == nil {
			return Theme{CSS: css, Embed: opts.Embed, Origin: OriginFile, Path: opts.Path}, nil
		}
		if opts.Embed {
			return Theme{}, err
		}
		return Theme{CSS: defaultThemeCSS, Origin: OriginDefault, Warning: err}, nil
	}
	return Theme{CSS: defaultThemeCSS, Embed: opts.Embed, Origin: OriginDefault}, nil
}

func loadThemeFile(ctx context.Context, opts ThemeOptions) (string, error) {
	ext, err := errors.ValidateThemePath(opts.Path)
	if err != nil {
		return "", err
	}

	read := opts.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "theme file not found: %s", opts.Path)
		}
		return "", errors.Wrap(errors.ErrCodeInvalidTheme, err, "read theme %s", opts.Path)
	}

	if ext == errors.ThemeExtCSS {
		return string(data), nil
	}
	if opts.Compiler == nil {
		return "", errors.New(errors.ErrCodeThemeCompilation, "no SCSS/SASS compiler configured for %s", opts.Path)
	}
	css, err := opts.Compiler.Compile(ctx, Source{
		Text:     string(data),
		Indented: ext == errors.ThemeExtSASS,
		Dir:      filepath.Dir(opts.Path),
	})
	if err != nil {
		if errors.Is(err, errors.ErrCodeThemeCompilation) {
			return "", err
		}
		return "", errors.Wrap(errors.ErrCodeThemeCompilation, err, "compile %s", opts.Path)
	}
	return strings.TrimRight(css, "\n") + "\n", nil
}
