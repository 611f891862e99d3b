package style

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/matzehuels/graphrender/pkg/errors"
)

// Source is stylesheet source handed to a [Compiler].
type Source struct {
	Text     string
	Indented bool   // .sass indented syntax rather than SCSS
	Dir      string // resolves @use and @import
}

// Compiler turns SCSS or SASS source into CSS.
type Compiler interface {
	Compile(ctx context.Context, src Source) (string, error)
}

// CompilerFunc adapts a function to [Compiler].
type CompilerFunc func(ctx context.Context, src Source) (string, error)

// Compile calls f.
func (f CompilerFunc) Compile(ctx context.Context, src Source) (string, error) { return f(ctx, src) }

// SassCLI compiles with the Dart Sass command-line tool.
type SassCLI struct {
	// Binary is the executable name or path. Defaults to "sass".
	Binary string
}

// Compile pipes src through `sass --stdin --no-source-map`.
func (s SassCLI) Compile(ctx context.Context, src Source) (string, error) {
	bin := s.Binary
	if bin == "" {
		bin = "sass"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return "", errors.Wrap(errors.ErrCodeThemeCompilation, err,
			"SCSS/SASS theme compilation requires the `%s` CLI in PATH", bin)
	}

	args := []string{"--stdin", "--no-source-map"}
	if src.Indented {
		args = append(args, "--indented")
	}
	if src.Dir != "" {
		args = append(args, "--load-path", src.Dir)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = src.Dir
	cmd.Stdin = strings.NewReader(src.Text)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(errors.ErrCodeThemeCompilation, err,
			"sass compilation failed: %s", strings.TrimSpace(errBuf.String()))
	}
	return out.String(), nil
}
