package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/pipeline"
)

// uiOut receives status lines. It is stderr so that `render -o -` can
// stream the document on stdout.
var uiOut io.Writer = os.Stderr

// =============================================================================
// Palette
// =============================================================================

var (
	colorOK    = lipgloss.Color("35")
	colorWarn  = lipgloss.Color("220")
	colorFail  = lipgloss.Color("167")
	colorValue = lipgloss.Color("255")
	colorLabel = lipgloss.Color("245")
	colorMuted = lipgloss.Color("240")
)

var (
	StyleDim     = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue   = lipgloss.NewStyle().Foreground(colorValue)
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)
	StyleError   = lipgloss.NewStyle().Foreground(colorFail)

	styleLabel = lipgloss.NewStyle().Foreground(colorLabel).Width(10)
)

// mark is the leading glyph of a status line.
type mark struct {
	glyph string
	style lipgloss.Style
}

var (
	markOK   = mark{"✓", lipgloss.NewStyle().Foreground(colorOK)}
	markFail = mark{"✗", StyleError}
	markWarn = mark{"!", StyleWarning}
	markInfo = mark{"›", lipgloss.NewStyle().Foreground(colorLabel)}
)

func (m mark) line(body string) {
	fmt.Fprintln(uiOut, m.style.Render(m.glyph)+" "+body)
}

// =============================================================================
// Status lines
// =============================================================================

// PrintError prints err without error codes.
func PrintError(err error) {
	markFail.line(StyleError.Render(errors.UserMessage(err)))
}

func printSuccess(format string, args ...any) { markOK.line(fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { markInfo.line(fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	markWarn.line(StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(uiOut, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Render summaries
// =============================================================================

// printStats prints a one-line summary such as
// "3 nodes · 2 edges · 1 skipped · 2/3 icons · 4096 bytes".
func printStats(s pipeline.Stats) {
	parts := []string{
		plural(s.NodeCount, "node"),
		plural(s.EdgeCount-s.SkippedEdges, "edge"),
	}
	if s.SkippedEdges > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", s.SkippedEdges))
	}
	if s.IconCount > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d icons", s.IconCount-s.MissingIcons, s.IconCount))
	}
	parts = append(parts, fmt.Sprintf("%d bytes", s.Bytes))
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

// printWarnings prints the recoverable problems of a render, naming the
// element each one is about when known.
func printWarnings(warnings []error) {
	for _, w := range warnings {
		msg := errors.UserMessage(w)
		if subject := errors.SubjectOf(w); subject != "" && !strings.Contains(msg, subject) {
			msg = subject + ": " + msg
		}
		printWarning("%s", msg)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
