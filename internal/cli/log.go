// Package cli implements the graphrender command line.
//
// Commands:
//   - render: turn a layout JSON file (or stdin) into an SVG document
//   - icons: show or clear the persistent icon store
//   - serve: render over HTTP
//   - version, completion
//
// Diagnostics go to stderr through charmbracelet/log; --verbose lowers the
// level to debug. Status lines printed by the ui helpers also go to stderr,
// so `render -o -` can stream the document to stdout. The serve command
// carries a request-scoped logger in the request context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat renders as "14:32:01.45".
const logTimeFormat = "15:04:05.00"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// stopwatch times a command. lap logs per-stage timings at debug level and
// done logs the total at info level. Not safe for concurrent use.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func newStopwatch(l *log.Logger) *stopwatch {
	now := time.Now()
	return &stopwatch{logger: l, start: now, last: now}
}

func (s *stopwatch) lap(stage string, keyvals ...any) {
	now := time.Now()
	keyvals = append(keyvals, "took", now.Sub(s.last).Round(time.Microsecond))
	s.logger.Debug(stage, keyvals...)
	s.last = now
}

func (s *stopwatch) done(msg string) {
	s.logger.Infof("%s (%s)", msg, time.Since(s.start).Round(time.Millisecond))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
