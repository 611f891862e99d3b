package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphrender/pkg/buildinfo"
	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/observability"
	"github.com/matzehuels/graphrender/pkg/pipeline"
)

const (
	// defaultAddr is the listen address of the serve command.
	defaultAddr = ":8080"

	// maxRequestBody caps the size of a posted layout.
	maxRequestBody = 16 << 20

	// shutdownTimeout bounds the graceful shutdown on interrupt.
	shutdownTimeout = 10 * time.Second

	headerRequestID    = "X-Request-Id"
	headerWarnings     = "X-Render-Warnings"
	headerErrorSubject = "X-Render-Error-Subject"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders over HTTP",
		Long: `Serve renders over HTTP.

  POST /render    body: layout JSON, query: pretty=true|false, theme=none
  GET  /healthz   liveness probe
  GET  /stats     render, theme, icon cache and fetch counters

All requests share the persistent icon store; each render has its own
in-memory icon tier.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := baseOptions(cfg)
			check := opts
			if err := check.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer runner.Store.Close()

			stats := observability.NewCounters()
			observability.Register(stats)
			defer observability.Reset()

			return newServer(runner, opts, c.Logger, stats).listen(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	return cmd
}

// server handles render requests against one runner.
type server struct {
	runner *pipeline.Runner
	base   pipeline.Options
	logger *log.Logger
	stats  *observability.Counters // nil disables /stats
}

func newServer(runner *pipeline.Runner, base pipeline.Options, logger *log.Logger, stats *observability.Counters) *server {
	return &server{runner: runner, base: base, logger: logger, stats: stats}
}

// routes builds the HTTP handler.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.stats != nil {
		r.Get("/stats", s.handleStats)
	}
	r.Post("/render", s.handleRender)
	return r
}

// listen serves until ctx is cancelled, then shuts down gracefully.
func (s *server) listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	printInfo("Listening on %s", addr)

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger tags each request with an id and attaches a request-scoped
// logger to its context.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		logger := s.logger.With("request_id", id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), logger)))

		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond))
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(healthResponse{Status: "ok", Version: buildinfo.Get().Version})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(s.stats.Snapshot())
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := loggerFromContext(ctx)

	opts := s.base
	opts.Logger = logger
	if v := r.URL.Query().Get("pretty"); v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid pretty value: "+v, http.StatusBadRequest)
			return
		}
		opts.Pretty = pretty
	}
	if r.URL.Query().Get("theme") == "none" {
		opts.EmbedTheme = false
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			http.Error(w, "layout too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.runner.Render(ctx, body, opts)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.Error("render failed", "err", err)
		}
		if subject := errors.SubjectOf(err); subject != "" {
			w.Header().Set(headerErrorSubject, subject)
		}
		http.Error(w, errors.UserMessage(err), status)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set(headerWarnings, strconv.Itoa(len(result.Warnings)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Document)
}

// statusFor maps a render error to an HTTP status: 400 for problems with
// the posted layout, 422 for theme problems, 500 otherwise.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeStructural, errors.ErrCodeEdgeResolution:
		return http.StatusBadRequest
	case errors.ErrCodeThemeCompilation, errors.ErrCodeInvalidTheme, errors.ErrCodeInvalidProfile:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
