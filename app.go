package loom

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/loom/internal/config"
	"github.com/vango-dev/loom/internal/logging"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/metrics"
	"github.com/vango-dev/loom/pkg/server"
	"github.com/vango-dev/loom/pkg/snapshot"
	"github.com/vango-dev/loom/pkg/tracing"
	"github.com/vango-dev/loom/pkg/vdom"
)

// SnapshotPath serves stored snapshots by session ID.
const SnapshotPath = "/_loom/snapshots/{key}"

// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
const ShutdownTimeout = 10 * time.Second

// App wires a configuration into a live server: logging, metrics, tracing
// and snapshot observers are attached to every session.
type App struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.TracerProvider
	store   snapshot.Store
	server  *server.Server
	router  chi.Router
}

// Option configures an App.
type Option func(*appOptions)

type appOptions struct {
	logger   *slog.Logger
	store    snapshot.Store
	tracer   trace.TracerProvider
	registry *prometheus.Registry
}

// WithLogger replaces the logger built from the log settings.
func WithLogger(l *slog.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithStore replaces the snapshot store opened from the settings.
func WithStore(s snapshot.Store) Option {
	return func(o *appOptions) {
		o.store = s
	}
}

// WithTracerProvider sets the provider used when tracing is enabled.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *appOptions) {
		o.tracer = tp
	}
}

// WithRegistry sets the registry metrics are registered with.
func WithRegistry(r *prometheus.Registry) Option {
	return func(o *appOptions) {
		o.registry = r
	}
}

// New validates cfg and builds an App serving root.
func New(cfg *config.Config, root func() *vdom.VNode, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{config: cfg, logger: o.logger, store: o.store}
	if a.logger == nil {
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		a.logger = logging.New(level, cfg.Log.Format)
	}

	if cfg.Metrics.Enabled {
		mopts := []metrics.Option{metrics.WithNamespace(cfg.Metrics.Namespace)}
		if cfg.Name != "" {
			mopts = append(mopts, metrics.WithConstLabels(prometheus.Labels{"app": cfg.Name}))
		}
		if o.registry != nil {
			mopts = append(mopts, metrics.WithRegistry(o.registry))
		}
		a.metrics = metrics.New(mopts...)
	}
	if cfg.Tracing.Enabled {
		a.tracer = o.tracer
	}
	if a.store == nil {
		store, err := snapshot.Open(cfg)
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	sc := server.DefaultConfig()
	if cfg.Name != "" {
		sc.Title = cfg.Name
	}
	sc.ReadLimit = cfg.Server.ReadLimit
	sc.Budget = Budget(cfg.Scheduler)
	sc.Epsilon = cfg.Scheduler.Epsilon
	sc.Mirror = a.store != nil

	sopts := []server.Option{
		server.WithLogger(a.logger),
		server.WithSessionHook(a.observe),
	}
	if a.metrics != nil {
		sopts = append(sopts, server.WithMetricsHandler(a.metrics.Handler()))
	}
	a.server = server.New(sc, root, sopts...)

	r := chi.NewRouter()
	r.Get(SnapshotPath, a.handleSnapshot)
	r.Mount("/", a.server)
	a.router = r

	a.logger.Debug("app configured",
		"name", cfg.Name,
		"metrics", cfg.Metrics.Enabled,
		"tracing", cfg.Tracing.Enabled,
		"snapshot", cfg.Snapshot.Backend,
	)
	return a, nil
}

// observe builds the per-session observers.
func (a *App) observe(sess *server.Session) fiber.Observer {
	var obs []fiber.Observer
	var rec *snapshot.Recorder

	if a.metrics != nil {
		a.metrics.SessionOpened()
		obs = append(obs, a.metrics)
	}
	if a.config.Tracing.Enabled {
		topts := []tracing.Option{tracing.WithAttributes(attribute.String("loom.session", sess.ID))}
		if a.tracer != nil {
			topts = append(topts, tracing.WithTracerProvider(a.tracer))
		}
		obs = append(obs, tracing.New(topts...))
	}
	if a.store != nil {
		rec = snapshot.NewRecorder(a.store, sess.ID, sess.HTML, sess.Logger())
		obs = append(obs, rec)
	}

	go func() {
		<-sess.Done()
		if rec != nil {
			rec.Close()
		}
		if a.metrics != nil {
			a.metrics.SessionClosed()
		}
	}()
	return fiber.Observers(obs...)
}

func (a *App) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		http.NotFound(w, r)
		return
	}
	data, err := a.store.Get(r.Context(), chi.URLParam(r, "key"))
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		a.logger.Warn("snapshot read failed", "error", err)
		http.Error(w, "snapshot unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config { return a.config }

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Server returns the live server.
func (a *App) Server() *server.Server { return a.server }

// Metrics returns the metrics observer, or nil when metrics are disabled.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// Store returns the snapshot store, or nil for the none backend.
func (a *App) Store() snapshot.Store { return a.store }

// Shutdown closes every session and then the snapshot store.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if c, ok := a.store.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (a *App) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.config.Server.Addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down")
	if err := a.Shutdown(sctx); err != nil {
		a.logger.Warn("session shutdown", "error", err)
	}
	return srv.Shutdown(sctx)
}
