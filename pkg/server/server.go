package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/host/memhost"
	"github.com/vango-dev/loom/pkg/render"
	"github.com/vango-dev/loom/pkg/vdom"
)

// LivePath is where the live client connects.
const LivePath = "/live"

// Server serves a root component over HTTP and websocket sessions.
type Server struct {
	config   Config
	root     func() *vdom.VNode
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger
	metrics  http.Handler
	hook     SessionHook
	page     *render.Renderer

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Sessions log through it with a
// session_id attribute.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithSessionHook installs a per-session observer factory.
func WithSessionHook(h SessionHook) Option {
	return func(s *Server) {
		s.hook = h
	}
}

// New creates a server for the component tree returned by root. root is
// called once per page render and once per session.
func New(config Config, root func() *vdom.VNode, opts ...Option) *Server {
	config = config.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config: config,
		root:   root,
		logger: slog.Default(),
		page:   render.NewRenderer(render.RendererConfig{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		sessions: make(map[string]*Session),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get(LivePath, s.handleLive)
	r.Get("/healthz", s.handleHealth)
	r.Get(render.DefaultClientScript, s.serveClient)
	r.Head(render.DefaultClientScript, s.serveClient)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Session returns the open session with the given ID.
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Shutdown closes every session and waits for their loops to stop.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handlePage renders the root synchronously and returns the page shell.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	_, body, err := memhost.Mount(s.root(), fiber.WithLogger(s.logger))
	if err != nil {
		s.logger.Error("page render failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err = s.page.RenderPage(&buf, render.PageData{
		Body:         body,
		Title:        s.config.Title,
		Styles:       s.config.Styles,
		ClientScript: render.DefaultClientScript,
		LiveURL:      LivePath,
	})
	if err != nil {
		s.logger.Error("page write failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleLive upgrades to a websocket and runs a session until it closes.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.config.ReadLimit)

	sess := newSession(conn, s.config, s.logger, s.hook)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	sess.logger.Info("session opened", "remote", r.RemoteAddr)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := sess.Run(s.ctx); err != nil {
			sess.logger.Error("session loop failed", "error", err)
		}
		sess.Close()
	}()

	if err := sess.Mount(s.root()); err != nil {
		sess.logger.Error("mount failed", "error", err)
	}
	sess.ReadLoop()

	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.Sessions(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
