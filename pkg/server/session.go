package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	lerrors "github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/host/remote"
	"github.com/vango-dev/loom/pkg/protocol"
	"github.com/vango-dev/loom/pkg/render"
	"github.com/vango-dev/loom/pkg/slice"
	"github.com/vango-dev/loom/pkg/vdom"
)

// SessionHook builds an extra observer for a new session. It runs before
// the first render; a nil result is ignored.
type SessionHook func(s *Session) fiber.Observer

// SessionStats is a snapshot of a session's traffic.
type SessionStats struct {
	Events     int64
	Frames     int64
	Ops        int64
	BytesSent  int64
	BytesRecv  int64
	Reconciler fiber.Stats
}

// Session is one live connection. Reconciliation, event dispatch and
// socket writes all happen on the session loop.
type Session struct {
	ID        string
	CreatedAt time.Time

	conn   *websocket.Conn
	config Config
	loop   *slice.Loop
	host   *remote.Host
	mirror *mirrorHost
	r      *fiber.Reconciler
	logger *slog.Logger

	events    atomic.Int64
	frames    atomic.Int64
	ops       atomic.Int64
	bytesSent atomic.Int64
	bytesRecv atomic.Int64

	closeOnce sync.Once
	closed    atomic.Bool
	done      chan struct{}
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func newSession(conn *websocket.Conn, config Config, logger *slog.Logger, hook SessionHook) *Session {
	id := generateSessionID()
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      conn,
		config:    config,
		host:      remote.New(),
		logger:    logger.With("session_id", id),
		done:      make(chan struct{}),
	}
	s.loop = slice.NewLoop(config.Budget, s.logger)

	var host fiber.HostAdapter = s.host
	if config.Mirror {
		s.mirror = newMirrorHost(s.host)
		host = s.mirror
	}

	observers := []fiber.Observer{fiber.ObserverFuncs{
		OnCommit: func(fiber.CommitStats) { s.flush() },
		OnError:  s.sendError,
	}}
	if hook != nil {
		observers = append(observers, hook(s))
	}
	opts := []fiber.Option{
		fiber.WithLogger(s.logger),
		fiber.WithObserver(fiber.Observers(observers...)),
	}
	if config.Epsilon > 0 {
		opts = append(opts, fiber.WithEpsilon(config.Epsilon))
	}
	s.r = fiber.New(host, s.loop, opts...)
	return s
}

// root returns the container handle the session renders into.
func (s *Session) root() fiber.Handle {
	if s.mirror != nil {
		return s.mirror.root
	}
	return s.host.Root()
}

// Mount renders v into the client's root element.
func (s *Session) Mount(v *vdom.VNode) error {
	return s.loop.Post(func() {
		if err := s.r.Render(v, s.root()); err != nil {
			s.logger.Error("mount failed", "error", err)
		}
	})
}

// Run drives the session loop until ctx ends or the session closes.
func (s *Session) Run(ctx context.Context) error {
	err := s.loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Do runs fn on the session loop and waits for it.
func (s *Session) Do(ctx context.Context, fn func()) error {
	return s.loop.Do(ctx, fn)
}

// HTML renders the session's current tree. It needs Config.Mirror and
// must be called on the session loop, from an observer or through Do.
func (s *Session) HTML() (string, error) {
	if s.mirror == nil {
		return "", errors.New("server: session has no mirror")
	}
	return render.NewRenderer(render.RendererConfig{}).RenderChildren(s.mirror.container())
}

// Reconciler returns the session reconciler. Use it on the session loop.
func (s *Session) Reconciler() *fiber.Reconciler {
	return s.r
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Stats returns the session counters. The reconciler part is only
// consistent when read on the session loop.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		Events:     s.events.Load(),
		Frames:     s.frames.Load(),
		Ops:        s.ops.Load(),
		BytesSent:  s.bytesSent.Load(),
		BytesRecv:  s.bytesRecv.Load(),
		Reconciler: s.r.Stats(),
	}
}

// flush sends the host operations of the last commit.
func (s *Session) flush() {
	n := s.host.Pending()
	frame := s.host.FlushFrame()
	if frame == nil {
		return
	}
	if err := s.write(frame); err != nil {
		s.logger.Warn("ops write failed", "error", err)
		return
	}
	s.frames.Add(1)
	s.ops.Add(int64(n))
}

// sendError reports err to the client as a FrameError.
func (s *Session) sendError(err error) {
	code := "E000"
	var le *lerrors.LoomError
	if errors.As(err, &le) {
		code = le.Code
	}
	frame := protocol.NewFrame(protocol.FrameError, protocol.EncodeError(code, err.Error()))
	if werr := s.write(frame.Encode()); werr != nil {
		s.logger.Warn("error write failed", "error", werr)
	}
}

func (s *Session) write(data []byte) error {
	if s.closed.Load() {
		return websocket.ErrCloseSent
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return err
	}
	s.bytesSent.Add(int64(len(data)))
	return nil
}

// ReadLoop reads client frames until the connection fails or closes.
// Events are dispatched on the session loop in arrival order.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.bytesRecv.Add(int64(len(msg)))

		frame, err := protocol.DecodeFrame(msg, s.config.Limits)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.post(func() { s.sendError(err) })
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEventFrame(frame.Payload)
		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

func (s *Session) handleEventFrame(payload []byte) {
	ev, err := protocol.DecodeEvent(payload, s.config.Limits)
	if err != nil {
		s.logger.Warn("event decode error", "error", err)
		s.post(func() { s.sendError(err) })
		return
	}
	s.events.Add(1)
	s.post(func() {
		if err := s.host.Dispatch(ev); err != nil {
			s.logger.Warn("event dropped", "node", ev.NodeID, "event", ev.Name, "error", err)
			s.sendError(err)
		}
	})
}

func (s *Session) post(fn func()) {
	if err := s.loop.Post(fn); err != nil {
		s.logger.Debug("session loop stopped", "error", err)
	}
}

// Close stops the loop and closes the connection. It is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.loop.Stop()
		s.closed.Store(true)
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.conn.Close()
		close(s.done)

		s.logger.Info("session closed",
			"events", s.events.Load(),
			"frames", s.frames.Load(),
			"ops", s.ops.Load(),
			"bytes_sent", s.bytesSent.Load(),
			"bytes_recv", s.bytesRecv.Load())
	})
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
