package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/loom/internal/demo"
	"github.com/vango-dev/loom/internal/logging"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/protocol"
	"github.com/vango-dev/loom/pkg/vdom"
)

func counterRoot() *vdom.VNode { return demo.Counter.Element() }

func newTestServer(t *testing.T, cfg Config, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	opts = append([]Option{WithLogger(logging.NewNop())}, opts...)
	s := New(cfg, counterRoot, opts...)
	ts := httptest.NewServer(s)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		ts.Close()
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + LivePath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) *protocol.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	typ, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, typ)
	f, err := protocol.DecodeFrame(msg, protocol.DefaultLimits())
	require.NoError(t, err)
	return f
}

func readOps(t *testing.T, conn *websocket.Conn) []protocol.Op {
	t.Helper()
	f := readFrame(t, conn)
	require.Equal(t, protocol.FrameOps, f.Type)
	ops, err := protocol.DecodeOps(f.Payload, protocol.DefaultLimits())
	require.NoError(t, err)
	return ops
}

func readError(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	f := readFrame(t, conn)
	require.Equal(t, protocol.FrameError, f.Type)
	code, _, err := protocol.DecodeError(f.Payload, protocol.DefaultLimits())
	require.NoError(t, err)
	return code
}

func sendEvent(t *testing.T, conn *websocket.Conn, ev protocol.Event) {
	t.Helper()
	frame := protocol.NewFrame(protocol.FrameEvent, protocol.EncodeEvent(ev))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, frame.Encode()))
}

// nodeWithID returns the node given id attribute value by the ops.
func nodeWithID(ops []protocol.Op, id string) uint32 {
	for _, op := range ops {
		if op.Code == protocol.OpSetAttr && op.Key == "id" && op.Value == id {
			return op.ID
		}
	}
	return 0
}

func TestPage(t *testing.T) {
	_, ts := newTestServer(t, Config{Title: "Demo"})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	html := string(body)
	assert.Contains(t, html, "<title>Demo</title>")
	assert.Contains(t, html, `<span id="count">0</span>`)
	assert.Contains(t, html, `src="/_loom/client.js"`)
	assert.Contains(t, html, `data-live="/live"`)
}

func TestPageRenderFailure(t *testing.T) {
	bad := vdom.Define("Bad", func(s vdom.Scope, p vdom.Props) *vdom.VNode { panic("boom") })
	s := New(Config{}, func() *vdom.VNode { return bad.Element() }, WithLogger(logging.NewNop()))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := New(Config{}, counterRoot, WithLogger(logging.NewNop()))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["sessions"])
}

func TestMetricsEndpoint(t *testing.T) {
	plain := New(Config{}, counterRoot, WithLogger(logging.NewNop()))
	rec := httptest.NewRecorder()
	plain.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "loom_commits_total 1\n")
	})
	s := New(Config{}, counterRoot, WithLogger(logging.NewNop()), WithMetricsHandler(metrics))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "loom_commits_total")
}

func TestClientScript(t *testing.T) {
	s := New(Config{}, counterRoot, WithLogger(logging.NewNop()))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_loom/client.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
	assert.Contains(t, rec.Body.String(), "WebSocket")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/_loom/client.js", nil)
	req.Header.Set("If-None-Match", `W/"other", `+etag)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestEtagMatches(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`"abc"`, true},
		{`W/"abc"`, true},
		{`"x", "abc"`, true},
		{`"abcd"`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, etagMatches(tt.header, `"abc"`), tt.header)
	}
}

func TestLiveMountAndClick(t *testing.T) {
	s, ts := newTestServer(t, DefaultConfig())
	conn := dial(t, ts)

	mount := readOps(t, conn)
	require.NotEmpty(t, mount)
	assert.Equal(t, protocol.OpCreate, mount[0].Code)
	inc := nodeWithID(mount, "inc")
	require.NotZero(t, inc, "no #inc in %v", mount)
	assert.Contains(t, mount, protocol.Op{Code: protocol.OpListen, ID: inc, Key: "click"})
	assert.Equal(t, 1, s.Sessions())

	sendEvent(t, conn, protocol.Event{NodeID: inc, Name: "click"})
	update := readOps(t, conn)
	require.Len(t, update, 1, "only the count text changes: %v", update)
	assert.Equal(t, protocol.OpSetText, update[0].Code)
	assert.Equal(t, "1", update[0].Value)

	sendEvent(t, conn, protocol.Event{NodeID: inc, Name: "click"})
	update = readOps(t, conn)
	require.Len(t, update, 1)
	assert.Equal(t, "2", update[0].Value)
}

func TestLiveRejectsBadInput(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())
	conn := dial(t, ts)
	readOps(t, conn)

	sendEvent(t, conn, protocol.Event{NodeID: 999, Name: "click"})
	assert.Equal(t, "E303", readError(t, conn))

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x7f}))
	assert.Equal(t, "E301", readError(t, conn))

	bad := protocol.NewFrame(protocol.FrameEvent, []byte{0x00, 0x00, 0x00})
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, bad.Encode()))
	assert.Equal(t, "E302", readError(t, conn))
}

func TestSessionHookSeesMirroredHTML(t *testing.T) {
	htmls := make(chan string, 8)
	hook := func(sess *Session) fiber.Observer {
		return fiber.ObserverFuncs{OnCommit: func(fiber.CommitStats) {
			html, err := sess.HTML()
			if err == nil {
				htmls <- html
			}
		}}
	}
	cfg := DefaultConfig()
	cfg.Mirror = true
	_, ts := newTestServer(t, cfg, WithSessionHook(hook))
	conn := dial(t, ts)

	mount := readOps(t, conn)
	select {
	case html := <-htmls:
		assert.Contains(t, html, `<span id="count">0</span>`)
	case <-time.After(5 * time.Second):
		t.Fatal("hook saw no commit")
	}

	sendEvent(t, conn, protocol.Event{NodeID: nodeWithID(mount, "dec"), Name: "click"})
	readOps(t, conn)
	select {
	case html := <-htmls:
		assert.Contains(t, html, `<span id="count">-1</span>`)
	case <-time.After(5 * time.Second):
		t.Fatal("hook saw no second commit")
	}
}

func TestSessionHTMLWithoutMirror(t *testing.T) {
	errs := make(chan error, 1)
	hook := func(sess *Session) fiber.Observer {
		return fiber.ObserverFuncs{OnCommit: func(fiber.CommitStats) {
			_, err := sess.HTML()
			errs <- err
		}}
	}
	_, ts := newTestServer(t, DefaultConfig(), WithSessionHook(hook))
	dial(t, ts)

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no commit")
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	s := New(DefaultConfig(), counterRoot, WithLogger(logging.NewNop()))
	ts := httptest.NewServer(s)
	defer ts.Close()
	conn := dial(t, ts)
	readOps(t, conn)
	require.Equal(t, 1, s.Sessions())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "err = %v", err)
	assert.Eventually(t, func() bool { return s.Sessions() == 0 }, 5*time.Second, 10*time.Millisecond)
}
