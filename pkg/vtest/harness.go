package vtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/host/memhost"
	"github.com/vango-dev/loom/pkg/render"
	"github.com/vango-dev/loom/pkg/slice"
	"github.com/vango-dev/loom/pkg/vdom"
)

// Harness mounts a tree on an in-memory host and runs its slices
// synchronously on the test goroutine.
type Harness struct {
	t     testing.TB
	Host  *memhost.Host
	Root  *memhost.Node
	Queue *slice.Queue
	R     *fiber.Reconciler

	commits []fiber.CommitStats
}

// Option configures a Harness.
type Option func(*harnessConfig)

type harnessConfig struct {
	budget slice.BudgetFunc
	opts   []fiber.Option
}

// WithBudget sets the budget of every slice. The default is unlimited, so
// one slice finishes a render.
func WithBudget(b slice.BudgetFunc) Option {
	return func(c *harnessConfig) {
		c.budget = b
	}
}

// WithReconcilerOptions passes options to the reconciler.
func WithReconcilerOptions(opts ...fiber.Option) Option {
	return func(c *harnessConfig) {
		c.opts = append(c.opts, opts...)
	}
}

// New creates a harness with an empty "div" container.
func New(t testing.TB, opts ...Option) *Harness {
	t.Helper()
	cfg := harnessConfig{budget: slice.Unlimited()}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Harness{
		t:     t,
		Host:  memhost.New(),
		Queue: slice.NewQueue(cfg.budget),
	}
	h.Root = h.Host.Container("div")
	record := fiber.ObserverFuncs{OnCommit: func(s fiber.CommitStats) {
		h.commits = append(h.commits, s)
	}}
	h.R = fiber.New(h.Host, h.Queue, append([]fiber.Option{fiber.WithObserver(record)}, cfg.opts...)...)
	return h
}

// Mount renders v and flushes. A render error fails the test.
func (h *Harness) Mount(v *vdom.VNode) *Harness {
	h.t.Helper()
	if err := h.R.Render(v, h.Root); err != nil {
		h.t.Fatalf("Render: %v", err)
	}
	h.Flush()
	return h
}

// Flush runs pending slices until the reconciler is idle and returns how
// many ran. A reconcile error fails the test.
func (h *Harness) Flush() int {
	h.t.Helper()
	n := h.Queue.Drain(0)
	if err := h.R.Err(); err != nil {
		h.t.Fatalf("reconcile failed: %v", err)
	}
	return n
}

// Step runs one pending slice and reports whether one was pending.
func (h *Harness) Step() bool {
	return h.Queue.RunOne()
}

// Commits returns the stats of every commit so far.
func (h *Harness) Commits() []fiber.CommitStats {
	return h.commits
}

// Find returns the first node matching sel, failing the test if there is
// none. sel is a tag name ("button") or an id ("#inc").
func (h *Harness) Find(sel string) *memhost.Node {
	h.t.Helper()
	n := h.Root.Find(matcher(sel))
	if n == nil {
		h.t.Fatalf("no node matches %q in %s", sel, truncate(h.HTML(), 500))
	}
	return n
}

// FindAll returns every node matching sel, in document order.
func (h *Harness) FindAll(sel string) []*memhost.Node {
	var out []*memhost.Node
	match := matcher(sel)
	var visit func(n *memhost.Node)
	visit = func(n *memhost.Node) {
		if match(n) {
			out = append(out, n)
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, c := range h.Root.Children {
		visit(c)
	}
	return out
}

func matcher(sel string) func(*memhost.Node) bool {
	if id, ok := strings.CutPrefix(sel, "#"); ok {
		return func(n *memhost.Node) bool { return n.Attrs["id"] == id }
	}
	return func(n *memhost.Node) bool { return n.Tag == sel }
}

// Click dispatches a click on n and flushes.
func (h *Harness) Click(n *memhost.Node) {
	h.t.Helper()
	h.Dispatch(n, vdom.Event{Type: "click"})
}

// Input dispatches an input event carrying value and flushes.
func (h *Harness) Input(n *memhost.Node, value string) {
	h.t.Helper()
	h.Dispatch(n, vdom.Event{Type: "input", Value: value})
}

// Submit dispatches a submit event and flushes.
func (h *Harness) Submit(n *memhost.Node) {
	h.t.Helper()
	h.Dispatch(n, vdom.Event{Type: "submit"})
}

// Dispatch delivers ev to n's listener and flushes.
func (h *Harness) Dispatch(n *memhost.Node, ev vdom.Event) {
	h.t.Helper()
	if err := h.Host.Dispatch(n, ev); err != nil {
		h.t.Fatalf("dispatch %s: %v", ev.Type, err)
	}
	h.Flush()
}

// HTML renders the container's children.
func (h *Harness) HTML() string {
	return render.HTML(h.Root)
}

// Text returns the text content of the container.
func (h *Harness) Text() string {
	return h.Root.TextContent()
}
