package tracing

import (
	"context"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/loom/internal/demo"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/host/memhost"
	"github.com/vango-dev/loom/pkg/slice"
	"github.com/vango-dev/loom/pkg/vdom"
)

// recorder is a TracerProvider that keeps every span it starts. Methods it
// does not override come from the noop implementation.
type recorder struct {
	trace.TracerProvider
	mu    sync.Mutex
	spans []*span
}

func newRecorder() *recorder {
	return &recorder{TracerProvider: noop.NewTracerProvider()}
}

func (r *recorder) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return &tracer{Tracer: noop.NewTracerProvider().Tracer(name), r: r}
}

func (r *recorder) named(name string) []*span {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*span
	for _, s := range r.spans {
		if s.name == name {
			out = append(out, s)
		}
	}
	return out
}

type tracer struct {
	trace.Tracer
	r *recorder
}

func (t *tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &span{Span: noop.Span{}, name: name, attrs: map[attribute.Key]attribute.Value{}}
	if p, ok := trace.SpanFromContext(ctx).(*span); ok {
		s.parent = p
	}
	for _, kv := range cfg.Attributes() {
		s.attrs[kv.Key] = kv.Value
	}
	t.r.mu.Lock()
	t.r.spans = append(t.r.spans, s)
	t.r.mu.Unlock()
	return trace.ContextWithSpan(ctx, s), s
}

type span struct {
	trace.Span
	name   string
	parent *span
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	errs   []error
	ended  bool
}

func (s *span) End(...trace.SpanEndOption) { s.ended = true }

func (s *span) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *span) SetStatus(c codes.Code, _ string) { s.status = c }

func (s *span) RecordError(err error, _ ...trace.EventOption) { s.errs = append(s.errs, err) }

func run(t *testing.T, o *Observer, budget slice.BudgetFunc, v *vdom.VNode) {
	t.Helper()
	h := memhost.New()
	q := slice.NewQueue(budget)
	r := fiber.New(h, q, fiber.WithObserver(o))
	if err := r.Render(v, h.Container("div")); err != nil {
		t.Fatal(err)
	}
	q.Drain(0)
}

func TestRenderSpans(t *testing.T) {
	rec := newRecorder()
	o := New(WithTracerProvider(rec), WithAttributes(attribute.String("session", "s1")))
	run(t, o, slice.Units(4), demo.Grid(2, 3))

	renders := rec.named(SpanRender)
	if len(renders) != 1 {
		t.Fatalf("render spans = %d, want 1", len(renders))
	}
	render := renders[0]
	if !render.ended || render.status != codes.Ok {
		t.Errorf("render span ended=%v status=%v", render.ended, render.status)
	}
	if render.attrs["session"].AsString() != "s1" {
		t.Errorf("render attrs = %v", render.attrs)
	}

	slices := rec.named(SpanSlice)
	if len(slices) < 2 {
		t.Fatalf("slice spans = %d, want several with a 4-unit budget", len(slices))
	}
	if got := render.attrs["loom.slices"].AsInt64(); got != int64(len(slices)) {
		t.Errorf("loom.slices = %d, want %d", got, len(slices))
	}
	for _, s := range slices {
		if s.parent != render || !s.ended {
			t.Errorf("slice span parent=%v ended=%v", s.parent, s.ended)
		}
	}
	if slices[len(slices)-1].attrs["loom.pending"].AsBool() {
		t.Error("last slice reported pending work")
	}

	commits := rec.named(SpanCommit)
	if len(commits) != 1 || commits[0].parent != render {
		t.Fatalf("commit spans = %d", len(commits))
	}
	// table, tbody, 2 tr, 6 td, 6 text
	if got := commits[0].attrs["loom.placed"].AsInt64(); got != 16 {
		t.Errorf("loom.placed = %d, want 16", got)
	}
}

func TestFailedRender(t *testing.T) {
	rec := newRecorder()
	o := New(WithTracerProvider(rec))
	bad := vdom.Define("Bad", func(s vdom.Scope, p vdom.Props) *vdom.VNode { panic("boom") })
	run(t, o, nil, vdom.Div(bad.Element()))

	renders := rec.named(SpanRender)
	if len(renders) != 1 {
		t.Fatalf("render spans = %d, want 1", len(renders))
	}
	r := renders[0]
	if r.status != codes.Error || len(r.errs) != 1 || !r.ended {
		t.Errorf("render span status=%v errs=%v ended=%v", r.status, r.errs, r.ended)
	}
	if got := r.attrs["loom.error_code"].AsString(); got != "E104" {
		t.Errorf("loom.error_code = %q, want E104", got)
	}
	if n := len(rec.named(SpanCommit)); n != 0 {
		t.Errorf("commit spans = %d, want 0", n)
	}
}

func TestEachRenderGetsItsOwnSpan(t *testing.T) {
	rec := newRecorder()
	o := New(WithTracerProvider(rec))
	o.SliceDone(fiber.SliceStats{Units: 1})
	o.Committed(fiber.CommitStats{Gen: 1})
	o.Committed(fiber.CommitStats{Gen: 2})

	renders := rec.named(SpanRender)
	if len(renders) != 2 {
		t.Fatalf("render spans = %d, want 2", len(renders))
	}
	if renders[0] == renders[1] {
		t.Error("renders share a span")
	}
}

func TestDefaultsUseGlobalProvider(t *testing.T) {
	o := New()
	o.SliceDone(fiber.SliceStats{Units: 1})
	o.Committed(fiber.CommitStats{})
	if o.render != nil {
		t.Error("render span still open after commit")
	}
}
