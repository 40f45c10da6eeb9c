// Package tracing records reconciler activity as OpenTelemetry spans.
//
// An Observer turns each render into a "loom.render" span, from its first
// slice to its commit or failure, with one "loom.slice" child per slice and
// a "loom.commit" child for the commit. Observers keep per-render state, so
// use one per reconciler.
//
// The tracer comes from the global provider unless WithTracerProvider is
// given. Configure it in main() before rendering:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
package tracing

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	lerrors "github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/fiber"
)

// Default tracer name for loom.
const defaultTracerName = "loom"

// Span names.
const (
	SpanRender = "loom.render"
	SpanSlice  = "loom.slice"
	SpanCommit = "loom.commit"
)

// Config configures an Observer.
type Config struct {
	// TracerName is the name of the tracer (default: "loom").
	TracerName string

	// Provider supplies the tracer (default: the global provider).
	Provider trace.TracerProvider

	// Attributes are added to every render span.
	Attributes []attribute.KeyValue

	// Context is the parent of render spans (default: background).
	Context context.Context
}

// Option configures an Observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.Provider = tp
	}
}

// WithAttributes adds attributes to every render span.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(c *Config) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// WithContext sets the parent context of render spans.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		c.Context = ctx
	}
}

// Observer is a fiber.Observer that emits spans.
type Observer struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
	parent context.Context

	mu        sync.Mutex
	render    trace.Span
	renderCtx context.Context
	slices    int
	units     int
}

var _ fiber.Observer = (*Observer)(nil)

// New creates an Observer.
func New(opts ...Option) *Observer {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	if config.Context == nil {
		config.Context = context.Background()
	}
	return &Observer{
		tracer: config.Provider.Tracer(config.TracerName),
		attrs:  config.Attributes,
		parent: config.Context,
	}
}

// begin starts the render span if none is open. Callers hold o.mu.
func (o *Observer) begin(at time.Time) {
	if o.render != nil {
		return
	}
	o.renderCtx, o.render = o.tracer.Start(o.parent, SpanRender,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(o.attrs...),
		trace.WithTimestamp(at),
	)
	o.slices = 0
	o.units = 0
}

// finish ends the render span. Callers hold o.mu.
func (o *Observer) finish(at time.Time) {
	o.render.SetAttributes(
		attribute.Int("loom.slices", o.slices),
		attribute.Int("loom.units", o.units),
	)
	o.render.End(trace.WithTimestamp(at))
	o.render = nil
	o.renderCtx = nil
}

// SliceDone implements fiber.Observer.
func (o *Observer) SliceDone(s fiber.SliceStats) {
	end := time.Now()
	start := end.Add(-s.Duration)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.begin(start)
	o.slices++
	o.units += s.Units

	_, span := o.tracer.Start(o.renderCtx, SpanSlice,
		trace.WithTimestamp(start),
		trace.WithAttributes(
			attribute.Int("loom.units", s.Units),
			attribute.Bool("loom.pending", s.Pending),
		),
	)
	span.End(trace.WithTimestamp(end))
}

// Committed implements fiber.Observer.
func (o *Observer) Committed(s fiber.CommitStats) {
	end := time.Now()
	start := end.Add(-s.Duration)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.begin(start)

	_, span := o.tracer.Start(o.renderCtx, SpanCommit,
		trace.WithTimestamp(start),
		trace.WithAttributes(
			attribute.Int64("loom.gen", int64(s.Gen)),
			attribute.Int("loom.fibers", s.Fibers),
			attribute.Int("loom.placed", s.Placed),
			attribute.Int("loom.updated", s.Updated),
			attribute.Int("loom.deleted", s.Deleted),
		),
	)
	span.End(trace.WithTimestamp(end))

	o.render.SetStatus(codes.Ok, "")
	o.finish(end)
}

// Failed implements fiber.Observer.
func (o *Observer) Failed(err error) {
	now := time.Now()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.begin(now)

	var le *lerrors.LoomError
	if errors.As(err, &le) {
		o.render.SetAttributes(attribute.String("loom.error_code", le.Code))
	}
	o.render.RecordError(err)
	o.render.SetStatus(codes.Error, err.Error())
	o.finish(now)
}
