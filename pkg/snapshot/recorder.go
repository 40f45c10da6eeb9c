package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/loom/pkg/fiber"
)

// DefaultPutTimeout bounds a single store write.
const DefaultPutTimeout = 5 * time.Second

// Recorder writes a snapshot after every commit. The HTML is captured on
// the committing goroutine; the write happens on a background goroutine
// and only the newest pending snapshot is kept.
type Recorder struct {
	store   Store
	key     string
	html    func() (string, error)
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending []byte
	has     bool
	closed  bool
	saved   int
	wake    chan struct{}
	done    chan struct{}
}

var _ fiber.Observer = (*Recorder)(nil)

// NewRecorder starts a recorder that stores html() under key.
func NewRecorder(store Store, key string, html func() (string, error), logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		store:   store,
		key:     key,
		html:    html,
		logger:  logger.With("snapshot", key),
		timeout: DefaultPutTimeout,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// SliceDone implements fiber.Observer.
func (r *Recorder) SliceDone(fiber.SliceStats) {}

// Failed implements fiber.Observer.
func (r *Recorder) Failed(error) {}

// Committed implements fiber.Observer.
func (r *Recorder) Committed(fiber.CommitStats) {
	html, err := r.html()
	if err != nil {
		r.logger.Warn("snapshot render failed", "error", err)
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.pending = []byte(html)
	r.has = true
	select {
	case r.wake <- struct{}{}:
	default:
	}
	r.mu.Unlock()
}

func (r *Recorder) run() {
	defer close(r.done)
	for range r.wake {
		for {
			r.mu.Lock()
			data, ok := r.pending, r.has
			r.pending, r.has = nil, false
			r.mu.Unlock()
			if !ok {
				break
			}
			r.put(data)
		}
	}
}

func (r *Recorder) put(data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.Put(ctx, r.key, data); err != nil {
		r.logger.Error("snapshot write failed", "error", err)
		return
	}
	r.mu.Lock()
	r.saved++
	r.mu.Unlock()
	r.logger.Debug("snapshot written", "bytes", len(data))
}

// Saved returns how many snapshots were written.
func (r *Recorder) Saved() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved
}

// Close writes the pending snapshot, if any, and stops the recorder.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.wake)
	r.mu.Unlock()
	<-r.done
}
