package fiber

import (
	"io"
	"log/slog"
	"time"

	"github.com/vango-dev/loom/pkg/slice"
	"github.com/vango-dev/loom/pkg/vdom"
)

// DefaultEpsilon is the minimum budget a slice must report to start another
// unit of work.
const DefaultEpsilon = time.Millisecond

// Reconciler owns one root: its current tree, the work tree being built and
// the scheduling state between slices.
//
// A Reconciler is not safe for concurrent use. All calls, including hook
// setters, must happen on the thread that runs the slice service's
// callbacks.
type Reconciler struct {
	host   HostAdapter
	slices slice.Service

	current *tree
	wip     *tree
	next    FiberID
	gen     uint64

	// deletions holds base-tree fibers tagged Delete for the pending commit.
	deletions []deletion

	sliceRequested bool

	// Active hook context while a component renders.
	hookTree   *tree
	hookFiber  FiberID
	hookCursor int
	rendering  bool

	err   error
	stats Stats

	// slices taken by the pending work tree.
	wipSlices int

	log     *slog.Logger
	obs     Observer
	epsilon time.Duration
}

type deletion struct {
	id   FiberID
	prev Effect
}

// Stats are cumulative counters of a Reconciler.
type Stats struct {
	Renders    int    // work roots scheduled
	Superseded int    // work trees discarded before commit
	Slices     int    // slices run
	Units      int    // fibers processed
	Commits    int    // successful commits
	Failures   int    // traversals or commits that failed
	Gen        uint64 // generation of the current tree
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.log = l
		}
	}
}

// WithObserver registers an observer. Repeated use fans out to all of them.
func WithObserver(o Observer) Option {
	return func(r *Reconciler) {
		if o == nil {
			return
		}
		if r.obs == nil {
			r.obs = o
			return
		}
		r.obs = Observers(r.obs, o)
	}
}

// WithEpsilon sets the minimum remaining budget needed to process another
// fiber. Values <= 0 keep DefaultEpsilon.
func WithEpsilon(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.epsilon = d
		}
	}
}

// New creates a reconciler that mutates host and runs on slices.
func New(host HostAdapter, slices slice.Service, opts ...Option) *Reconciler {
	r := &Reconciler{
		host:    host,
		slices:  slices,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		epsilon: DefaultEpsilon,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.obs == nil {
		r.obs = Observers()
	}
	return r
}

// Render schedules vnode to be rendered into container. The first call
// mounts; later calls diff against the committed tree. Work happens in the
// slices requested from the slice service, so the host reflects vnode only
// once Idle reports true.
func (r *Reconciler) Render(vnode *vdom.VNode, container Handle) error {
	if container == nil {
		err := ErrNoContainer
		r.log.Error("render without container", "error", err)
		return err
	}
	root := &Fiber{
		Type:  rootType,
		Props: vdom.Props{vdom.ChildrenProp: childList(vnode)},
		Host:  container,
	}
	var base *tree
	if r.current != nil {
		base = r.current
		root.Alternate = r.current.root
	}
	r.err = nil
	r.scheduleRoot(root, base)
	return nil
}

func childList(v *vdom.VNode) []*vdom.VNode {
	if v == nil {
		return nil
	}
	return []*vdom.VNode{v}
}

// Err returns the error that ended the last traversal or commit, or nil.
// It is cleared by the next Render.
func (r *Reconciler) Err() error {
	return r.err
}

// Idle reports whether no work tree is pending.
func (r *Reconciler) Idle() bool {
	return r.wip == nil
}

// Mounted reports whether a tree has been committed.
func (r *Reconciler) Mounted() bool {
	return r.current != nil
}

// Stats returns cumulative counters.
func (r *Reconciler) Stats() Stats {
	s := r.stats
	if r.current != nil {
		s.Gen = r.current.gen
	}
	return s
}

// Node is a read-only view of a committed fiber.
type Node struct {
	ID     FiberID
	Depth  int
	Type   vdom.Type
	Props  vdom.Props
	Handle Handle
	Effect Effect
	Hooks  int
}

// Walk visits the committed tree in depth-first pre-order, root first. If fn
// returns false the node's subtree is skipped.
func (r *Reconciler) Walk(fn func(Node) bool) {
	t := r.current
	if t == nil {
		return
	}
	type frame struct {
		id    FiberID
		depth int
	}
	stack := []frame{{t.root, 0}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f := t.get(top.id)
		if f == nil {
			continue
		}
		if f.Sibling != 0 && top.id != t.root {
			stack = append(stack, frame{f.Sibling, top.depth})
		}
		descend := fn(Node{
			ID:     top.id,
			Depth:  top.depth,
			Type:   f.Type,
			Props:  f.Props,
			Handle: f.Host,
			Effect: f.Effect,
			Hooks:  len(f.hooks),
		})
		if descend && f.Child != 0 {
			stack = append(stack, frame{f.Child, top.depth + 1})
		}
	}
}
