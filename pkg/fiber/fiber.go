package fiber

import (
	"reflect"

	"github.com/vango-dev/loom/pkg/vdom"
)

// FiberID addresses a fiber inside its tree's arena. Zero means none.
type FiberID uint32

// Effect is the mutation a fiber requires at commit.
type Effect uint8

const (
	EffectNone   Effect = iota // root, or not yet processed
	EffectPlace                // insert a new host node
	EffectUpdate               // reuse the host node, apply props
	EffectDelete               // remove from the host (old tree only)
)

// String returns the string representation of the Effect.
func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "None"
	case EffectPlace:
		return "Place"
	case EffectUpdate:
		return "Update"
	case EffectDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// rootType is the Type of every tree's root fiber. The root is host-like:
// its handle is the container passed to Render.
var rootType = vdom.Tag("#root")

// Fiber is one node of a work or current tree.
type Fiber struct {
	Type  vdom.Type
	Props vdom.Props
	Host  Handle

	Parent  FiberID
	Child   FiberID
	Sibling FiberID

	// Alternate is the counterpart in the tree this one was diffed against.
	// It indexes tree.base and is meaningless once base is dropped.
	Alternate FiberID

	Effect Effect

	// hooks is only used by component fibers.
	hooks []hook

	// seed is the counterpart in tree.seed, set only while a mount restarts.
	seed FiberID
}

// hook is one positional state cell reference.
type hook struct {
	kind reflect.Type
	cell *cell
}

// cell holds hook state. Cells are carried from a fiber to the fiber that
// reuses it on the next render, so setters captured by older renders keep
// addressing live state.
type cell struct {
	value any
}

// tree is an arena of fibers for one render generation.
type tree struct {
	gen    uint64
	fibers []*Fiber // index 0 is unused so FiberID(0) means none
	root   FiberID

	// base is the tree that was current when this one was seeded. All
	// Alternate IDs and deletion IDs index into it.
	base *tree

	// seed is a discarded first mount whose hook cells a restarted mount
	// adopts. It never supplies host handles.
	seed *tree
}

func newTree(gen uint64, base *tree) *tree {
	return &tree{
		gen:    gen,
		fibers: make([]*Fiber, 1, 64),
		base:   base,
	}
}

// get returns the fiber for id, or nil for id 0, a nil tree or an id that
// does not belong to this arena.
func (t *tree) get(id FiberID) *Fiber {
	if t == nil || id == 0 || int(id) >= len(t.fibers) {
		return nil
	}
	return t.fibers[id]
}

func (t *tree) alloc(f *Fiber) FiberID {
	t.fibers = append(t.fibers, f)
	return FiberID(len(t.fibers) - 1)
}

// size returns the number of fibers in the arena.
func (t *tree) size() int {
	if t == nil {
		return 0
	}
	return len(t.fibers) - 1
}

// nextUnit returns the fiber after id in depth-first pre-order, or 0 when
// traversal is complete.
func (t *tree) nextUnit(id FiberID) FiberID {
	f := t.get(id)
	if f == nil {
		return 0
	}
	if f.Child != 0 {
		return f.Child
	}
	for cur := id; cur != 0 && cur != t.root; {
		c := t.get(cur)
		if c.Sibling != 0 {
			return c.Sibling
		}
		cur = c.Parent
	}
	return 0
}

// hostParent returns the handle of the nearest ancestor that has one.
func (t *tree) hostParent(id FiberID) Handle {
	f := t.get(id)
	if f == nil {
		return nil
	}
	for p := t.get(f.Parent); p != nil; p = t.get(p.Parent) {
		if p.Host != nil {
			return p.Host
		}
	}
	return nil
}

// firstHost returns the first handle-bearing fiber at or below id following
// only first-child links, which is how component fibers reach their host
// output.
func (t *tree) firstHost(id FiberID) *Fiber {
	for f := t.get(id); f != nil; f = t.get(f.Child) {
		if f.Host != nil {
			return f
		}
	}
	return nil
}

// hostSibling returns the handle of the first host node that follows id
// among already-mounted siblings, looking through handle-less component
// fibers. It returns nil when id should be appended.
func (t *tree) hostSibling(id FiberID) Handle {
	cur := id
	for {
		f := t.get(cur)
		for f.Sibling == 0 {
			p := t.get(f.Parent)
			if p == nil || p.Host != nil {
				return nil
			}
			cur, f = f.Parent, p
		}
		cur = f.Sibling
		s := t.get(cur)
		for s.Effect != EffectPlace && s.Host == nil && s.Child != 0 {
			cur = s.Child
			s = t.get(cur)
		}
		if s.Effect != EffectPlace && s.Host != nil {
			return s.Host
		}
	}
}
