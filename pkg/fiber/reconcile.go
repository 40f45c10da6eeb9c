package fiber

import (
	"errors"

	lerrors "github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/vdom"
)

var errNilHandle = errors.New("host returned a nil handle")

// performUnit expands one fiber of the work tree and returns the next fiber
// to process.
func (r *Reconciler) performUnit(id FiberID) (FiberID, error) {
	t := r.wip
	f := t.get(id)
	var err error
	if f.Type.IsComponent() {
		err = r.updateComponent(t, id, f)
	} else {
		err = r.updateHost(t, id, f)
	}
	if err != nil {
		return 0, err
	}
	return t.nextUnit(id), nil
}

func (r *Reconciler) updateComponent(t *tree, id FiberID, f *Fiber) error {
	out, err := r.renderComponent(t, id, f)
	if err != nil {
		return err
	}
	if t != r.wip {
		// Superseded during render; nothing here will be committed.
		return nil
	}
	if alt := t.base.get(f.Alternate); alt != nil && len(alt.hooks) != len(f.hooks) {
		return hookContextError("component %s called %d hooks, the previous render called %d",
			componentName(f.Type.Comp), len(f.hooks), len(alt.hooks))
	}
	r.reconcileChildren(t, id, childList(out))
	return nil
}

// renderComponent runs the component's render function with f as the
// active hook context. Panics are turned into errors.
func (r *Reconciler) renderComponent(t *tree, id FiberID, f *Fiber) (out *vdom.VNode, err error) {
	comp := f.Type.Comp
	r.hookTree, r.hookFiber, r.hookCursor, r.rendering = t, id, 0, true
	f.hooks = nil
	defer func() {
		r.hookTree, r.hookFiber, r.rendering = nil, 0, false
		v := recover()
		if v == nil {
			return
		}
		out = nil
		switch p := v.(type) {
		case *lerrors.LoomError:
			err = p
		default:
			err = componentPanicError(comp, v)
		}
	}()
	return comp.Render(&scope{r: r, tree: t, fiber: id, comp: comp}, f.Props), nil
}

func (r *Reconciler) updateHost(t *tree, id FiberID, f *Fiber) error {
	if f.Host == nil {
		h, err := r.host.CreateNode(f.Type, f.Props)
		if err == nil && h == nil {
			err = errNilHandle
		}
		if err != nil {
			return hostError("create", f.Type, err)
		}
		f.Host = h
	}
	r.reconcileChildren(t, id, f.Props.Children())
	return nil
}

// reconcileChildren diffs elems against the children of parent's alternate,
// position by position, and links the resulting fibers under parent.
//
// Equal types at a position reuse the old host node (Update). A different
// type places a new fiber and deletes the old one, so the old host node
// does not linger. Old fibers past the end of elems are deleted.
func (r *Reconciler) reconcileChildren(t *tree, parent FiberID, elems []*vdom.VNode) {
	p := t.get(parent)
	var oldID FiberID
	if alt := t.base.get(p.Alternate); alt != nil {
		oldID = alt.Child
	}

	var seedID FiberID
	if src := t.seed.get(p.seed); src != nil {
		seedID = src.Child
	}

	var first, prev FiberID
	for i := 0; i < len(elems) || oldID != 0; i++ {
		var el *vdom.VNode
		if i < len(elems) {
			el = elems[i]
		}
		old := t.base.get(oldID)

		var id FiberID
		switch {
		case el != nil && old != nil && old.Type == el.Type:
			id = t.alloc(&Fiber{
				Type:      el.Type,
				Props:     el.Props,
				Host:      old.Host,
				Parent:    parent,
				Alternate: oldID,
				Effect:    EffectUpdate,
			})
		case el != nil:
			if old != nil {
				r.markDeleted(oldID, old)
			}
			id = t.alloc(&Fiber{
				Type:   el.Type,
				Props:  el.Props,
				Parent: parent,
				Effect: EffectPlace,
			})
		case old != nil:
			r.markDeleted(oldID, old)
		}

		if old != nil {
			oldID = old.Sibling
		}
		if src := t.seed.get(seedID); src != nil {
			if f := t.get(id); f != nil && el.Type == src.Type {
				f.seed = seedID
			}
			seedID = src.Sibling
		}
		if id == 0 {
			continue
		}
		if prev == 0 {
			first = id
		} else {
			t.get(prev).Sibling = id
		}
		prev = id
	}
	p.Child = first
}

func (r *Reconciler) markDeleted(id FiberID, f *Fiber) {
	r.deletions = append(r.deletions, deletion{id: id, prev: f.Effect})
	f.Effect = EffectDelete
}

func componentName(c *vdom.Component) string {
	if c == nil || c.Name == "" {
		return "<anonymous>"
	}
	return c.Name
}
