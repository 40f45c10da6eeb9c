package fiber

import (
	"reflect"

	"github.com/vango-dev/loom/pkg/vdom"
)

// scope is the vdom.Scope handed to a component render. It pins the tree
// and fiber the render belongs to so hooks called from anywhere else are
// rejected.
type scope struct {
	r     *Reconciler
	tree  *tree
	fiber FiberID
	comp  *vdom.Component
}

func (s *scope) Component() *vdom.Component { return s.comp }

// UseState returns the state stored at the current hook position and a
// setter for it. On the first render the state is initial; afterwards it is
// whatever was last set.
//
// Every setter call stores the value immediately and schedules a render of
// the whole tree. Setters stay valid after the render that returned them.
func UseState[T any](s vdom.Scope, initial T) (T, func(T)) {
	sc, c := useCell[T](s, initial)
	v, _ := c.value.(T)
	return v, func(next T) {
		c.value = next
		sc.r.scheduleUpdate()
	}
}

// UseUpdater is UseState with a functional setter. The function receives
// the value stored at call time, so several calls before the next render
// compose.
func UseUpdater[T any](s vdom.Scope, initial T) (T, func(func(T) T)) {
	sc, c := useCell[T](s, initial)
	v, _ := c.value.(T)
	return v, func(fn func(T) T) {
		cur, _ := c.value.(T)
		c.value = fn(cur)
		sc.r.scheduleUpdate()
	}
}

// useCell claims the next hook position of the rendering component. Misuse
// panics with an ErrInvalidHookContext error, which fails the render.
func useCell[T any](s vdom.Scope, initial T) (*scope, *cell) {
	sc, ok := s.(*scope)
	if !ok || sc == nil {
		panic(hookContextError("hook called with a scope not created by the reconciler"))
	}
	r := sc.r
	if !r.rendering || r.hookTree != sc.tree || r.hookFiber != sc.fiber {
		panic(hookContextError("hook called outside the render of component %s",
			componentName(sc.comp)))
	}

	f := sc.tree.get(sc.fiber)
	kind := reflect.TypeFor[T]()
	pos := r.hookCursor

	var c *cell
	if alt := sc.tree.base.get(f.Alternate); alt != nil && pos < len(alt.hooks) {
		prev := alt.hooks[pos]
		if prev.kind != kind {
			panic(hookContextError("component %s hook %d changed from %s to %s",
				componentName(sc.comp), pos, prev.kind, kind))
		}
		c = prev.cell
	} else if src := sc.tree.seed.get(f.seed); src != nil && pos < len(src.hooks) && src.hooks[pos].kind == kind {
		c = src.hooks[pos].cell
	} else {
		c = &cell{value: initial}
	}

	f.hooks = append(f.hooks, hook{kind: kind, cell: c})
	r.hookCursor++
	return sc, c
}

// scheduleUpdate starts a render of the whole tree after a state change.
func (r *Reconciler) scheduleUpdate() {
	if cur := r.current; cur != nil {
		root := cur.get(cur.root)
		r.scheduleRoot(&Fiber{
			Type:      rootType,
			Props:     root.Props,
			Host:      root.Host,
			Alternate: cur.root,
		}, cur)
		return
	}
	if old := r.wip; old != nil {
		// State changed before the first commit: start the mount over,
		// keeping the cells the discarded mount already created.
		root := old.get(old.root)
		r.log.Warn("state set before first commit, restarting mount", "gen", old.gen)
		r.scheduleRoot(&Fiber{
			Type:  rootType,
			Props: root.Props,
			Host:  root.Host,
			seed:  old.root,
		}, nil)
		r.wip.seed = old
		return
	}
	r.log.Warn("state set with nothing rendered, ignoring")
}
