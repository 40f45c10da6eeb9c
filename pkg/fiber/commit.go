package fiber

import (
	"time"

	"github.com/vango-dev/loom/pkg/vdom"
)

// commit applies the work tree's effects to the host and makes it current.
// On error the remaining effects are skipped and the trees are not swapped.
// A host adapter panic is reported as an ErrHostOperation error.
func (r *Reconciler) commit() (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = hostPanicError(v)
		}
	}()
	t := r.wip
	start := time.Now()
	stats := CommitStats{Gen: t.gen, Fibers: t.size(), Slices: r.wipSlices}

	for _, d := range r.deletions {
		removed, err := r.commitDeletion(t.base, d.id)
		if err != nil {
			return err
		}
		if removed {
			stats.Deleted++
		}
	}

	ordered, canOrder := r.host.(OrderedInserter)
	root := t.get(t.root)
	stack := make([]FiberID, 0, 32)
	if root.Child != 0 {
		stack = append(stack, root.Child)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f := t.get(id)

		switch {
		case f.Effect == EffectPlace && f.Host != nil:
			parent := t.hostParent(id)
			var err error
			if before := t.hostSibling(id); canOrder && before != nil {
				err = ordered.InsertBefore(parent, f.Host, before)
			} else {
				err = r.host.InsertChild(parent, f.Host)
			}
			if err != nil {
				return hostError("insert", f.Type, err)
			}
			stats.Placed++
		case f.Effect == EffectUpdate && f.Host != nil:
			var prev vdom.Props
			if alt := t.base.get(f.Alternate); alt != nil {
				prev = alt.Props
			}
			if err := r.host.ApplyProps(f.Host, prev, f.Props); err != nil {
				return hostError("apply", f.Type, err)
			}
			stats.Updated++
		}

		if f.Sibling != 0 {
			stack = append(stack, f.Sibling)
		}
		if f.Child != 0 {
			stack = append(stack, f.Child)
		}
	}

	t.base = nil
	t.seed = nil
	r.current = t
	r.wip = nil
	r.deletions = nil
	r.next = 0
	r.stats.Commits++

	stats.Duration = time.Since(start)
	r.log.Debug("commit",
		"gen", stats.Gen,
		"fibers", stats.Fibers,
		"placed", stats.Placed,
		"updated", stats.Updated,
		"deleted", stats.Deleted,
		"slices", stats.Slices,
		"duration", stats.Duration,
	)
	r.obs.Committed(stats)
	return nil
}

// commitDeletion removes the host output of a deleted fiber. Component
// fibers have no handle of their own, so their first host descendant is
// removed instead. It reports whether anything was removed.
func (r *Reconciler) commitDeletion(base *tree, id FiberID) (bool, error) {
	f := base.firstHost(id)
	if f == nil {
		return false, nil
	}
	if err := r.host.RemoveChild(base.hostParent(id), f.Host); err != nil {
		return false, hostError("remove", f.Type, err)
	}
	return true, nil
}
