package fiber

import (
	"time"

	"github.com/vango-dev/loom/pkg/slice"
)

// scheduleRoot installs root as the root of a new work tree diffed against
// base and makes sure a slice is coming. A pending work tree is discarded.
func (r *Reconciler) scheduleRoot(root *Fiber, base *tree) {
	if r.wip != nil {
		r.stats.Superseded++
		r.log.Debug("work tree superseded", "gen", r.wip.gen, "done", r.wip.size())
	}
	r.restoreDeletions()

	r.gen++
	t := newTree(r.gen, base)
	t.root = t.alloc(root)
	r.wip = t
	r.next = t.root
	r.wipSlices = 0
	r.stats.Renders++
	r.requestSlice()
}

// restoreDeletions undoes the Delete tags a discarded work tree put on its
// base so the base can be diffed again.
func (r *Reconciler) restoreDeletions() {
	if r.wip == nil {
		r.deletions = nil
		return
	}
	for _, d := range r.deletions {
		if f := r.wip.base.get(d.id); f != nil {
			f.Effect = d.prev
		}
	}
	r.deletions = nil
}

func (r *Reconciler) requestSlice() {
	if r.sliceRequested {
		return
	}
	r.sliceRequested = true
	r.slices.RequestSlice(r.runSlice)
}

// runSlice processes fibers until the budget drops to epsilon or the
// traversal ends, then either asks for another slice or commits.
func (r *Reconciler) runSlice(b slice.Budget) {
	r.sliceRequested = false
	if r.wip == nil {
		return
	}
	start := time.Now()
	units := 0
	for r.next != 0 && b.TimeRemaining() > r.epsilon {
		gen := r.gen
		next, err := r.performUnit(r.next)
		units++
		if gen != r.gen {
			// A setter called during the unit scheduled a newer root and
			// already pointed next at it.
			continue
		}
		if err != nil {
			r.stats.Units += units
			r.fail(err)
			return
		}
		r.next = next
	}
	r.stats.Units += units
	r.stats.Slices++
	r.wipSlices++

	pending := r.next != 0
	stats := SliceStats{Units: units, Duration: time.Since(start), Pending: pending}
	r.log.Debug("slice done", "gen", r.gen, "units", units, "pending", pending, "duration", stats.Duration)
	r.obs.SliceDone(stats)

	if pending {
		r.requestSlice()
		return
	}
	if r.wip != nil {
		if err := r.commit(); err != nil {
			r.fail(err)
		}
	}
}

// fail records err and discards the work tree.
func (r *Reconciler) fail(err error) {
	r.err = err
	r.stats.Failures++
	r.log.Error("reconcile failed", "gen", r.gen, "error", err)
	r.restoreDeletions()
	r.wip = nil
	r.next = 0
	r.rendering = false
	r.hookFiber = 0
	r.hookTree = nil
	r.obs.Failed(err)
}
