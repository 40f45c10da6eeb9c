package fiber

import "time"

// SliceStats describes one slice of traversal.
type SliceStats struct {
	Units    int           // fibers processed
	Duration time.Duration // wall time spent in the slice
	Pending  bool          // work remained when the slice ended
}

// CommitStats describes one commit.
type CommitStats struct {
	Gen      uint64        // generation of the committed tree
	Fibers   int           // fibers in the committed tree
	Placed   int           // Place effects applied
	Updated  int           // Update effects applied
	Deleted  int           // fibers removed from the host
	Slices   int           // slices the traversal took
	Duration time.Duration // time spent applying effects
}

// Observer receives reconciler events. Callbacks run on the reconciler's
// thread and must not block.
type Observer interface {
	SliceDone(SliceStats)
	Committed(CommitStats)
	Failed(error)
}

// Observers fans events out to every non-nil observer.
func Observers(obs ...Observer) Observer {
	list := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) SliceDone(s SliceStats) {
	for _, o := range m {
		o.SliceDone(s)
	}
}

func (m multiObserver) Committed(s CommitStats) {
	for _, o := range m {
		o.Committed(s)
	}
}

func (m multiObserver) Failed(err error) {
	for _, o := range m {
		o.Failed(err)
	}
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnSlice  func(SliceStats)
	OnCommit func(CommitStats)
	OnError  func(error)
}

func (f ObserverFuncs) SliceDone(s SliceStats) {
	if f.OnSlice != nil {
		f.OnSlice(s)
	}
}

func (f ObserverFuncs) Committed(s CommitStats) {
	if f.OnCommit != nil {
		f.OnCommit(s)
	}
}

func (f ObserverFuncs) Failed(err error) {
	if f.OnError != nil {
		f.OnError(err)
	}
}
