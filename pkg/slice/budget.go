package slice

import (
	"math"
	"time"
)

// Budget reports how much of the current slice is left.
type Budget interface {
	TimeRemaining() time.Duration
}

// Service runs slice callbacks on behalf of the reconciler. Implementations
// must invoke callbacks one at a time, from a single thread.
type Service interface {
	RequestSlice(fn func(Budget))
}

// DefaultSlice is the wall-clock length of a Loop slice unless configured.
const DefaultSlice = 5 * time.Millisecond

// BudgetFunc creates the budget for one slice.
type BudgetFunc func() Budget

// plenty is what count-based budgets report while they have units left.
const plenty = time.Duration(math.MaxInt64)

// unitBudget allows a fixed number of probes.
type unitBudget struct {
	left int
}

func (u *unitBudget) TimeRemaining() time.Duration {
	if u.left <= 0 {
		return 0
	}
	u.left--
	return plenty
}

// Units returns budgets allowing n units of work per slice. n < 1 is
// treated as 1 so traversal always makes progress.
func Units(n int) BudgetFunc {
	if n < 1 {
		n = 1
	}
	return func() Budget {
		return &unitBudget{left: n}
	}
}

// deadlineBudget ends at a fixed instant.
type deadlineBudget struct {
	end time.Time
	now func() time.Time
}

func (d *deadlineBudget) TimeRemaining() time.Duration {
	left := d.end.Sub(d.now())
	if left < 0 {
		return 0
	}
	return left
}

// Deadline returns budgets lasting d of wall-clock time from the moment the
// slice starts.
func Deadline(d time.Duration) BudgetFunc {
	return DeadlineClock(d, time.Now)
}

// DeadlineClock is Deadline with an injectable clock.
func DeadlineClock(d time.Duration, now func() time.Time) BudgetFunc {
	return func() Budget {
		return &deadlineBudget{end: now().Add(d), now: now}
	}
}

type unlimited struct{}

func (unlimited) TimeRemaining() time.Duration { return plenty }

// Unlimited returns budgets that never run out.
func Unlimited() BudgetFunc {
	return func() Budget { return unlimited{} }
}
