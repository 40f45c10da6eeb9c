package slice

// Queue is a Service that holds slice requests until the owner runs them.
// It is not safe for concurrent use.
type Queue struct {
	pending []func(Budget)
	budget  BudgetFunc
	ran     int
}

// NewQueue creates a queue whose slices get budgets from budget.
// A nil budget means Unlimited.
func NewQueue(budget BudgetFunc) *Queue {
	if budget == nil {
		budget = Unlimited()
	}
	return &Queue{budget: budget}
}

// RequestSlice implements Service.
func (q *Queue) RequestSlice(fn func(Budget)) {
	q.pending = append(q.pending, fn)
}

// Len returns the number of pending slices.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Ran returns the number of slices run so far.
func (q *Queue) Ran() int {
	return q.ran
}

// RunOne runs the oldest pending slice. It returns false if none was pending.
func (q *Queue) RunOne() bool {
	if len(q.pending) == 0 {
		return false
	}
	fn := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	q.ran++
	fn(q.budget())
	return true
}

// Drain runs slices until none are pending or max slices have run
// (max <= 0 means no limit). It returns the number of slices run.
func (q *Queue) Drain(max int) int {
	n := 0
	for max <= 0 || n < max {
		if !q.RunOne() {
			break
		}
		n++
	}
	return n
}
