// Package slice provides cooperative scheduling services for the reconciler.
//
// The reconciler never runs to completion on its own: it asks a Service for
// a slice, does as much work as the slice's Budget allows, and asks again if
// work remains. This package supplies the services and budgets:
//
//   - Queue holds pending slice requests until the caller pumps them. Tests
//     use it to step traversal deterministically.
//   - Loop is a single goroutine owning a task queue. Slices and posted
//     tasks (events from other goroutines) run on it in FIFO order, which
//     gives the reconciler the single-threaded host it requires.
//   - Units, Deadline and Unlimited build per-slice budgets.
//
// A Budget is probed once per unit of work. Units(n) therefore allows
// exactly n units per slice, independent of wall-clock time.
package slice
