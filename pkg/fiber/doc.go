// Package fiber is the reconciliation engine: an incremental, interruptible
// scheduler that maps a vdom tree onto a retained-mode host tree.
//
// # Trees
//
// The Reconciler keeps at most two fiber trees. The current tree describes
// what the host shows; the work-in-progress tree is being built by a
// render or a state update. Each tree is an arena of fiber records addressed
// by FiberID. A work tree's Alternate links point into the tree that was
// current when it was seeded; committing drops that link, so nothing can
// follow a back-reference into a discarded generation.
//
// # Scheduling
//
// Work proceeds one fiber at a time in depth-first pre-order (child, then
// sibling, then an ancestor's sibling). The Reconciler asks a slice.Service
// for slices and keeps going while the slice budget reports more than the
// configured epsilon. The only state carried between slices is the next
// fiber to process, so traversal resumes exactly where it stopped.
//
// # Reconciliation
//
// Children are matched by position and type only. There are no keys: an
// insertion or removal in the middle of a list shifts every following
// child, which then updates in place when the types still line up.
//
// # Hooks
//
// UseState stores state in cells addressed by call order within a component.
// Hooks must be called unconditionally and in the same order on every
// render; violations fail with ErrInvalidHookContext. Every setter call
// re-renders the whole tree from the root.
//
// # Commit
//
// When traversal finishes, deletions are applied first, then Place and
// Update effects in tree order, and the work tree becomes current. Host
// failures abort the commit; there is no rollback.
package fiber
