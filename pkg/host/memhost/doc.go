// Package memhost is an in-memory host for the reconciler.
//
// Nodes are plain structs with an attribute map, a listener map and child
// slices, which makes the host useful for tests, server-side rendering and
// tooling. Every mutation is recorded in an operation log, and any
// operation can be made to fail to exercise error paths.
//
//	h := memhost.New()
//	root := h.Container("div")
//	r := fiber.New(h, slice.NewQueue(nil))
//	r.Render(app, root)
//
// A Host is not safe for concurrent use; it is meant to be driven from the
// reconciler's thread.
package memhost
