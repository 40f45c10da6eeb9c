// Package render serializes an in-memory host tree to HTML.
//
// The reconciler builds the tree in a memhost.Host; render turns the result
// into markup for server-side rendering, snapshots and the CLI:
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderChildren(container)
//
// Text and attribute values are escaped. Listeners are not serialized; with
// RendererConfig.NodeIDs set, every element carries a data-lid attribute
// holding its host node ID and a data-on-<event> marker per listener, which
// is what a live client needs to route events back.
//
// RenderPage wraps a tree in a complete document with the live client
// script.
package render
