// Package vdom provides the virtual node model consumed by the reconciler.
//
// A VNode is an immutable description of either a host element (identified
// by its tag) or a component (identified by its descriptor), together with
// its props. Children always live under the "children" prop, and plain text
// is normalized into dedicated text nodes so the reconciler only ever deals
// with one shape of node.
//
// # Core Types
//
// VNode is the fundamental building block. Type tells host elements and
// components apart; Type values are comparable so the reconciler can match
// nodes across renders with ==. Props holds attributes, event handlers and
// children.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1("Title"),
//	    P(Text("Content")),
//	    OnClick(handler),
//	)
//
// H mirrors the classic createElement(type, props, children...) form.
//
// # Components
//
// Define turns a render function into a component descriptor:
//
//	Counter := vdom.Define("Counter", func(s vdom.Scope, p vdom.Props) *vdom.VNode {
//	    count, setCount := fiber.UseState(s, 0)
//	    return Button(OnClick(func() { setCount(count + 1) }), count)
//	})
//
//	Div(Counter.Element(Attr{Key: "label", Value: "clicks"}))
//
// # Props Diffing
//
// DiffProps computes the attribute and listener changes a host adapter has
// to apply when a node is updated.
package vdom
