package vdom

import "fmt"

// Reserved prop names.
const (
	// ChildrenProp holds the ordered []*VNode children of a node.
	ChildrenProp = "children"

	// NodeValueProp holds the content of a text node.
	NodeValueProp = "nodeValue"
)

// TextTag is the tag carried by normalized text nodes.
const TextTag = "#text"

// TextType is the Type of every text node.
var TextType = Type{Tag: TextTag}

// Type identifies what a VNode renders to: a host element tag or a
// component descriptor. Exactly one of the fields is set.
//
// Type is comparable. Tags compare by value, components by descriptor
// identity, which is what positional reconciliation keys on.
type Type struct {
	Tag  string
	Comp *Component
}

// Tag returns the Type of a host element.
func Tag(tag string) Type {
	return Type{Tag: tag}
}

// IsComponent reports whether t describes a component.
func (t Type) IsComponent() bool {
	return t.Comp != nil
}

// IsText reports whether t describes a text node.
func (t Type) IsText() bool {
	return t.Comp == nil && t.Tag == TextTag
}

// String returns the tag or the component name.
func (t Type) String() string {
	if t.Comp != nil {
		if t.Comp.Name != "" {
			return "<" + t.Comp.Name + ">"
		}
		return "<component>"
	}
	return t.Tag
}

// VNode is the virtual node. It must not be mutated once handed to the
// reconciler.
type VNode struct {
	Type  Type
	Props Props
}

// Children returns the node's children.
func (v *VNode) Children() []*VNode {
	if v == nil {
		return nil
	}
	return v.Props.Children()
}

// String returns a short description used in logs and errors.
func (v *VNode) String() string {
	if v == nil {
		return "<nil>"
	}
	if v.Type.IsText() {
		return fmt.Sprintf("%q", v.Props.String(NodeValueProp))
	}
	return fmt.Sprintf("%s(%d children)", v.Type, len(v.Children()))
}

// Props holds attributes, event handlers and children.
type Props map[string]any

// Children returns the children stored under ChildrenProp.
func (p Props) Children() []*VNode {
	if p == nil {
		return nil
	}
	children, _ := p[ChildrenProp].([]*VNode)
	return children
}

// Get returns the raw value stored under key.
func (p Props) Get(key string) (any, bool) {
	v, ok := p[key]
	return v, ok
}

// String returns the value under key formatted as a string, or "" if absent.
func (p Props) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the value under key as an int, or 0 if absent or not numeric.
func (p Props) Int(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Attr represents a single prop.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler prop.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // func() or func(Event)
}

// Scope is handed to a component while it renders. The hook helpers in
// package fiber use it to find the component's positional state cells; it
// is only valid for the duration of that render.
type Scope interface {
	// Component returns the descriptor being rendered.
	Component() *Component
}

// RenderFunc renders a component to exactly one child node. Returning nil
// renders nothing.
type RenderFunc func(s Scope, props Props) *VNode

// Component is a component descriptor. Its identity is its pointer, so
// define components once (usually as package-level variables) rather than
// inside render functions.
type Component struct {
	Name   string
	Render RenderFunc
}

// Define creates a component descriptor.
func Define(name string, render RenderFunc) *Component {
	return &Component{Name: name, Render: render}
}

// Type returns the Type of nodes created from this component.
func (c *Component) Type() Type {
	return Type{Comp: c}
}

// Element creates a VNode for this component. Arguments follow the same
// rules as the element factories: Attr values become props, everything
// else becomes children.
func (c *Component) Element(args ...any) *VNode {
	return build(c.Type(), args)
}
