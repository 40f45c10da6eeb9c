package vdom

import "fmt"

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// H creates a node in createElement form. typ is either a tag string or a
// *Component. props may be nil; it is copied, never retained. Children are
// normalized like the variadic arguments of the element factories.
func H(typ any, props Props, children ...any) *VNode {
	var t Type
	switch v := typ.(type) {
	case string:
		t = Tag(v)
	case *Component:
		t = v.Type()
	case Type:
		t = v
	default:
		panic(fmt.Sprintf("vdom: H: unsupported node type %T", typ))
	}

	args := make([]any, 0, len(children)+1)
	if props != nil {
		args = append(args, props)
	}
	args = append(args, children...)
	return build(t, args)
}

// build creates a new VNode of type t from factory arguments.
// Arguments can be: nil, Attr, []Attr, Props, EventHandler, *VNode, []*VNode,
// string, or any scalar (formatted into a text node).
func build(t Type, args []any) *VNode {
	props := make(Props, len(args)+1)
	children := make([]*VNode, 0, len(args))

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			if v.Key != "" && v.Key != ChildrenProp {
				props[v.Key] = v.Value
			}

		case []Attr:
			for _, a := range v {
				if a.Key != "" && a.Key != ChildrenProp {
					props[a.Key] = a.Value
				}
			}

		case Props:
			for k, val := range v {
				if k == ChildrenProp {
					children = appendChildren(children, val)
					continue
				}
				props[k] = val
			}

		case EventHandler:
			props[v.Event] = v.Handler

		default:
			children = appendChildren(children, v)
		}
	}

	props[ChildrenProp] = children
	return &VNode{Type: t, Props: props}
}

// appendChildren normalizes a child argument into nodes.
func appendChildren(children []*VNode, arg any) []*VNode {
	switch v := arg.(type) {
	case nil:
		return children
	case *VNode:
		if v != nil {
			children = append(children, v)
		}
	case []*VNode:
		for _, c := range v {
			if c != nil {
				children = append(children, c)
			}
		}
	case []any:
		for _, c := range v {
			children = appendChildren(children, c)
		}
	case string:
		children = append(children, Text(v))
	case fmt.Stringer:
		children = append(children, Text(v.String()))
	case bool:
		// Booleans render nothing so `cond && node` style helpers stay quiet.
	default:
		children = append(children, Text(fmt.Sprint(v)))
	}
	return children
}

// Document structure elements

func Html(args ...any) *VNode  { return build(Tag("html"), args) }
func Head(args ...any) *VNode  { return build(Tag("head"), args) }
func Body(args ...any) *VNode  { return build(Tag("body"), args) }
func Title(args ...any) *VNode { return build(Tag("title"), args) }

// Content sectioning elements

func Header(args ...any) *VNode  { return build(Tag("header"), args) }
func Footer(args ...any) *VNode  { return build(Tag("footer"), args) }
func Main(args ...any) *VNode    { return build(Tag("main"), args) }
func Nav(args ...any) *VNode     { return build(Tag("nav"), args) }
func Section(args ...any) *VNode { return build(Tag("section"), args) }
func Article(args ...any) *VNode { return build(Tag("article"), args) }
func H1(args ...any) *VNode      { return build(Tag("h1"), args) }
func H2(args ...any) *VNode      { return build(Tag("h2"), args) }
func H3(args ...any) *VNode      { return build(Tag("h3"), args) }

// Text content elements

func Div(args ...any) *VNode  { return build(Tag("div"), args) }
func P(args ...any) *VNode    { return build(Tag("p"), args) }
func Span(args ...any) *VNode { return build(Tag("span"), args) }
func Pre(args ...any) *VNode  { return build(Tag("pre"), args) }
func Ul(args ...any) *VNode   { return build(Tag("ul"), args) }
func Ol(args ...any) *VNode   { return build(Tag("ol"), args) }
func Li(args ...any) *VNode   { return build(Tag("li"), args) }
func Hr(args ...any) *VNode   { return build(Tag("hr"), args) }

// Inline text semantics

func A(args ...any) *VNode      { return build(Tag("a"), args) }
func Strong(args ...any) *VNode { return build(Tag("strong"), args) }
func Em(args ...any) *VNode     { return build(Tag("em"), args) }
func Code(args ...any) *VNode   { return build(Tag("code"), args) }
func Br(args ...any) *VNode     { return build(Tag("br"), args) }

// Form elements

func Form(args ...any) *VNode     { return build(Tag("form"), args) }
func Input(args ...any) *VNode    { return build(Tag("input"), args) }
func Textarea(args ...any) *VNode { return build(Tag("textarea"), args) }
func Select(args ...any) *VNode   { return build(Tag("select"), args) }
func Option(args ...any) *VNode   { return build(Tag("option"), args) }
func Button(args ...any) *VNode   { return build(Tag("button"), args) }
func Label(args ...any) *VNode    { return build(Tag("label"), args) }

// Table elements

func Table(args ...any) *VNode { return build(Tag("table"), args) }
func Thead(args ...any) *VNode { return build(Tag("thead"), args) }
func Tbody(args ...any) *VNode { return build(Tag("tbody"), args) }
func Tr(args ...any) *VNode    { return build(Tag("tr"), args) }
func Th(args ...any) *VNode    { return build(Tag("th"), args) }
func Td(args ...any) *VNode    { return build(Tag("td"), args) }

// Media elements

func Img(args ...any) *VNode { return build(Tag("img"), args) }

// CustomElement creates an element with a custom tag name.
func CustomElement(tag string, args ...any) *VNode {
	return build(Tag(tag), args)
}
