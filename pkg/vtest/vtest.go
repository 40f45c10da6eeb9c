package vtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/loom/pkg/host/memhost"
	"github.com/vango-dev/loom/pkg/render"
	"github.com/vango-dev/loom/pkg/vdom"
)

// excerpt bounds the markup quoted in failure messages.
const excerpt = 500

// RenderToString mounts a VNode, components included, and returns the
// HTML. A failed render returns "".
//
//	html := vtest.RenderToString(demo.Counter.Element())
func RenderToString(node *vdom.VNode) string {
	_, root, err := memhost.Mount(node)
	if err != nil {
		return ""
	}
	return render.HTML(root)
}

// mount renders node or stops the test.
func mount(tb testing.TB, node *vdom.VNode) *memhost.Node {
	tb.Helper()
	_, root, err := memhost.Mount(node)
	if err != nil {
		tb.Fatalf("render failed: %v", err)
	}
	return root
}

// ExpectContains checks that the rendered markup contains expected.
//
//	vtest.ExpectContains(t, demo.Counter.Element(), "<h1>Counter</h1>")
func ExpectContains(tb testing.TB, node *vdom.VNode, expected string) {
	tb.Helper()
	html := render.HTML(mount(tb, node))
	if !strings.Contains(html, expected) {
		tb.Errorf("markup does not contain %q:\n%s", expected, truncate(html, excerpt))
	}
}

// ExpectNotContains checks that the rendered markup lacks unexpected.
func ExpectNotContains(tb testing.TB, node *vdom.VNode, unexpected string) {
	tb.Helper()
	html := render.HTML(mount(tb, node))
	if strings.Contains(html, unexpected) {
		tb.Errorf("markup contains %q:\n%s", unexpected, truncate(html, excerpt))
	}
}

// ExpectText checks the concatenated text of the rendered tree.
func ExpectText(tb testing.TB, node *vdom.VNode, expected string) {
	tb.Helper()
	root := mount(tb, node)
	if got := root.TextContent(); !strings.Contains(got, expected) {
		tb.Errorf("text %q does not contain %q", truncate(got, excerpt), expected)
	}
}

// ExpectElement checks that at least one element with tag was rendered.
func ExpectElement(tb testing.TB, node *vdom.VNode, tag string) {
	tb.Helper()
	root := mount(tb, node)
	if len(root.FindAll(tag)) == 0 {
		tb.Errorf("no <%s> element in:\n%s", tag, truncate(render.HTML(root), excerpt))
	}
}

// ExpectAttribute checks that some element carries attr with value.
//
//	vtest.ExpectAttribute(t, demo.Counter.Element(), "class", "counter")
func ExpectAttribute(tb testing.TB, node *vdom.VNode, attr, value string) {
	tb.Helper()
	root := mount(tb, node)
	found := root.Find(func(n *memhost.Node) bool {
		v, ok := n.Attr(attr)
		if !ok {
			return false
		}
		s, ok := vdom.FormatAttr(v)
		return ok && s == value
	})
	if found == nil {
		tb.Errorf("no element with %s=%q in:\n%s", attr, value, truncate(render.HTML(root), excerpt))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
