package memhost

import (
	"sort"
	"strings"

	"github.com/vango-dev/loom/pkg/vdom"
)

// Node is a host node.
type Node struct {
	ID        int
	Tag       string
	Text      string // text nodes only
	Attrs     map[string]any
	Listeners map[string]any // event name → handler
	Parent    *Node
	Children  []*Node
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Tag == vdom.TextTag
}

// Attr returns the attribute value and whether it is set.
func (n *Node) Attr(name string) (any, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// AttrNames returns the attribute names in order.
func (n *Node) AttrNames() []string {
	names := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// EventNames returns the subscribed event names in order.
func (n *Node) EventNames() []string {
	names := make([]string, 0, len(n.Listeners))
	for k := range n.Listeners {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// TextContent concatenates the text of n and all its descendants.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.walk(func(c *Node) bool {
		if c.IsText() {
			b.WriteString(c.Text)
		}
		return true
	})
	return b.String()
}

// Find returns the first node at or below n, in document order, for which
// match returns true.
func (n *Node) Find(match func(*Node) bool) *Node {
	var found *Node
	n.walk(func(c *Node) bool {
		if found == nil && match(c) {
			found = c
		}
		return found == nil
	})
	return found
}

// FindAll returns every node at or below n with the given tag.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	n.walk(func(c *Node) bool {
		if c.Tag == tag {
			out = append(out, c)
		}
		return true
	})
	return out
}

// walk visits n and its descendants in document order until fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) detach(child *Node) bool {
	i := n.indexOf(child)
	if i < 0 {
		return false
	}
	copy(n.Children[i:], n.Children[i+1:])
	n.Children[len(n.Children)-1] = nil
	n.Children = n.Children[:len(n.Children)-1]
	child.Parent = nil
	return true
}
