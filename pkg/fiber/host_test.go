package fiber

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/loom/pkg/vdom"
)

// fakeNode is a host node of fakeHost.
type fakeNode struct {
	id       int
	typ      vdom.Type
	attrs    map[string]any
	parent   *fakeNode
	children []*fakeNode
}

// fakeHost records every operation and can fail on demand.
type fakeHost struct {
	nextID  int
	ops     []string
	failOp  string // operation name to fail ("create", "insert", ...)
	panicOp string // operation name to panic in
	ordered bool   // whether InsertBefore is used
}

var errInjected = errors.New("injected failure")

func newFakeHost() *fakeHost { return &fakeHost{} }

func (h *fakeHost) container() *fakeNode {
	h.nextID++
	return &fakeNode{id: h.nextID, typ: vdom.Tag("container"), attrs: map[string]any{}}
}

func (h *fakeHost) fail(op string) error {
	if h.panicOp == op {
		panic("host exploded in " + op)
	}
	if h.failOp == op {
		return errInjected
	}
	return nil
}

func (h *fakeHost) CreateNode(t vdom.Type, props vdom.Props) (Handle, error) {
	if err := h.fail("create"); err != nil {
		return nil, err
	}
	h.nextID++
	n := &fakeNode{id: h.nextID, typ: t, attrs: map[string]any{}}
	for _, c := range vdom.DiffProps(nil, props) {
		n.attrs[c.Name] = c.Value
	}
	h.ops = append(h.ops, fmt.Sprintf("create %s#%d", t, n.id))
	return n, nil
}

func (h *fakeHost) ApplyProps(hd Handle, prev, next vdom.Props) error {
	if err := h.fail("apply"); err != nil {
		return err
	}
	n := hd.(*fakeNode)
	for _, c := range vdom.DiffProps(prev, next) {
		if c.Removed {
			delete(n.attrs, c.Name)
			continue
		}
		n.attrs[c.Name] = c.Value
	}
	h.ops = append(h.ops, fmt.Sprintf("apply #%d", n.id))
	return nil
}

func (h *fakeHost) InsertChild(parent, child Handle) error {
	if err := h.fail("insert"); err != nil {
		return err
	}
	p, c := parent.(*fakeNode), child.(*fakeNode)
	c.parent = p
	p.children = append(p.children, c)
	h.ops = append(h.ops, fmt.Sprintf("insert #%d<#%d", p.id, c.id))
	return nil
}

func (h *fakeHost) RemoveChild(parent, child Handle) error {
	if err := h.fail("remove"); err != nil {
		return err
	}
	p, c := parent.(*fakeNode), child.(*fakeNode)
	for i, x := range p.children {
		if x == c {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	c.parent = nil
	h.ops = append(h.ops, fmt.Sprintf("remove #%d>#%d", p.id, c.id))
	return nil
}

// orderedHost adds InsertBefore to fakeHost.
type orderedHost struct {
	*fakeHost
}

func (h orderedHost) InsertBefore(parent, child, before Handle) error {
	if err := h.fail("insert"); err != nil {
		return err
	}
	p, c, b := parent.(*fakeNode), child.(*fakeNode), before.(*fakeNode)
	for i, x := range p.children {
		if x == b {
			c.parent = p
			p.children = append(p.children[:i], append([]*fakeNode{c}, p.children[i:]...)...)
			h.ops = append(h.ops, fmt.Sprintf("insert #%d<#%d before #%d", p.id, c.id, b.id))
			return nil
		}
	}
	return fmt.Errorf("node #%d is not a child of #%d", b.id, p.id)
}

// markup renders the children of n compactly:
// div{class=x}[#text"hi",span].
func markup(n *fakeNode) string {
	var b strings.Builder
	for i, c := range n.children {
		if i > 0 {
			b.WriteByte(',')
		}
		writeMarkup(&b, c)
	}
	return b.String()
}

func writeMarkup(b *strings.Builder, n *fakeNode) {
	if n.typ.IsText() {
		fmt.Fprintf(b, "%q", n.attrs[vdom.NodeValueProp])
		return
	}
	b.WriteString(n.typ.String())
	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		if vdom.IsEventProp(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(b, "%s=%v", k, n.attrs[k])
		}
		b.WriteByte('}')
	}
	if len(n.children) > 0 {
		b.WriteByte('[')
		b.WriteString(markup(n))
		b.WriteByte(']')
	}
}

func (h *fakeHost) reset() { h.ops = nil }

func (h *fakeHost) count(prefix string) int {
	n := 0
	for _, op := range h.ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}
