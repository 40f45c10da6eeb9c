package memhost

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/slice"
	"github.com/vango-dev/loom/pkg/vdom"
)

func mount(t *testing.T, v *vdom.VNode) (*Host, *Node, *fiber.Reconciler, *slice.Queue) {
	t.Helper()
	h := New()
	root := h.Container("main")
	q := slice.NewQueue(nil)
	r := fiber.New(h, q)
	require.NoError(t, r.Render(v, root))
	q.Drain(0)
	require.NoError(t, r.Err())
	return h, root, r, q
}

func TestCreateAppliesProps(t *testing.T) {
	h := New()
	hd, err := h.CreateNode(vdom.Tag("a"), vdom.Props{
		"href":            "/x",
		"onclick":         func() {},
		vdom.ChildrenProp: []*vdom.VNode{},
	})
	require.NoError(t, err)

	n := hd.(*Node)
	assert.Equal(t, "a", n.Tag)
	assert.Equal(t, []string{"href"}, n.AttrNames())
	assert.Equal(t, []string{"click"}, n.EventNames())
	assert.Equal(t, []Op{{Kind: OpCreate, Node: n.ID}}, h.Ops())
}

func TestCreateText(t *testing.T) {
	h := New()
	hd, err := h.CreateNode(vdom.TextType, vdom.Text("hi").Props)
	require.NoError(t, err)
	n := hd.(*Node)
	assert.True(t, n.IsText())
	assert.Equal(t, "hi", n.Text)
	assert.Empty(t, n.Attrs)
}

func TestCreateRejectsComponent(t *testing.T) {
	c := vdom.Define("C", func(vdom.Scope, vdom.Props) *vdom.VNode { return nil })
	_, err := New().CreateNode(c.Type(), nil)
	assert.Error(t, err)
}

func TestApplyProps(t *testing.T) {
	h := New()
	clicked := 0
	prev := vdom.Props{"class": "a", "title": "t", "onclick": func() {}}
	next := vdom.Props{"class": "b", "onclick": func() { clicked++ }}
	hd, err := h.CreateNode(vdom.Tag("div"), prev)
	require.NoError(t, err)

	require.NoError(t, h.ApplyProps(hd, prev, next))

	n := hd.(*Node)
	assert.Equal(t, map[string]any{"class": "b"}, n.Attrs)
	require.NoError(t, h.Dispatch(n, vdom.Event{Type: "click"}))
	assert.Equal(t, 1, clicked)

	require.NoError(t, h.ApplyProps(hd, next, vdom.Props{}))
	assert.Empty(t, n.Attrs)
	assert.Empty(t, n.Listeners)
	assert.Error(t, h.Dispatch(n, vdom.Event{Type: "click"}))
}

func TestInsertBeforeAndRemove(t *testing.T) {
	h := New()
	p := h.Container("ul")
	a, _ := h.CreateNode(vdom.Tag("li"), nil)
	b, _ := h.CreateNode(vdom.Tag("li"), nil)
	c, _ := h.CreateNode(vdom.Tag("li"), nil)

	require.NoError(t, h.InsertChild(p, a))
	require.NoError(t, h.InsertChild(p, c))
	require.NoError(t, h.InsertBefore(p, b, c))
	assert.Equal(t, []*Node{a.(*Node), b.(*Node), c.(*Node)}, p.Children)

	require.NoError(t, h.RemoveChild(p, b))
	assert.Equal(t, []*Node{a.(*Node), c.(*Node)}, p.Children)
	assert.Nil(t, b.(*Node).Parent)
	_, ok := h.Node(b.(*Node).ID)
	assert.False(t, ok, "removed node is forgotten")

	assert.Error(t, h.RemoveChild(p, b), "removing a detached node")
	assert.Error(t, h.InsertChild(p, "not a node"))
	assert.Equal(t, 1, h.CountOps(OpRemove))
}

func TestFailOn(t *testing.T) {
	h := New()
	boom := errors.New("boom")
	h.FailOn(OpCreate, boom)
	_, err := h.CreateNode(vdom.Tag("div"), nil)
	assert.ErrorIs(t, err, boom)

	h.FailOn(OpCreate, nil)
	_, err = h.CreateNode(vdom.Tag("div"), nil)
	assert.NoError(t, err)
}

func TestReconcilerFailureSurfacesHostError(t *testing.T) {
	h := New()
	boom := errors.New("boom")
	h.FailOn(OpInsert, boom)
	q := slice.NewQueue(nil)
	r := fiber.New(h, q)
	require.NoError(t, r.Render(vdom.Div(), h.Container("main")))
	q.Drain(0)

	assert.ErrorIs(t, r.Err(), fiber.ErrHostOperation)
	assert.ErrorIs(t, r.Err(), boom)
}

func TestMountAndFind(t *testing.T) {
	_, root, _, _ := mount(t, vdom.Div(
		vdom.H1("Title"),
		vdom.Ul(vdom.Li("one"), vdom.Li("two")),
	))

	assert.Equal(t, "Titleonetwo", root.TextContent())
	assert.Len(t, root.FindAll("li"), 2)
	h1 := root.Find(func(n *Node) bool { return n.Tag == "h1" })
	require.NotNil(t, h1)
	assert.Equal(t, "Title", h1.TextContent())
}

func TestCounterThroughDispatch(t *testing.T) {
	counter := vdom.Define("Counter", func(s vdom.Scope, p vdom.Props) *vdom.VNode {
		n, set := fiber.UseState(s, 0)
		return vdom.Button(vdom.OnClick(func() { set(n + 1) }), vdom.Textf("%d", n))
	})
	h, root, r, q := mount(t, counter.Element())
	h.ResetOps()

	for i := 0; i < 3; i++ {
		btn := root.FindAll("button")[0]
		require.NoError(t, h.Dispatch(btn, vdom.Event{Type: "click"}))
		q.Drain(0)
	}

	assert.Equal(t, "3", root.TextContent())
	assert.Zero(t, h.CountOps(OpCreate))
	assert.Zero(t, h.CountOps(OpRemove))
	assert.Equal(t, 4, r.Stats().Commits)
}
