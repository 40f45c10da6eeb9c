package memhost

import (
	"fmt"

	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/vdom"
)

var (
	_ fiber.HostAdapter     = (*Host)(nil)
	_ fiber.OrderedInserter = (*Host)(nil)
)

// OpKind names a host operation.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpApply  OpKind = "apply"
	OpInsert OpKind = "insert"
	OpRemove OpKind = "remove"
)

// Op is one recorded host operation.
type Op struct {
	Kind   OpKind
	Node   int // created, updated, inserted or removed node
	Parent int // insert and remove only
	Before int // insert before this node; 0 appends
}

func (o Op) String() string {
	switch o.Kind {
	case OpInsert:
		if o.Before != 0 {
			return fmt.Sprintf("insert %d into %d before %d", o.Node, o.Parent, o.Before)
		}
		return fmt.Sprintf("insert %d into %d", o.Node, o.Parent)
	case OpRemove:
		return fmt.Sprintf("remove %d from %d", o.Node, o.Parent)
	default:
		return fmt.Sprintf("%s %d", o.Kind, o.Node)
	}
}

// Host is an in-memory fiber.HostAdapter.
type Host struct {
	nextID int
	nodes  map[int]*Node
	ops    []Op
	fail   map[OpKind]error
}

// New creates an empty host.
func New() *Host {
	return &Host{
		nodes: make(map[int]*Node),
		fail:  make(map[OpKind]error),
	}
}

func (h *Host) newNode(tag string) *Node {
	h.nextID++
	n := &Node{
		ID:        h.nextID,
		Tag:       tag,
		Attrs:     make(map[string]any),
		Listeners: make(map[string]any),
	}
	h.nodes[n.ID] = n
	return n
}

// Container creates a detached node to render into.
func (h *Host) Container(tag string) *Node {
	return h.newNode(tag)
}

// Node returns the node with the given ID.
func (h *Host) Node(id int) (*Node, bool) {
	n, ok := h.nodes[id]
	return n, ok
}

// Len returns the number of nodes created, containers included, that have
// not been removed.
func (h *Host) Len() int {
	return len(h.nodes)
}

// FailOn makes every later operation of kind fail with err. A nil err clears
// the failure.
func (h *Host) FailOn(kind OpKind, err error) {
	if err == nil {
		delete(h.fail, kind)
		return
	}
	h.fail[kind] = err
}

// Ops returns the operations recorded since the last ResetOps.
func (h *Host) Ops() []Op {
	return h.ops
}

// ResetOps clears the operation log.
func (h *Host) ResetOps() {
	h.ops = nil
}

// CountOps returns how many recorded operations are of kind.
func (h *Host) CountOps(kind OpKind) int {
	n := 0
	for _, op := range h.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func (h *Host) check(kind OpKind) error {
	return h.fail[kind]
}

// CreateNode implements fiber.HostAdapter.
func (h *Host) CreateNode(t vdom.Type, props vdom.Props) (fiber.Handle, error) {
	if err := h.check(OpCreate); err != nil {
		return nil, err
	}
	if t.IsComponent() {
		return nil, fmt.Errorf("memhost: cannot create a node for component %s", t)
	}
	n := h.newNode(t.Tag)
	h.apply(n, nil, props)
	h.ops = append(h.ops, Op{Kind: OpCreate, Node: n.ID})
	return n, nil
}

// ApplyProps implements fiber.HostAdapter.
func (h *Host) ApplyProps(hd fiber.Handle, prev, next vdom.Props) error {
	if err := h.check(OpApply); err != nil {
		return err
	}
	n, err := asNode(hd)
	if err != nil {
		return err
	}
	h.apply(n, prev, next)
	h.ops = append(h.ops, Op{Kind: OpApply, Node: n.ID})
	return nil
}

func (h *Host) apply(n *Node, prev, next vdom.Props) {
	for _, c := range vdom.DiffProps(prev, next) {
		switch {
		case n.IsText():
			if c.Name == vdom.NodeValueProp {
				if c.Removed {
					n.Text = ""
				} else {
					n.Text = fmt.Sprint(c.Value)
				}
			}
		case c.Event && c.Removed:
			delete(n.Listeners, c.EventType())
		case c.Event:
			n.Listeners[c.EventType()] = c.Value
		case c.Removed:
			delete(n.Attrs, c.Name)
		default:
			n.Attrs[c.Name] = c.Value
		}
	}
}

// InsertChild implements fiber.HostAdapter.
func (h *Host) InsertChild(parent, child fiber.Handle) error {
	return h.insert(parent, child, nil)
}

// InsertBefore implements fiber.OrderedInserter.
func (h *Host) InsertBefore(parent, child, before fiber.Handle) error {
	return h.insert(parent, child, before)
}

func (h *Host) insert(parent, child, before fiber.Handle) error {
	if err := h.check(OpInsert); err != nil {
		return err
	}
	p, err := asNode(parent)
	if err != nil {
		return err
	}
	c, err := asNode(child)
	if err != nil {
		return err
	}
	if c.Parent != nil {
		c.Parent.detach(c)
	}

	op := Op{Kind: OpInsert, Node: c.ID, Parent: p.ID}
	at := len(p.Children)
	if before != nil {
		b, err := asNode(before)
		if err != nil {
			return err
		}
		if at = p.indexOf(b); at < 0 {
			return fmt.Errorf("memhost: node %d is not a child of %d", b.ID, p.ID)
		}
		op.Before = b.ID
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[at+1:], p.Children[at:])
	p.Children[at] = c
	c.Parent = p
	h.ops = append(h.ops, op)
	return nil
}

// RemoveChild implements fiber.HostAdapter. The removed subtree is forgotten.
func (h *Host) RemoveChild(parent, child fiber.Handle) error {
	if err := h.check(OpRemove); err != nil {
		return err
	}
	p, err := asNode(parent)
	if err != nil {
		return err
	}
	c, err := asNode(child)
	if err != nil {
		return err
	}
	if !p.detach(c) {
		return fmt.Errorf("memhost: node %d is not a child of %d", c.ID, p.ID)
	}
	c.walk(func(n *Node) bool {
		delete(h.nodes, n.ID)
		return true
	})
	h.ops = append(h.ops, Op{Kind: OpRemove, Node: c.ID, Parent: p.ID})
	return nil
}

// Dispatch invokes the listener n has for ev.Type.
func (h *Host) Dispatch(n *Node, ev vdom.Event) error {
	handler, ok := n.Listeners[ev.Type]
	if !ok {
		return fmt.Errorf("memhost: node %d has no %q listener", n.ID, ev.Type)
	}
	return vdom.Invoke(handler, ev)
}

func asNode(h fiber.Handle) (*Node, error) {
	n, ok := h.(*Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("memhost: foreign handle %T", h)
	}
	return n, nil
}
