package remote

import (
	"fmt"

	lerrors "github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/protocol"
	"github.com/vango-dev/loom/pkg/vdom"
)

var (
	_ fiber.HostAdapter     = (*Host)(nil)
	_ fiber.OrderedInserter = (*Host)(nil)
)

// RootID is the ID of the client's mount element.
const RootID uint32 = 1

// node is the server-side shadow of a client node.
type node struct {
	id        uint32
	text      bool
	parent    *node
	listeners map[string]any
}

// Host records host operations for a remote client.
type Host struct {
	root    *node
	nextID  uint32
	nodes   map[uint32]*node
	pending []protocol.Op
	sent    int
}

// New creates a host with an empty root.
func New() *Host {
	root := &node{id: RootID, listeners: map[string]any{}}
	return &Host{
		root:   root,
		nextID: RootID,
		nodes:  map[uint32]*node{RootID: root},
	}
}

// Root returns the handle of the client's mount element.
func (h *Host) Root() fiber.Handle {
	return h.root
}

// Pending returns the number of operations not yet flushed.
func (h *Host) Pending() int {
	return len(h.pending)
}

// Sent returns the number of operations flushed so far.
func (h *Host) Sent() int {
	return h.sent
}

// Flush returns and clears the pending operations.
func (h *Host) Flush() []protocol.Op {
	ops := h.pending
	h.pending = nil
	h.sent += len(ops)
	return ops
}

// FlushFrame returns the pending operations as an encoded FrameOps, or nil
// if nothing is pending.
func (h *Host) FlushFrame() []byte {
	if len(h.pending) == 0 {
		return nil
	}
	ops := h.Flush()
	return protocol.NewFrame(protocol.FrameOps, protocol.EncodeOps(ops)).Encode()
}

// Len returns the number of live nodes, the root included.
func (h *Host) Len() int {
	return len(h.nodes)
}

func (h *Host) emit(op protocol.Op) {
	h.pending = append(h.pending, op)
}

// CreateNode implements fiber.HostAdapter.
func (h *Host) CreateNode(t vdom.Type, props vdom.Props) (fiber.Handle, error) {
	if t.IsComponent() {
		return nil, fmt.Errorf("remote: cannot create a node for component %s", t)
	}
	h.nextID++
	n := &node{id: h.nextID, text: t.IsText(), listeners: map[string]any{}}
	h.nodes[n.id] = n
	if n.text {
		h.emit(protocol.Op{Code: protocol.OpCreateText, ID: n.id, Value: props.String(vdom.NodeValueProp)})
		return n, nil
	}
	h.emit(protocol.Op{Code: protocol.OpCreate, ID: n.id, Key: t.Tag})
	h.apply(n, nil, props)
	return n, nil
}

// ApplyProps implements fiber.HostAdapter.
func (h *Host) ApplyProps(hd fiber.Handle, prev, next vdom.Props) error {
	n, err := h.lookup(hd)
	if err != nil {
		return err
	}
	if n.text {
		if prev.String(vdom.NodeValueProp) != next.String(vdom.NodeValueProp) {
			h.emit(protocol.Op{Code: protocol.OpSetText, ID: n.id, Value: next.String(vdom.NodeValueProp)})
		}
		return nil
	}
	h.apply(n, prev, next)
	return nil
}

// apply emits the attribute and listener operations for prev → next.
// Listener handlers are swapped server-side without traffic; the client
// only learns about subscribe and unsubscribe.
func (h *Host) apply(n *node, prev, next vdom.Props) {
	for _, c := range vdom.DiffProps(prev, next) {
		switch {
		case c.Event && c.Removed:
			if _, ok := n.listeners[c.EventType()]; ok {
				delete(n.listeners, c.EventType())
				h.emit(protocol.Op{Code: protocol.OpUnlisten, ID: n.id, Key: c.EventType()})
			}
		case c.Event:
			if _, ok := n.listeners[c.EventType()]; !ok {
				h.emit(protocol.Op{Code: protocol.OpListen, ID: n.id, Key: c.EventType()})
			}
			n.listeners[c.EventType()] = c.Value
		case c.Removed:
			h.emit(protocol.Op{Code: protocol.OpRemoveAttr, ID: n.id, Key: c.Name})
		default:
			h.setAttr(n, c.Name, c.Value, prev)
		}
	}
}

// setAttr emits the operation for one attribute unless the client already
// has that value.
func (h *Host) setAttr(n *node, name string, value any, prev vdom.Props) {
	old, had := prev[name]
	if b, ok := value.(bool); ok {
		switch {
		case b && old != true:
			h.emit(protocol.Op{Code: protocol.OpSetAttr, ID: n.id, Key: name})
		case !b && had && old != false:
			h.emit(protocol.Op{Code: protocol.OpRemoveAttr, ID: n.id, Key: name})
		}
		return
	}
	s, ok := vdom.FormatAttr(value)
	if !ok {
		return
	}
	if had {
		if was, ok := vdom.FormatAttr(old); ok && was == s {
			return
		}
	}
	h.emit(protocol.Op{Code: protocol.OpSetAttr, ID: n.id, Key: name, Value: s})
}

// InsertChild implements fiber.HostAdapter.
func (h *Host) InsertChild(parent, child fiber.Handle) error {
	return h.InsertBefore(parent, child, nil)
}

// InsertBefore implements fiber.OrderedInserter.
func (h *Host) InsertBefore(parent, child, before fiber.Handle) error {
	p, err := h.lookup(parent)
	if err != nil {
		return err
	}
	c, err := h.lookup(child)
	if err != nil {
		return err
	}
	op := protocol.Op{Code: protocol.OpInsert, ID: c.id, Parent: p.id}
	if before != nil {
		b, err := h.lookup(before)
		if err != nil {
			return err
		}
		op.Before = b.id
	}
	c.parent = p
	h.emit(op)
	return nil
}

// RemoveChild implements fiber.HostAdapter. The client drops the whole
// subtree; the server forgets every node below child.
func (h *Host) RemoveChild(parent, child fiber.Handle) error {
	p, err := h.lookup(parent)
	if err != nil {
		return err
	}
	c, err := h.lookup(child)
	if err != nil {
		return err
	}
	if c.parent != p {
		return fmt.Errorf("remote: node %d is not a child of %d", c.id, p.id)
	}
	h.forget(c)
	h.emit(protocol.Op{Code: protocol.OpRemove, ID: c.id, Parent: p.id})
	return nil
}

// forget drops n and every node whose ancestor chain reaches n.
func (h *Host) forget(n *node) {
	for id, m := range h.nodes {
		for a := m; a != nil; a = a.parent {
			if a == n {
				delete(h.nodes, id)
				break
			}
		}
	}
	n.parent = nil
}

func (h *Host) lookup(hd fiber.Handle) (*node, error) {
	n, ok := hd.(*node)
	if !ok || n == nil {
		return nil, fmt.Errorf("remote: foreign handle %T", hd)
	}
	if h.nodes[n.id] != n {
		return nil, fmt.Errorf("remote: node %d does not belong to this host", n.id)
	}
	return n, nil
}

// Dispatch delivers a client event to the listener its node currently has.
func (h *Host) Dispatch(ev protocol.Event) error {
	n, ok := h.nodes[ev.NodeID]
	if !ok {
		return lerrors.New("E303").WithDetailf("node %d does not exist", ev.NodeID)
	}
	handler, ok := n.listeners[ev.Name]
	if !ok {
		return lerrors.New("E303").WithDetailf("node %d has no %q listener", ev.NodeID, ev.Name)
	}
	return vdom.Invoke(handler, vdom.Event{Type: ev.Name, Value: ev.Value})
}
