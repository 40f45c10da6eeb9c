package server

import (
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/host/memhost"
	"github.com/vango-dev/loom/pkg/host/remote"
	"github.com/vango-dev/loom/pkg/vdom"
)

// pair is a mirrorHost handle: the remote node and its in-memory copy.
type pair struct {
	remote fiber.Handle
	mem    fiber.Handle
}

// mirrorHost forwards every operation to the remote host and repeats it on
// an in-memory host. The remote host is authoritative: its errors stop the
// operation before the mirror sees it.
type mirrorHost struct {
	remote *remote.Host
	mem    *memhost.Host
	root   pair
}

var (
	_ fiber.HostAdapter     = (*mirrorHost)(nil)
	_ fiber.OrderedInserter = (*mirrorHost)(nil)
)

func newMirrorHost(r *remote.Host) *mirrorHost {
	mem := memhost.New()
	return &mirrorHost{
		remote: r,
		mem:    mem,
		root:   pair{remote: r.Root(), mem: mem.Container("div")},
	}
}

func (m *mirrorHost) container() *memhost.Node {
	return m.root.mem.(*memhost.Node)
}

func (m *mirrorHost) CreateNode(t vdom.Type, props vdom.Props) (fiber.Handle, error) {
	r, err := m.remote.CreateNode(t, props)
	if err != nil {
		return nil, err
	}
	n, err := m.mem.CreateNode(t, props)
	if err != nil {
		return nil, err
	}
	return pair{remote: r, mem: n}, nil
}

func (m *mirrorHost) ApplyProps(hd fiber.Handle, prev, next vdom.Props) error {
	p := hd.(pair)
	if err := m.remote.ApplyProps(p.remote, prev, next); err != nil {
		return err
	}
	return m.mem.ApplyProps(p.mem, prev, next)
}

func (m *mirrorHost) InsertChild(parent, child fiber.Handle) error {
	p, c := parent.(pair), child.(pair)
	if err := m.remote.InsertChild(p.remote, c.remote); err != nil {
		return err
	}
	return m.mem.InsertChild(p.mem, c.mem)
}

func (m *mirrorHost) InsertBefore(parent, child, before fiber.Handle) error {
	p, c, b := parent.(pair), child.(pair), before.(pair)
	if err := m.remote.InsertBefore(p.remote, c.remote, b.remote); err != nil {
		return err
	}
	return m.mem.InsertBefore(p.mem, c.mem, b.mem)
}

func (m *mirrorHost) RemoveChild(parent, child fiber.Handle) error {
	p, c := parent.(pair), child.(pair)
	if err := m.remote.RemoveChild(p.remote, c.remote); err != nil {
		return err
	}
	return m.mem.RemoveChild(p.mem, c.mem)
}
