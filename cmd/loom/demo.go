package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/loom/internal/demo"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/host/memhost"
	"github.com/vango-dev/loom/pkg/slice"
	"github.com/vango-dev/loom/pkg/vdom"
)

// mounted is a demo reconciled on an in-memory host.
type mounted struct {
	host      *memhost.Host
	container *memhost.Node
	queue     *slice.Queue
	r         *fiber.Reconciler
}

func demoNames() string {
	names := make([]string, 0, len(demo.Registry))
	for name := range demo.Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func lookupDemo(name string) (func() *vdom.VNode, error) {
	root, ok := demo.Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown demo %q (available: %s)", name, demoNames())
	}
	return root, nil
}

// mountDemo renders the named demo to completion.
func mountDemo(name string, opts ...fiber.Option) (*mounted, error) {
	root, err := lookupDemo(name)
	if err != nil {
		return nil, err
	}
	m := &mounted{host: memhost.New(), queue: slice.NewQueue(slice.Unlimited())}
	m.container = m.host.Container("div")
	m.r = fiber.New(m.host, m.queue, opts...)
	if err := m.r.Render(root(), m.container); err != nil {
		return nil, err
	}
	return m, m.settle()
}

func (m *mounted) settle() error {
	m.queue.Drain(0)
	return m.r.Err()
}

// click dispatches n clicks to the element with the given id.
func (m *mounted) click(id string, n int) error {
	for i := 0; i < n; i++ {
		node := m.container.Find(func(x *memhost.Node) bool {
			return x.Attrs["id"] == id
		})
		if node == nil {
			return fmt.Errorf("no element with id %q", id)
		}
		if err := m.host.Dispatch(node, vdom.Event{Type: "click"}); err != nil {
			return err
		}
		if err := m.settle(); err != nil {
			return err
		}
	}
	return nil
}
