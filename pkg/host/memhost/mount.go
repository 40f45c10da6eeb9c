package memhost

import (
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/slice"
	"github.com/vango-dev/loom/pkg/vdom"
)

// Mount renders v into a fresh "div" container and runs the reconciler to
// completion on the calling goroutine.
func Mount(v *vdom.VNode, opts ...fiber.Option) (*Host, *Node, error) {
	h := New()
	root := h.Container("div")
	q := slice.NewQueue(slice.Unlimited())
	r := fiber.New(h, q, opts...)
	if err := r.Render(v, root); err != nil {
		return nil, nil, err
	}
	q.Drain(0)
	if err := r.Err(); err != nil {
		return nil, nil, err
	}
	return h, root, nil
}
