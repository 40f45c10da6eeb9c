package fiber

import "github.com/vango-dev/loom/pkg/vdom"

// Handle is a host node owned by the HostAdapter. The reconciler only
// stores and passes handles back; it never inspects them.
type Handle = any

// HostAdapter turns abstract tree operations into concrete host mutations.
type HostAdapter interface {
	// CreateNode creates a detached host node with props applied.
	CreateNode(t vdom.Type, props vdom.Props) (Handle, error)

	// ApplyProps moves a node from prev to next props: props missing from
	// next are removed, every prop of next is (re)applied.
	ApplyProps(h Handle, prev, next vdom.Props) error

	// InsertChild appends child to parent.
	InsertChild(parent, child Handle) error

	// RemoveChild detaches child from parent.
	RemoveChild(parent, child Handle) error
}

// OrderedInserter is implemented by hosts that can insert before an
// existing child. When available the committer uses it so that nodes placed
// in the middle of a list land at their position instead of at the end.
type OrderedInserter interface {
	InsertBefore(parent, child, before Handle) error
}
