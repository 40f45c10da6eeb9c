package fiber

import (
	"fmt"

	lerrors "github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/vdom"
)

// Sentinel errors. Match with errors.Is; the returned errors carry detail.
var (
	// ErrInvalidHookContext: a hook ran outside its component's render, or
	// the hook sequence differs from the previous render.
	ErrInvalidHookContext error = lerrors.Sentinel("E101")

	// ErrHostOperation: the host adapter rejected an operation.
	ErrHostOperation error = lerrors.Sentinel("E102")

	// ErrNoContainer: Render was called without a container.
	ErrNoContainer error = lerrors.Sentinel("E103")

	// ErrComponentPanic: a component panicked while rendering.
	ErrComponentPanic error = lerrors.Sentinel("E104")
)

func hookContextError(format string, args ...any) error {
	return lerrors.New("E101").WithDetailf(format, args...)
}

func hostError(op string, t vdom.Type, err error) error {
	return lerrors.New("E102").
		WithOp(op).
		WithDetailf("node %s", t).
		Wrap(err)
}

func componentPanicError(c *vdom.Component, v any) error {
	name := componentName(c)
	if err, ok := v.(error); ok {
		return lerrors.New("E104").WithDetailf("component %s", name).Wrap(err)
	}
	return lerrors.New("E104").WithDetail(fmt.Sprintf("component %s: %v", name, v))
}

func hostPanicError(v any) error {
	e := lerrors.New("E102").WithOp("commit")
	if err, ok := v.(error); ok {
		return e.WithDetail("host adapter panicked").Wrap(err)
	}
	return e.WithDetail(fmt.Sprintf("host adapter panicked: %v", v))
}
