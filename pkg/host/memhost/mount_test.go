package memhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/vdom"
)

func TestMount(t *testing.T) {
	_, root, err := Mount(vdom.Ul(vdom.Li(vdom.Text("a")), vdom.Li(vdom.Text("b"))))
	require.NoError(t, err)

	assert.Equal(t, "div", root.Tag)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "ab", root.TextContent())
	assert.Len(t, root.FindAll("li"), 2)
}

func TestMountReportsRenderFailure(t *testing.T) {
	bad := vdom.Define("Bad", func(s vdom.Scope, p vdom.Props) *vdom.VNode {
		panic("boom")
	})
	_, _, err := Mount(bad.Element())
	assert.ErrorIs(t, err, fiber.ErrComponentPanic)
}
