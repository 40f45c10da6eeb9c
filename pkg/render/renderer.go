package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/loom/pkg/host/memhost"
	"github.com/vango-dev/loom/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Inline elements stay on one line.
	Pretty bool

	// Indent is the string used per indentation level in pretty mode.
	// Defaults to two spaces.
	Indent string

	// NodeIDs adds data-lid and data-on-* attributes for live clients.
	NodeIDs bool
}

// Renderer writes memhost trees as HTML. It holds no per-render state and
// may be shared.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a Renderer.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders n and its subtree.
func (r *Renderer) RenderToString(n *memhost.Node) (string, error) {
	var b strings.Builder
	if err := r.RenderToWriter(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderChildren renders the children of n without n itself, which is how
// a render container is serialized.
func (r *Renderer) RenderChildren(n *memhost.Node) (string, error) {
	var b strings.Builder
	if n != nil {
		w := &errWriter{w: &b}
		for _, c := range n.Children {
			r.renderNode(w, c, 0)
		}
		if w.err != nil {
			return "", w.err
		}
	}
	return b.String(), nil
}

// RenderToWriter streams n and its subtree to w.
func (r *Renderer) RenderToWriter(w io.Writer, n *memhost.Node) error {
	ew := &errWriter{w: w}
	r.renderNode(ew, n, 0)
	return ew.err
}

// HTML renders the children of container compactly. Errors can only come
// from the writer, and a strings.Builder does not fail.
func HTML(container *memhost.Node) string {
	s, _ := NewRenderer(RendererConfig{}).RenderChildren(container)
	return s
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) WriteString(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (r *Renderer) renderNode(w *errWriter, n *memhost.Node, depth int) {
	if n == nil {
		return
	}
	if n.IsText() {
		w.WriteString(escapeHTML(n.Text))
		return
	}
	r.renderElement(w, n, depth)
}

func (r *Renderer) renderElement(w *errWriter, n *memhost.Node, depth int) {
	pretty := r.config.Pretty
	if pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	w.WriteString("<")
	w.WriteString(n.Tag)
	r.renderAttributes(w, n)
	w.WriteString(">")

	if isVoidElement(n.Tag) {
		if pretty {
			w.WriteString("\n")
		}
		return
	}

	block := pretty && len(n.Children) > 0 && !isInlineElement(n.Tag) && !onlyText(n)
	if block {
		w.WriteString("\n")
	}
	for _, c := range n.Children {
		if block && c.IsText() {
			r.writeIndent(w, depth+1)
			r.renderNode(w, c, depth+1)
			w.WriteString("\n")
			continue
		}
		r.renderNode(w, c, depth+1)
	}
	if block {
		r.writeIndent(w, depth)
	}

	w.printf("</%s>", n.Tag)
	if pretty {
		w.WriteString("\n")
	}
}

func onlyText(n *memhost.Node) bool {
	for _, c := range n.Children {
		if !c.IsText() {
			return false
		}
	}
	return true
}

// renderAttributes writes attributes in name order, then live markers.
func (r *Renderer) renderAttributes(w *errWriter, n *memhost.Node) {
	for _, name := range n.AttrNames() {
		value := n.Attrs[name]

		if isBooleanAttr(name) {
			if b, ok := value.(bool); ok {
				if b {
					w.WriteString(" ")
					w.WriteString(name)
				}
				continue
			}
		}

		s, ok := vdom.FormatAttr(value)
		if !ok {
			continue
		}
		w.printf(` %s="%s"`, name, escapeAttr(s))
	}

	if !r.config.NodeIDs {
		return
	}
	w.printf(` data-lid="%d"`, n.ID)
	for _, ev := range n.EventNames() {
		w.printf(` data-on-%s="true"`, ev)
	}
}

func (r *Renderer) writeIndent(w *errWriter, depth int) {
	for i := 0; i < depth; i++ {
		w.WriteString(r.config.Indent)
	}
}
