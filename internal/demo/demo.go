// Package demo holds the components the loom command renders and serves.
package demo

import (
	"strings"

	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/vdom"
)

// Counter shows a number with increment and decrement buttons. The "start"
// prop sets the initial count.
var Counter = vdom.Define("Counter", func(s vdom.Scope, p vdom.Props) *vdom.VNode {
	n, set := fiber.UseState(s, p.Int("start"))
	return vdom.Div(vdom.Class("counter"),
		vdom.H1(vdom.Text("Counter")),
		vdom.Button(vdom.ID("dec"), vdom.OnClick(func() { set(n - 1) }), vdom.Text("-")),
		vdom.Span(vdom.ID("count"), vdom.Textf("%d", n)),
		vdom.Button(vdom.ID("inc"), vdom.OnClick(func() { set(n + 1) }), vdom.Text("+")),
	)
})

// Item is one todo entry.
type Item struct {
	Text string
	Done bool
}

// Todo is a small list with an input, a toggle per item and a summary.
var Todo = vdom.Define("Todo", func(s vdom.Scope, p vdom.Props) *vdom.VNode {
	items, update := fiber.UseUpdater(s, []Item(nil))
	draft, setDraft := fiber.UseState(s, "")

	add := func() {
		text := strings.TrimSpace(draft)
		if text == "" {
			return
		}
		update(func(xs []Item) []Item {
			out := make([]Item, len(xs), len(xs)+1)
			copy(out, xs)
			return append(out, Item{Text: text})
		})
		setDraft("")
	}
	toggle := func(i int) func() {
		return func() {
			update(func(xs []Item) []Item {
				out := append([]Item(nil), xs...)
				out[i].Done = !out[i].Done
				return out
			})
		}
	}

	done := 0
	for _, it := range items {
		if it.Done {
			done++
		}
	}

	return vdom.Div(vdom.Class("todo"),
		vdom.Form(vdom.OnSubmit(add),
			vdom.Input(vdom.ID("draft"), vdom.Value(draft), vdom.OnInput(setDraft)),
			vdom.Button(vdom.ID("add"), vdom.InputType("submit"), vdom.Text("Add")),
		),
		vdom.Ul(vdom.Range(items, func(it Item, i int) *vdom.VNode {
			return TodoItem.Element(
				vdom.Prop("text", it.Text),
				vdom.Prop("done", it.Done),
				vdom.Prop("toggle", toggle(i)),
			)
		})),
		vdom.P(vdom.ID("summary"), vdom.Textf("%d of %d done", done, len(items))),
	)
})

// TodoItem renders one entry. Clicking it calls the "toggle" prop.
var TodoItem = vdom.Define("TodoItem", func(s vdom.Scope, p vdom.Props) *vdom.VNode {
	toggle, _ := p["toggle"].(func())
	class := "item"
	if done, _ := p["done"].(bool); done {
		class = "item done"
	}
	return vdom.Li(vdom.Class(class), vdom.OnClick(toggle), vdom.Text(p.String("text")))
})

// Grid renders rows x cols cells. The command's bench uses it as a
// synthetic tree.
func Grid(rows, cols int) *vdom.VNode {
	return vdom.Table(vdom.Tbody(vdom.Repeat(rows, func(r int) *vdom.VNode {
		return vdom.Tr(vdom.Repeat(cols, func(c int) *vdom.VNode {
			return vdom.Td(vdom.Textf("%d:%d", r, c))
		}))
	})))
}

// Registry maps demo names to root elements.
var Registry = map[string]func() *vdom.VNode{
	"counter": func() *vdom.VNode { return Counter.Element() },
	"todo":    func() *vdom.VNode { return Todo.Element() },
}
