package vtest_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vango-dev/loom/internal/demo"
	"github.com/vango-dev/loom/pkg/slice"
	"github.com/vango-dev/loom/pkg/vdom"
	"github.com/vango-dev/loom/pkg/vtest"
)

func TestHarnessCounter(t *testing.T) {
	h := vtest.New(t).Mount(demo.Counter.Element(vdom.Prop("start", 5)))

	if got := h.Find("#count").TextContent(); got != "5" {
		t.Fatalf("count = %q, want 5", got)
	}
	h.Click(h.Find("#inc"))
	h.Click(h.Find("#inc"))
	h.Click(h.Find("#dec"))

	if got := h.Find("#count").TextContent(); got != "6" {
		t.Errorf("count = %q, want 6", got)
	}
	if n := len(h.Commits()); n != 4 {
		t.Errorf("commits = %d, want 4", n)
	}
	last := h.Commits()[len(h.Commits())-1]
	if last.Placed != 0 || last.Deleted != 0 {
		t.Errorf("click commit placed %d deleted %d, want updates only", last.Placed, last.Deleted)
	}
}

func TestHarnessTodo(t *testing.T) {
	h := vtest.New(t).Mount(demo.Todo.Element())

	add := func(text string) {
		h.Input(h.Find("#draft"), text)
		h.Submit(h.Find("form"))
	}
	add("milk")
	add("eggs")
	add("   ")

	items := h.FindAll("li")
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2 (%s)", len(items), h.HTML())
	}
	if got := h.Find("#draft").Attrs["value"]; got != "" {
		t.Errorf("draft = %v, want empty after submit", got)
	}

	h.Click(items[1])
	if got := h.Find("#summary").TextContent(); got != "1 of 2 done" {
		t.Errorf("summary = %q", got)
	}
	if got := h.FindAll("li")[1].Attrs["class"]; got != "item done" {
		t.Errorf("class = %v, want item done", got)
	}
}

func TestHarnessStep(t *testing.T) {
	h := vtest.New(t, vtest.WithBudget(slice.Units(2)))
	if err := h.R.Render(demo.Grid(3, 3), h.Root); err != nil {
		t.Fatal(err)
	}

	steps := 0
	for h.Step() {
		steps++
		if !h.R.Idle() && len(h.Root.Children) != 0 {
			t.Fatal("host changed before the render finished")
		}
	}
	if steps < 2 {
		t.Errorf("steps = %d, want the render split across slices", steps)
	}
	if got := len(h.FindAll("td")); got != 9 {
		t.Errorf("cells = %d, want 9", got)
	}
}

func TestFindByTag(t *testing.T) {
	h := vtest.New(t).Mount(vdom.Div(vdom.Span(vdom.Text("a")), vdom.Span(vdom.Text("b"))))
	if got := h.Find("span").TextContent(); got != "a" {
		t.Errorf("first span = %q, want a", got)
	}
	if h.Text() != "ab" {
		t.Errorf("Text() = %q, want ab", h.Text())
	}
}

func TestExpectHelpers(t *testing.T) {
	node := demo.Counter.Element()
	vtest.ExpectContains(t, node, "Counter")
	vtest.ExpectNotContains(t, node, "NotFound")
	vtest.ExpectElement(t, node, "button")
	vtest.ExpectAttribute(t, node, "class", "counter")
	vtest.ExpectText(t, node, "Counter-0+")
}

// recordTB collects failures instead of failing the test.
type recordTB struct {
	testing.TB
	errs []string
}

func (r *recordTB) Helper() {}

func (r *recordTB) Errorf(format string, args ...any) {
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

func TestExpectHelpersReportMisses(t *testing.T) {
	node := demo.Counter.Element()
	rec := &recordTB{}
	vtest.ExpectContains(rec, node, "<table>")
	vtest.ExpectNotContains(rec, node, "<h1>")
	vtest.ExpectElement(rec, node, "table")
	vtest.ExpectAttribute(rec, node, "id", "nope")
	vtest.ExpectText(rec, node, "Todo")
	if len(rec.errs) != 5 {
		t.Fatalf("failures = %d, want 5: %q", len(rec.errs), rec.errs)
	}
	if !strings.Contains(rec.errs[3], `id="nope"`) {
		t.Errorf("attribute failure = %q", rec.errs[3])
	}
}

func TestRenderToStringFailure(t *testing.T) {
	bad := vdom.Define("Bad", func(s vdom.Scope, p vdom.Props) *vdom.VNode { panic("x") })
	if got := vtest.RenderToString(bad.Element()); got != "" {
		t.Errorf("RenderToString = %q, want empty on failure", got)
	}
}
