// Package vtest provides testing helpers for loom components.
//
// # Harness
//
// A Harness mounts a tree on an in-memory host and runs every slice on the
// test goroutine, so interactions are deterministic:
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.New(t).Mount(demo.Counter.Element())
//	    h.Click(h.Find("#inc"))
//	    if got := h.Find("#count").TextContent(); got != "1" {
//	        t.Errorf("count = %q, want 1", got)
//	    }
//	}
//
// WithBudget(slice.Units(n)) limits each slice to n work units; Step then
// runs one slice at a time to observe interrupted renders.
//
// # Render Assertions
//
// Assert on rendered HTML output:
//
//	vtest.ExpectContains(t, demo.Counter.Element(), "Counter")
//	vtest.ExpectNotContains(t, demo.Counter.Element(), "error")
package vtest
