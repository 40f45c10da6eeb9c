package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/loom/internal/demo"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/host/memhost"
	"github.com/vango-dev/loom/pkg/slice"
)

func TestObserverCounts(t *testing.T) {
	m := New()

	m.SliceDone(fiber.SliceStats{Units: 4, Duration: time.Millisecond})
	m.SliceDone(fiber.SliceStats{Units: 2, Duration: time.Millisecond, Pending: true})
	m.Committed(fiber.CommitStats{Placed: 3, Updated: 2, Deleted: 1, Duration: time.Millisecond})
	m.Failed(fiber.ErrComponentPanic)
	m.Failed(fiber.ErrComponentPanic)
	m.Failed(errPlain{})

	if got := testutil.ToFloat64(m.slices); got != 2 {
		t.Errorf("slices = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.commits); got != 1 {
		t.Errorf("commits = %v, want 1", got)
	}
	effects := map[string]float64{"place": 3, "update": 2, "delete": 1}
	for effect, want := range effects {
		if got := testutil.ToFloat64(m.effects.WithLabelValues(effect)); got != want {
			t.Errorf("effects{%s} = %v, want %v", effect, got, want)
		}
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("E104")); got != 2 {
		t.Errorf("failures{E104} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("unknown")); got != 1 {
		t.Errorf("failures{unknown} = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.sliceUnits); n != 1 {
		t.Errorf("slice_units series = %d, want 1", n)
	}
}

type errPlain struct{}

func (errPlain) Error() string { return "plain" }

func TestSessionsGauge(t *testing.T) {
	m := New()
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	if got := testutil.ToFloat64(m.activeSessions); got != 1 {
		t.Errorf("active_sessions = %v, want 1", got)
	}
}

func TestObservesReconciler(t *testing.T) {
	m := New(WithNamespace("test"))
	h := memhost.New()
	q := slice.NewQueue(slice.Units(3))
	r := fiber.New(h, q, fiber.WithObserver(m))
	if err := r.Render(demo.Grid(2, 2), h.Container("div")); err != nil {
		t.Fatal(err)
	}
	slices := q.Drain(0)

	if got := testutil.ToFloat64(m.slices); got != float64(slices) {
		t.Errorf("slices = %v, want %d", got, slices)
	}
	if got := testutil.ToFloat64(m.commits); got != 1 {
		t.Errorf("commits = %v, want 1", got)
	}
	// table, tbody, 2 tr, 4 td, 4 text
	if got := testutil.ToFloat64(m.effects.WithLabelValues("place")); got != 12 {
		t.Errorf("placed = %v, want 12", got)
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithConstLabels(prometheus.Labels{"app": "demo"}))
	m.Committed(fiber.CommitStats{Placed: 1})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`loom_commits_total{app="demo"} 1`, "loom_commit_duration_seconds_bucket"} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition is missing %q", want)
		}
	}
	if m.Registry() != reg {
		t.Error("Registry() did not return the configured registry")
	}
}
