package server

import (
	"net/http"
	"time"

	"github.com/vango-dev/loom/pkg/protocol"
	"github.com/vango-dev/loom/pkg/slice"
)

// Config configures a Server.
type Config struct {
	// Title is the document title of the rendered page.
	Title string

	// Styles are inline CSS blocks added to the page head.
	Styles []string

	// ReadLimit is the largest websocket message accepted, in bytes.
	ReadLimit int64

	// WriteTimeout bounds each websocket write.
	WriteTimeout time.Duration

	// Budget creates the budget of each session slice.
	Budget slice.BudgetFunc

	// Epsilon is passed to every session reconciler. Zero keeps the
	// reconciler's default.
	Epsilon time.Duration

	// Limits bounds decoded client frames.
	Limits protocol.Limits

	// Mirror keeps an in-memory copy of every session's host tree so
	// Session.HTML works. Snapshot recording needs it.
	Mirror bool

	// CheckOrigin validates websocket upgrades. Nil accepts same-origin
	// requests only.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Title:        "loom",
		ReadLimit:    64 * 1024,
		WriteTimeout: 10 * time.Second,
		Budget:       slice.Deadline(slice.DefaultSlice),
		Limits:       protocol.DefaultLimits(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ReadLimit <= 0 {
		c.ReadLimit = d.ReadLimit
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.Budget == nil {
		c.Budget = d.Budget
	}
	if c.Limits == (protocol.Limits{}) {
		c.Limits = d.Limits
	}
	return c
}
