// Package loom renders component trees with an incremental, sliced
// reconciler.
//
// Components are plain functions built with vdom.Define and keep state
// through fiber.UseState. A tree can be rendered once to HTML with
// RenderHTML, or served live with an App: the first request gets
// server-rendered markup and a websocket session then streams host
// operations to the browser as state changes.
//
//	app, err := loom.New(cfg, func() *vdom.VNode { return Counter.Element() })
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(app.ListenAndServe(ctx))
package loom

import (
	"github.com/vango-dev/loom/internal/config"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/host/memhost"
	"github.com/vango-dev/loom/pkg/render"
	"github.com/vango-dev/loom/pkg/slice"
	"github.com/vango-dev/loom/pkg/vdom"
)

// Version is the loom release, overridden at build time.
var Version = "0.1.0-dev"

// RenderHTML mounts root on an in-memory host, reconciles it to
// completion and returns the markup of the container's children.
func RenderHTML(root *vdom.VNode, opts ...fiber.Option) (string, error) {
	_, container, err := memhost.Mount(root, opts...)
	if err != nil {
		return "", err
	}
	return render.HTML(container), nil
}

// Budget returns the slice budget described by the scheduler settings: a
// fixed unit count when UnitsPerSlice is positive, a deadline otherwise.
func Budget(c config.SchedulerConfig) slice.BudgetFunc {
	if c.UnitsPerSlice > 0 {
		return slice.Units(c.UnitsPerSlice)
	}
	d := c.SliceBudget
	if d <= 0 {
		d = slice.DefaultSlice
	}
	return slice.Deadline(d)
}
