// Package server serves loom components to browsers.
//
// GET / returns a server-rendered page that loads the live client. The
// client then opens GET /live, a websocket on which the server runs one
// Session: a slice loop, a remote host and a reconciler. Every commit is
// sent to the client as a FrameOps message of host operations; client
// events arrive as FrameEvent messages and are dispatched to the listener
// the addressed node currently has.
//
//	srv := server.New(server.DefaultConfig(), func() *vdom.VNode {
//	    return demo.Counter.Element()
//	})
//	http.ListenAndServe(":3000", srv)
//
// GET /healthz reports liveness and the session count. GET /metrics is
// mounted when a metrics handler is supplied.
package server
