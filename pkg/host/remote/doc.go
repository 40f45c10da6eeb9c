// Package remote is a host whose nodes live in a browser. Every host
// mutation is recorded as a protocol.Op; the owner flushes the pending
// batch after each commit and ships it to the client, which replays it
// against the DOM. Events travel the other way and are dispatched to the
// listener currently subscribed on the addressed node.
//
// The client's mount element is node RootID. Nodes created by the host are
// numbered from RootID+1 and are never reused within a session.
package remote
