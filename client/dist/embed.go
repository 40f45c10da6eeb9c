package clientdist

import _ "embed"

// LoomJS is the live client. It is served at "/_loom/client.js".
//
//go:embed loom.js
var LoomJS []byte
