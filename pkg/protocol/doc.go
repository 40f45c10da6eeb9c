// Package protocol implements the binary wire format between a live session
// and its browser client.
//
// The server streams batches of host operations: create an element or a
// text node, set or remove an attribute, subscribe or unsubscribe an event,
// insert or remove a child. The client answers with events addressed to the
// node that fired them. Both directions use the same frame envelope:
//
//	┌────────────┬─────────────────────┬────────────────────┐
//	│ Type (u8)  │ Length (uvarint)    │ Payload            │
//	└────────────┴─────────────────────┴────────────────────┘
//
// Integers inside payloads are unsigned varints (protobuf style); strings
// are varint-length-prefixed UTF-8. Decoders enforce Limits on frame size,
// operation count and string length so a hostile peer cannot make the
// server allocate without bound.
//
//	payload := protocol.EncodeOps(ops)
//	msg := protocol.NewFrame(protocol.FrameOps, payload).Encode()
//
//	f, err := protocol.DecodeFrame(msg, protocol.DefaultLimits())
//	ev, err := protocol.DecodeEvent(f.Payload, protocol.DefaultLimits())
package protocol
