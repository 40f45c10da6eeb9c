package protocol

import (
	lerrors "github.com/vango-dev/loom/internal/errors"
)

// Event is a client event addressed to a host node.
type Event struct {
	NodeID uint32
	Name   string // event name without the "on" prefix: "click", "input"
	Value  string // current value for form events
}

// EncodeEvent encodes ev as a FrameEvent payload.
func EncodeEvent(ev Event) []byte {
	e := NewEncoder()
	e.WriteUvarint(uint64(ev.NodeID))
	e.WriteString(ev.Name)
	e.WriteString(ev.Value)
	return e.Bytes()
}

// DecodeEvent decodes a FrameEvent payload.
func DecodeEvent(payload []byte, limits Limits) (Event, error) {
	var ev Event
	d := NewDecoder(payload, limits)
	var err error
	if ev.NodeID, err = d.ReadUint32(); err != nil {
		return Event{}, malformedEvent(err)
	}
	if ev.Name, err = d.ReadString(); err != nil {
		return Event{}, malformedEvent(err)
	}
	if ev.Value, err = d.ReadString(); err != nil {
		return Event{}, malformedEvent(err)
	}
	if !d.EOF() {
		return Event{}, malformedEvent(ErrTrailingBytes)
	}
	if ev.NodeID == 0 || ev.Name == "" {
		return Event{}, lerrors.New("E302").WithDetail("event needs a node and a name")
	}
	return ev, nil
}

func malformedEvent(err error) error {
	return lerrors.New("E302").Wrap(err)
}

// EncodeError encodes a FrameError payload.
func EncodeError(code, message string) []byte {
	e := NewEncoder()
	e.WriteString(code)
	e.WriteString(message)
	return e.Bytes()
}

// DecodeError decodes a FrameError payload.
func DecodeError(payload []byte, limits Limits) (code, message string, err error) {
	d := NewDecoder(payload, limits)
	if code, err = d.ReadString(); err != nil {
		return "", "", malformedFrame(err)
	}
	if message, err = d.ReadString(); err != nil {
		return "", "", malformedFrame(err)
	}
	return code, message, nil
}
