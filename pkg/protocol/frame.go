package protocol

import (
	"io"

	lerrors "github.com/vango-dev/loom/internal/errors"
)

// FrameType identifies the payload of a frame.
type FrameType uint8

const (
	FrameOps   FrameType = 0x01 // server → client: batch of host operations
	FrameEvent FrameType = 0x02 // client → server: one event
	FrameError FrameType = 0x03 // server → client: session failure message
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameOps:
		return "Ops"
	case FrameEvent:
		return "Event"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

func (ft FrameType) valid() bool {
	return ft >= FrameOps && ft <= FrameError
}

// Frame is one protocol message.
type Frame struct {
	Type    FrameType
	Payload []byte
}

// NewFrame creates a frame.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode returns the frame with its header.
func (f *Frame) Encode() []byte {
	e := &Encoder{buf: make([]byte, 0, len(f.Payload)+1+binaryUvarintLen(uint64(len(f.Payload))))}
	e.WriteU8(byte(f.Type))
	e.WriteUvarint(uint64(len(f.Payload)))
	e.WriteBytes(f.Payload)
	return e.Bytes()
}

// WriteFrame writes an encoded frame to w.
func WriteFrame(w io.Writer, f *Frame) error {
	_, err := w.Write(f.Encode())
	return err
}

// DecodeFrame decodes a single frame occupying all of data. The payload is
// copied.
func DecodeFrame(data []byte, limits Limits) (*Frame, error) {
	d := NewDecoder(data, limits)
	f, err := decodeFrame(d)
	if err != nil {
		return nil, malformedFrame(err)
	}
	if !d.EOF() {
		return nil, malformedFrame(ErrTrailingBytes)
	}
	return f, nil
}

func decodeFrame(d *Decoder) (*Frame, error) {
	t, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ft := FrameType(t)
	if !ft.valid() {
		return nil, lerrors.New("E301").WithDetailf("unknown frame type 0x%02x", t)
	}
	n, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(d.limits.MaxFrame) {
		return nil, lerrors.New("E301").WithDetailf("payload of %d bytes exceeds %d", n, d.limits.MaxFrame)
	}
	if n > uint64(d.Remaining()) {
		return nil, io.ErrUnexpectedEOF
	}
	payload := make([]byte, n)
	copy(payload, d.buf[d.pos:])
	d.pos += int(n)
	return &Frame{Type: ft, Payload: payload}, nil
}

func malformedFrame(err error) error {
	if le, ok := err.(*lerrors.LoomError); ok {
		return le
	}
	return lerrors.New("E301").Wrap(err)
}

func binaryUvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}
