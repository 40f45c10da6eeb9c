package protocol

import (
	"fmt"

	lerrors "github.com/vango-dev/loom/internal/errors"
)

// OpCode identifies a host operation.
type OpCode uint8

const (
	OpCreate     OpCode = 0x01 // ID, Key=tag
	OpCreateText OpCode = 0x02 // ID, Value=text
	OpSetAttr    OpCode = 0x03 // ID, Key, Value
	OpRemoveAttr OpCode = 0x04 // ID, Key
	OpListen     OpCode = 0x05 // ID, Key=event
	OpUnlisten   OpCode = 0x06 // ID, Key=event
	OpInsert     OpCode = 0x07 // ID=child, Parent, Before (0 appends)
	OpRemove     OpCode = 0x08 // ID=child, Parent
	OpSetText    OpCode = 0x09 // ID, Value=text
)

var opNames = map[OpCode]string{
	OpCreate:     "Create",
	OpCreateText: "CreateText",
	OpSetAttr:    "SetAttr",
	OpRemoveAttr: "RemoveAttr",
	OpListen:     "Listen",
	OpUnlisten:   "Unlisten",
	OpInsert:     "Insert",
	OpRemove:     "Remove",
	OpSetText:    "SetText",
}

// String returns the string representation of the op code.
func (c OpCode) String() string {
	if name, ok := opNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Op(0x%02x)", uint8(c))
}

// Op is one host operation. Node IDs are assigned by the server and are
// never zero.
type Op struct {
	Code   OpCode
	ID     uint32
	Parent uint32
	Before uint32
	Key    string
	Value  string
}

func (o Op) String() string {
	switch o.Code {
	case OpCreate, OpRemoveAttr, OpListen, OpUnlisten:
		return fmt.Sprintf("%s(%d, %q)", o.Code, o.ID, o.Key)
	case OpCreateText, OpSetText:
		return fmt.Sprintf("%s(%d, %q)", o.Code, o.ID, o.Value)
	case OpSetAttr:
		return fmt.Sprintf("%s(%d, %q, %q)", o.Code, o.ID, o.Key, o.Value)
	case OpInsert:
		return fmt.Sprintf("%s(%d, %d, %d)", o.Code, o.Parent, o.ID, o.Before)
	case OpRemove:
		return fmt.Sprintf("%s(%d, %d)", o.Code, o.Parent, o.ID)
	default:
		return o.Code.String()
	}
}

// EncodeOps encodes a batch of operations as a FrameOps payload.
func EncodeOps(ops []Op) []byte {
	e := NewEncoder()
	AppendOps(e, ops)
	return e.Bytes()
}

// AppendOps encodes ops into e.
func AppendOps(e *Encoder, ops []Op) {
	e.WriteUvarint(uint64(len(ops)))
	for _, op := range ops {
		e.WriteU8(byte(op.Code))
		e.WriteUvarint(uint64(op.ID))
		switch op.Code {
		case OpCreate, OpRemoveAttr, OpListen, OpUnlisten:
			e.WriteString(op.Key)
		case OpCreateText, OpSetText:
			e.WriteString(op.Value)
		case OpSetAttr:
			e.WriteString(op.Key)
			e.WriteString(op.Value)
		case OpInsert:
			e.WriteUvarint(uint64(op.Parent))
			e.WriteUvarint(uint64(op.Before))
		case OpRemove:
			e.WriteUvarint(uint64(op.Parent))
		}
	}
}

// DecodeOps decodes a FrameOps payload.
func DecodeOps(payload []byte, limits Limits) ([]Op, error) {
	d := NewDecoder(payload, limits)
	n, err := d.ReadCount(d.limits.MaxOps)
	if err != nil {
		return nil, malformedFrame(err)
	}
	ops := make([]Op, 0, n)
	for i := 0; i < n; i++ {
		op, err := decodeOp(d)
		if err != nil {
			return nil, lerrors.New("E301").WithDetailf("op %d", i).Wrap(err)
		}
		ops = append(ops, op)
	}
	if !d.EOF() {
		return nil, malformedFrame(ErrTrailingBytes)
	}
	return ops, nil
}

func decodeOp(d *Decoder) (Op, error) {
	var op Op
	code, err := d.ReadByte()
	if err != nil {
		return op, err
	}
	op.Code = OpCode(code)
	if _, ok := opNames[op.Code]; !ok {
		return op, fmt.Errorf("unknown op code 0x%02x", code)
	}
	if op.ID, err = d.ReadUint32(); err != nil {
		return op, err
	}
	switch op.Code {
	case OpCreate, OpRemoveAttr, OpListen, OpUnlisten:
		op.Key, err = d.ReadString()
	case OpCreateText, OpSetText:
		op.Value, err = d.ReadString()
	case OpSetAttr:
		if op.Key, err = d.ReadString(); err == nil {
			op.Value, err = d.ReadString()
		}
	case OpInsert:
		if op.Parent, err = d.ReadUint32(); err == nil {
			op.Before, err = d.ReadUint32()
		}
	case OpRemove:
		op.Parent, err = d.ReadUint32()
	}
	return op, err
}
