package aarch64

import (
	"encoding/binary"
	"fmt"
)

// Reg and Operand keep their fields unexported, so they carry explicit gob
// codecs for pkg/checkpoint's rule tables.

func (r Reg) GobEncode() ([]byte, error) { return []byte{byte(r.idx)}, nil }

func (r *Reg) GobDecode(b []byte) error {
	if len(b) != 1 {
		return fmt.Errorf("aarch64.Reg: bad gob payload length %d", len(b))
	}
	r.idx = int(b[0])
	return nil
}

func (o Operand) GobEncode() ([]byte, error) {
	if o.isImm {
		buf := make([]byte, 9)
		buf[0] = 1
		binary.BigEndian.PutUint64(buf[1:], uint64(o.imm))
		return buf, nil
	}
	return []byte{0, byte(o.reg.idx)}, nil
}

func (o *Operand) GobDecode(b []byte) error {
	switch {
	case len(b) == 9 && b[0] == 1:
		*o = ImmOperand(int64(binary.BigEndian.Uint64(b[1:])))
		return nil
	case len(b) == 2 && b[0] == 0:
		*o = RegOperand(Reg{idx: int(b[1])})
		return nil
	default:
		return fmt.Errorf("aarch64.Operand: bad gob payload")
	}
}
