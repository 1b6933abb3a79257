package riscv

import (
	"fmt"

	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

// Operand is a sum of two variants, a register or a signed 64-bit
// immediate, identical in shape to pkg/aarch64's.
type Operand struct {
	reg   Reg
	imm   int64
	isImm bool
}

func RegOperand(r Reg) Operand { return Operand{reg: r} }
func ImmOperand(v int64) Operand { return Operand{imm: v, isImm: true} }

func (o Operand) IsRegister() bool  { return !o.isImm }
func (o Operand) IsImmediate() bool { return o.isImm }

func (o Operand) Register() isa.Register { return o.reg }
func (o Operand) Reg() Reg                { return o.reg }
func (o Operand) Immediate() int64        { return o.imm }

func (o Operand) String() string {
	if o.isImm {
		return fmt.Sprintf("%d", o.imm)
	}
	return o.reg.String()
}
