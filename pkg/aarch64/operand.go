package aarch64

import (
	"fmt"

	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

// Operand is a sum of two variants: a register or a signed 64-bit immediate.
type Operand struct {
	reg   Reg
	imm   int64
	isImm bool
}

// RegOperand wraps a register as an operand.
func RegOperand(r Reg) Operand { return Operand{reg: r} }

// ImmOperand wraps a signed 64-bit immediate as an operand.
func ImmOperand(v int64) Operand { return Operand{imm: v, isImm: true} }

func (o Operand) IsRegister() bool  { return !o.isImm }
func (o Operand) IsImmediate() bool { return o.isImm }

func (o Operand) Register() isa.Register { return o.reg }

// Reg returns the register operand directly, for callers already in this
// package.
func (o Operand) Reg() Reg { return o.reg }

func (o Operand) Immediate() int64 { return o.imm }

func (o Operand) String() string {
	if o.isImm {
		return fmt.Sprintf("#%d", o.imm)
	}
	return o.reg.String()
}

// CondCode is the 4-bit condition-code enumeration read by the Select family.
type CondCode uint8

const (
	CondEQ CondCode = iota
	CondNE
	CondCS // HS
	CondCC // LO
	CondMI
	CondPL
	CondVS
	CondVC
	CondHI
	CondLS
	CondGE
	CondLT
	CondGT
	CondLE
	CondAL
	CondNV
)

var condNames = [...]string{
	"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt", "gt", "le", "al", "nv",
}

func (c CondCode) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return "??"
}

// Holds reports whether the condition is satisfied by the given flags.
func (c CondCode) Holds(n, z, cf, v bool) bool {
	switch c {
	case CondEQ:
		return z
	case CondNE:
		return !z
	case CondCS:
		return cf
	case CondCC:
		return !cf
	case CondMI:
		return n
	case CondPL:
		return !n
	case CondVS:
		return v
	case CondVC:
		return !v
	case CondHI:
		return cf && !z
	case CondLS:
		return !cf || z
	case CondGE:
		return n == v
	case CondLT:
		return n != v
	case CondGT:
		return !z && n == v
	case CondLE:
		return z || n != v
	case CondAL, CondNV:
		return true
	default:
		return true
	}
}
