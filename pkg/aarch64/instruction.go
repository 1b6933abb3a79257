package aarch64

import (
	"fmt"

	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

// Op is a dense opcode identifier, small enough to index per-opcode
// statistics buckets directly.
type Op uint8

const (
	OpMovReg Op = iota
	OpMovImm
	OpAdd
	OpSub
	OpAnd
	OpOrr
	OpEor
	OpLsl
	OpLsr
	OpAsr
	OpMul
	OpSdiv
	OpUdiv
	OpCmp
	OpCmn
	OpTst
	OpCsel
	OpCsinc
	OpCsinv
	OpCsneg
	opCount
)

// OpCodeCount is the dense opcode count the generator publishes.
const OpCodeCount = int(opCount)

var mnemonics = [...]string{
	OpMovReg: "mov", OpMovImm: "mov",
	OpAdd: "add", OpSub: "sub",
	OpAnd: "and", OpOrr: "orr", OpEor: "eor",
	OpLsl: "lsl", OpLsr: "lsr", OpAsr: "asr",
	OpMul: "mul", OpSdiv: "sdiv", OpUdiv: "udiv",
	OpCmp: "cmp", OpCmn: "cmn", OpTst: "tst",
	OpCsel: "csel", OpCsinc: "csinc", OpCsinv: "csinv", OpCsneg: "csneg",
}

// Instruction is a single AArch64 instruction: a flat value type carrying
// the two or three register/operand slots the families need. Rd is the
// destination (unused for Compare), Rn the first source, Op2 the second
// operand (register or immediate for arithmetic/logical/shift/compare,
// always a register for Multiplicative and Select), Cond the condition code
// (Select family only).
type Instruction struct {
	Op   Op
	Rd   Reg
	Rn   Reg
	Op2  Operand
	Cond CondCode
}

func MovReg(rd, rn Reg) Instruction { return Instruction{Op: OpMovReg, Rd: rd, Rn: rn} }
func MovImm(rd Reg, imm int64) Instruction {
	return Instruction{Op: OpMovImm, Rd: rd, Op2: ImmOperand(imm)}
}
func Add(rd, rn Reg, rm Operand) Instruction { return Instruction{Op: OpAdd, Rd: rd, Rn: rn, Op2: rm} }
func Sub(rd, rn Reg, rm Operand) Instruction { return Instruction{Op: OpSub, Rd: rd, Rn: rn, Op2: rm} }
func And(rd, rn Reg, rm Operand) Instruction { return Instruction{Op: OpAnd, Rd: rd, Rn: rn, Op2: rm} }
func Orr(rd, rn Reg, rm Operand) Instruction { return Instruction{Op: OpOrr, Rd: rd, Rn: rn, Op2: rm} }
func Eor(rd, rn Reg, rm Operand) Instruction { return Instruction{Op: OpEor, Rd: rd, Rn: rn, Op2: rm} }
func Lsl(rd, rn Reg, shift Operand) Instruction {
	return Instruction{Op: OpLsl, Rd: rd, Rn: rn, Op2: shift}
}
func Lsr(rd, rn Reg, shift Operand) Instruction {
	return Instruction{Op: OpLsr, Rd: rd, Rn: rn, Op2: shift}
}
func Asr(rd, rn Reg, shift Operand) Instruction {
	return Instruction{Op: OpAsr, Rd: rd, Rn: rn, Op2: shift}
}
func Mul(rd, rn, rm Reg) Instruction {
	return Instruction{Op: OpMul, Rd: rd, Rn: rn, Op2: RegOperand(rm)}
}
func Sdiv(rd, rn, rm Reg) Instruction {
	return Instruction{Op: OpSdiv, Rd: rd, Rn: rn, Op2: RegOperand(rm)}
}
func Udiv(rd, rn, rm Reg) Instruction {
	return Instruction{Op: OpUdiv, Rd: rd, Rn: rn, Op2: RegOperand(rm)}
}
func Cmp(rn Reg, rm Operand) Instruction { return Instruction{Op: OpCmp, Rn: rn, Op2: rm} }
func Cmn(rn Reg, rm Operand) Instruction { return Instruction{Op: OpCmn, Rn: rn, Op2: rm} }
func Tst(rn Reg, rm Operand) Instruction { return Instruction{Op: OpTst, Rn: rn, Op2: rm} }
func Csel(rd, rn, rm Reg, cond CondCode) Instruction {
	return Instruction{Op: OpCsel, Rd: rd, Rn: rn, Op2: RegOperand(rm), Cond: cond}
}
func Csinc(rd, rn, rm Reg, cond CondCode) Instruction {
	return Instruction{Op: OpCsinc, Rd: rd, Rn: rn, Op2: RegOperand(rm), Cond: cond}
}
func Csinv(rd, rn, rm Reg, cond CondCode) Instruction {
	return Instruction{Op: OpCsinv, Rd: rd, Rn: rn, Op2: RegOperand(rm), Cond: cond}
}
func Csneg(rd, rn, rm Reg, cond CondCode) Instruction {
	return Instruction{Op: OpCsneg, Rd: rd, Rn: rn, Op2: RegOperand(rm), Cond: cond}
}

func (i Instruction) Opcode() int      { return int(i.Op) }
func (i Instruction) Mnemonic() string { return mnemonics[i.Op] }

// hasDest reports whether this family writes a destination register. Only
// the Compare family has none.
func (i Instruction) hasDest() bool {
	return i.Op != OpCmp && i.Op != OpCmn && i.Op != OpTst
}

func (i Instruction) Dest() (isa.Register, bool) {
	if !i.hasDest() {
		return nil, false
	}
	return i.Rd, true
}

// hasRn reports whether rn is a meaningful source (MovImm has none).
func (i Instruction) hasRn() bool { return i.Op != OpMovImm }

func (i Instruction) Sources() []isa.Register {
	var out []isa.Register
	if i.hasRn() {
		out = append(out, i.Rn)
	}
	if i.Op2.IsRegister() {
		out = append(out, i.Op2.Reg())
	}
	return out
}

func (i Instruction) ReadsFlags() bool {
	switch i.Op {
	case OpCsel, OpCsinc, OpCsinv, OpCsneg:
		return true
	default:
		return false
	}
}

func (i Instruction) WritesFlags() bool {
	switch i.Op {
	case OpCmp, OpCmn, OpTst:
		return true
	default:
		return false
	}
}

// Encodable enforces the machine-code immediate ranges: MOV-imm 0..=0xFFFF,
// ADD/SUB/CMP/CMN imm 0..=0xFFF, shift amount 0..=63, logical and TST
// immediates are not encodable (register form only).
func (i Instruction) Encodable() bool {
	switch i.Op {
	case OpMovImm:
		return i.Op2.IsImmediate() && i.Op2.imm >= 0 && i.Op2.imm <= 0xFFFF
	case OpAdd, OpSub, OpCmp, OpCmn:
		if i.Op2.IsImmediate() {
			return i.Op2.imm >= 0 && i.Op2.imm <= 0xFFF
		}
		return true
	case OpAnd, OpOrr, OpEor, OpTst:
		return !i.Op2.IsImmediate()
	case OpLsl, OpLsr, OpAsr:
		if i.Op2.IsImmediate() {
			return i.Op2.imm >= 0 && i.Op2.imm <= 63
		}
		return true
	case OpMul, OpSdiv, OpUdiv, OpCsel, OpCsinc, OpCsinv, OpCsneg, OpMovReg:
		return true
	default:
		return false
	}
}

func (i Instruction) String() string {
	switch i.Op {
	case OpMovReg:
		return fmt.Sprintf("mov %s, %s", i.Rd, i.Rn)
	case OpMovImm:
		return fmt.Sprintf("mov %s, %s", i.Rd, i.Op2)
	case OpCmp, OpCmn, OpTst:
		return fmt.Sprintf("%s %s, %s", i.Mnemonic(), i.Rn, i.Op2)
	case OpCsel, OpCsinc, OpCsinv, OpCsneg:
		return fmt.Sprintf("%s %s, %s, %s, %s", i.Mnemonic(), i.Rd, i.Rn, i.Op2, i.Cond)
	default:
		return fmt.Sprintf("%s %s, %s, %s", i.Mnemonic(), i.Rd, i.Rn, i.Op2)
	}
}
