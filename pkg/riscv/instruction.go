package riscv

import (
	"fmt"

	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

// Op is a dense opcode identifier, matching pkg/aarch64's Op convention.
type Op uint8

const (
	OpMovReg Op = iota // mv rd, rs  (pseudo-op for addi rd, rs, 0)
	OpMovImm           // li rd, imm (pseudo-op for addi rd, x0, imm)
	OpAdd
	OpSub
	OpAnd
	OpOr
	OpXor
	OpSll
	OpSrl
	OpSra
	OpSlt
	OpSltu
	OpMul
	OpDiv
	OpDivu
	opCount
)

// OpCodeCount is the dense opcode count the generator publishes.
const OpCodeCount = int(opCount)

var mnemonics = [...]string{
	OpMovReg: "mv", OpMovImm: "li",
	OpAdd: "add", OpSub: "sub",
	OpAnd: "and", OpOr: "or", OpXor: "xor",
	OpSll: "sll", OpSrl: "srl", OpSra: "sra",
	OpSlt: "slt", OpSltu: "sltu",
	OpMul: "mul", OpDiv: "div", OpDivu: "divu",
}

// Instruction is a single RV32I/RV64I integer instruction: a flat value
// type, mirroring pkg/aarch64.Instruction but without a condition field:
// RISC-V has no flags register, so there is no Select family.
type Instruction struct {
	Op  Op
	Rd  Reg
	Rn  Reg
	Op2 Operand
}

func MovReg(rd, rn Reg) Instruction { return Instruction{Op: OpMovReg, Rd: rd, Rn: rn} }
func MovImm(rd Reg, imm int64) Instruction {
	return Instruction{Op: OpMovImm, Rd: rd, Op2: ImmOperand(imm)}
}
func Add(rd, rn Reg, rm Operand) Instruction { return Instruction{Op: OpAdd, Rd: rd, Rn: rn, Op2: rm} }
func Sub(rd, rn Reg, rm Operand) Instruction { return Instruction{Op: OpSub, Rd: rd, Rn: rn, Op2: rm} }
func And(rd, rn Reg, rm Operand) Instruction { return Instruction{Op: OpAnd, Rd: rd, Rn: rn, Op2: rm} }
func Or(rd, rn Reg, rm Operand) Instruction  { return Instruction{Op: OpOr, Rd: rd, Rn: rn, Op2: rm} }
func Xor(rd, rn Reg, rm Operand) Instruction { return Instruction{Op: OpXor, Rd: rd, Rn: rn, Op2: rm} }
func Sll(rd, rn Reg, shift Operand) Instruction {
	return Instruction{Op: OpSll, Rd: rd, Rn: rn, Op2: shift}
}
func Srl(rd, rn Reg, shift Operand) Instruction {
	return Instruction{Op: OpSrl, Rd: rd, Rn: rn, Op2: shift}
}
func Sra(rd, rn Reg, shift Operand) Instruction {
	return Instruction{Op: OpSra, Rd: rd, Rn: rn, Op2: shift}
}
func Slt(rd, rn, rm Reg) Instruction {
	return Instruction{Op: OpSlt, Rd: rd, Rn: rn, Op2: RegOperand(rm)}
}
func Sltu(rd, rn, rm Reg) Instruction {
	return Instruction{Op: OpSltu, Rd: rd, Rn: rn, Op2: RegOperand(rm)}
}
func Mul(rd, rn, rm Reg) Instruction {
	return Instruction{Op: OpMul, Rd: rd, Rn: rn, Op2: RegOperand(rm)}
}
func Div(rd, rn, rm Reg) Instruction {
	return Instruction{Op: OpDiv, Rd: rd, Rn: rn, Op2: RegOperand(rm)}
}
func Divu(rd, rn, rm Reg) Instruction {
	return Instruction{Op: OpDivu, Rd: rd, Rn: rn, Op2: RegOperand(rm)}
}

func (i Instruction) Opcode() int      { return int(i.Op) }
func (i Instruction) Mnemonic() string { return mnemonics[i.Op] }

// Every family writes a destination register; RISC-V's compare results
// (SLT/SLTU) land in rd rather than a flags register, so unlike AArch64
// there is no dest-less family.
func (i Instruction) Dest() (isa.Register, bool) { return i.Rd, true }

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

// RISC-V's integer instructions never read or write a flags register.
func (i Instruction) ReadsFlags() bool  { return false }
func (i Instruction) WritesFlags() bool { return false }

// Encodable enforces this profile's immediate ranges: MovImm/Add/Sub
// immediates are the 12-bit signed I-type range (-2048..2047), shift
// amounts are 0..63, And/Or/Xor are register-operand only (mirroring the
// AArch64 profile's logical-immediate non-goal), and Slt/Sltu/Mul/Div/Divu
// are register-operand only (no SLTI/SLTIU immediate forms).
func (i Instruction) Encodable() bool {
	switch i.Op {
	case OpMovImm:
		return i.Op2.IsImmediate() && i.Op2.imm >= -2048 && i.Op2.imm <= 2047
	case OpAdd, OpSub:
		if i.Op2.IsImmediate() {
			return i.Op2.imm >= -2048 && i.Op2.imm <= 2047
		}
		return true
	case OpAnd, OpOr, OpXor:
		return !i.Op2.IsImmediate()
	case OpSll, OpSrl, OpSra:
		if i.Op2.IsImmediate() {
			return i.Op2.imm >= 0 && i.Op2.imm <= 63
		}
		return true
	case OpSlt, OpSltu, OpMul, OpDiv, OpDivu, OpMovReg:
		return true
	default:
		return false
	}
}

func (i Instruction) String() string {
	switch i.Op {
	case OpMovReg:
		return fmt.Sprintf("mv %s, %s", i.Rd, i.Rn)
	case OpMovImm:
		return fmt.Sprintf("li %s, %s", i.Rd, i.Op2)
	default:
		return fmt.Sprintf("%s %s, %s, %s", i.Mnemonic(), i.Rd, i.Rn, i.Op2)
	}
}
