package riscv

import "github.com/oisee/aarch64-optimizer/pkg/state"

// resolveOperand reads an Operand against s, returning 0 for the zero
// register and the raw immediate for an Immediate operand.
func resolveOperand(s state.Concrete, op Operand) uint64 {
	if op.IsImmediate() {
		return uint64(op.imm)
	}
	return s.Get(op.reg.Index(), ZeroIndex)
}

// shiftAmount masks a shift operand to its low 6 bits, the 64-bit register
// shift semantics.
func shiftAmount(s state.Concrete, op Operand) uint {
	return uint(resolveOperand(s, op) & 0x3F)
}

// Exec applies a single instruction to s, returning the updated state.
// RISC-V carries no flags register, so unlike pkg/aarch64.Exec this never
// touches s.Flags.
func Exec(s state.Concrete, i Instruction) state.Concrete {
	switch i.Op {
	case OpMovReg:
		s.Set(i.Rd.Index(), ZeroIndex, s.Get(i.Rn.Index(), ZeroIndex))
	case OpMovImm:
		s.Set(i.Rd.Index(), ZeroIndex, uint64(i.Op2.imm))
	case OpAdd:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a+b)
	case OpSub:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a-b)
	case OpAnd:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a&b)
	case OpOr:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a|b)
	case OpXor:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a^b)
	case OpSll:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		s.Set(i.Rd.Index(), ZeroIndex, a<<shiftAmount(s, i.Op2))
	case OpSrl:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		s.Set(i.Rd.Index(), ZeroIndex, a>>shiftAmount(s, i.Op2))
	case OpSra:
		a := int64(s.Get(i.Rn.Index(), ZeroIndex))
		s.Set(i.Rd.Index(), ZeroIndex, uint64(a>>shiftAmount(s, i.Op2)))
	case OpSlt:
		a := int64(s.Get(i.Rn.Index(), ZeroIndex))
		b := int64(resolveOperand(s, i.Op2))
		s.Set(i.Rd.Index(), ZeroIndex, boolToWord(a < b))
	case OpSltu:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, boolToWord(a < b))
	case OpMul:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a*b)
	case OpDiv:
		a := int64(s.Get(i.Rn.Index(), ZeroIndex))
		b := int64(resolveOperand(s, i.Op2))
		s.Set(i.Rd.Index(), ZeroIndex, uint64(sdiv(a, b)))
	case OpDivu:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		if b == 0 {
			// RISC-V's DIVU-by-zero result is all-ones, per the ISA manual.
			s.Set(i.Rd.Index(), ZeroIndex, ^uint64(0))
		} else {
			s.Set(i.Rd.Index(), ZeroIndex, a/b)
		}
	}
	return s
}

// ExecSeq applies a sequence of instructions as a left fold.
func ExecSeq(s state.Concrete, seq []Instruction) state.Concrete {
	for _, i := range seq {
		s = Exec(s, i)
	}
	return s
}

func boolToWord(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// sdiv implements RISC-V's signed DIV policy: all-ones on a zero divisor,
// the dividend on INT64_MIN / -1 overflow.
func sdiv(a, b int64) int64 {
	if b == 0 {
		return -1
	}
	if a == -1<<63 && b == -1 {
		return a
	}
	return a / b
}
