package aarch64

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

// Exec applies a single instruction to s, returning the updated state. The
// sequence-level fold (left-to-right, order preserved) lives in ExecSeq and
// the search/equivalence packages.
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
	case OpOrr:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a|b)
	case OpEor:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a^b)
	case OpLsl:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		s.Set(i.Rd.Index(), ZeroIndex, a<<shiftAmount(s, i.Op2))
	case OpLsr:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		s.Set(i.Rd.Index(), ZeroIndex, a>>shiftAmount(s, i.Op2))
	case OpAsr:
		a := int64(s.Get(i.Rn.Index(), ZeroIndex))
		s.Set(i.Rd.Index(), ZeroIndex, uint64(a>>shiftAmount(s, i.Op2)))
	case OpMul:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a*b)
	case OpUdiv:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		if b == 0 {
			s.Set(i.Rd.Index(), ZeroIndex, 0)
		} else {
			s.Set(i.Rd.Index(), ZeroIndex, a/b)
		}
	case OpSdiv:
		a := int64(s.Get(i.Rn.Index(), ZeroIndex))
		b := int64(resolveOperand(s, i.Op2))
		s.Set(i.Rd.Index(), ZeroIndex, uint64(sdiv(a, b)))
	case OpCmp:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		s.Flags = subFlags(a, b)
	case OpCmn:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		s.Flags = addFlags(a, b)
	case OpTst:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveOperand(s, i.Op2)
		r := a & b
		s.Flags = state.Flags{N: int64(r) < 0, Z: r == 0, C: false, V: false}
	case OpCsel, OpCsinc, OpCsinv, OpCsneg:
		holds := i.Cond.Holds(s.Flags.N, s.Flags.Z, s.Flags.C, s.Flags.V)
		rn := s.Get(i.Rn.Index(), ZeroIndex)
		rm := s.Get(i.Op2.reg.Index(), ZeroIndex)
		var result uint64
		if holds {
			result = rn
		} else {
			switch i.Op {
			case OpCsel:
				result = rm
			case OpCsinc:
				result = rm + 1
			case OpCsinv:
				result = ^rm
			case OpCsneg:
				result = uint64(-int64(rm))
			}
		}
		s.Set(i.Rd.Index(), ZeroIndex, result)
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

// sdiv implements signed divide: 0 on a zero divisor, dividend on
// INT64_MIN / -1.
func sdiv(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	if a == -1<<63 && b == -1 {
		return a
	}
	return a / b
}

func addFlags(a, b uint64) state.Flags {
	r := a + b
	sum128 := uint64(a) + uint64(b)
	carry := sum128 < a
	sa, sb, sr := int64(a) < 0, int64(b) < 0, int64(r) < 0
	overflow := sa == sb && sr != sa
	return state.Flags{N: int64(r) < 0, Z: r == 0, C: carry, V: overflow}
}

func subFlags(a, b uint64) state.Flags {
	r := a - b
	carry := a >= b // unsigned-not-borrow
	sa, sb, sr := int64(a) < 0, int64(b) < 0, int64(r) < 0
	overflow := sa != sb && sr != sa
	return state.Flags{N: int64(r) < 0, Z: r == 0, C: carry, V: overflow}
}
