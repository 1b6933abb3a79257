package riscv

import (
	"github.com/oisee/aarch64-optimizer/pkg/smt"
	"github.com/oisee/aarch64-optimizer/pkg/state"
)

// resolveSymbolicOperand reads an Operand against a symbolic state, building
// a fresh constant bitvector for an Immediate operand.
func resolveSymbolicOperand(ctx *smt.Context, s state.Symbolic, op Operand) smt.BV {
	if op.IsImmediate() {
		return ctx.Const(uint64(op.imm))
	}
	return s.Get(op.reg.Index(), ZeroIndex)
}

// ExecSymbolic mirrors Exec over symbolic bitvector state. Slt/Sltu lower
// to smt.BV's signed/unsigned comparison primitives,
// selecting the 0/1 result bitvector via smt.Ite, the RISC-V analogue of
// AArch64's flag-producing Compare family, since here the comparison result
// lands directly in a register instead of a flags record.
func ExecSymbolic(ctx *smt.Context, s state.Symbolic, i Instruction) state.Symbolic {
	switch i.Op {
	case OpMovReg:
		s.Set(i.Rd.Index(), ZeroIndex, s.Get(i.Rn.Index(), ZeroIndex))
	case OpMovImm:
		s.Set(i.Rd.Index(), ZeroIndex, ctx.Const(uint64(i.Op2.imm)))
	case OpAdd:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Add(b))
	case OpSub:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Sub(b))
	case OpAnd:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.And(b))
	case OpOr:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Or(b))
	case OpXor:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Xor(b))
	case OpSll:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Shl(b))
	case OpSrl:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Lshr(b))
	case OpSra:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Ashr(b))
	case OpSlt:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, smt.Ite(a.SLt(b), ctx.Const(1), ctx.Const(0)))
	case OpSltu:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, smt.Ite(a.ULt(b), ctx.Const(1), ctx.Const(0)))
	case OpMul:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Mul(b))
	case OpDiv:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		// smt.BV.SDiv returns 0 on a zero divisor; RISC-V's DIV returns -1,
		// so the zero-divisor case is special-cased here like DIVU's below.
		negOne := ctx.Const(^uint64(0))
		isZero := b.Eq(ctx.Const(0))
		s.Set(i.Rd.Index(), ZeroIndex, smt.Ite(isZero, negOne, a.SDiv(b)))
	case OpDivu:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		// smt.BV.UDiv returns 0 on a zero divisor; RISC-V's DIVU returns
		// all-ones, so the zero-divisor case is special-cased here rather
		// than in the shared solver primitive.
		allOnes := ctx.Const(^uint64(0))
		isZero := b.Eq(ctx.Const(0))
		s.Set(i.Rd.Index(), ZeroIndex, smt.Ite(isZero, allOnes, a.UDiv(b)))
	}
	return s
}

// ExecSymbolicSeq folds ExecSymbolic over a sequence, left to right.
func ExecSymbolicSeq(ctx *smt.Context, s state.Symbolic, seq []Instruction) state.Symbolic {
	for _, i := range seq {
		s = ExecSymbolic(ctx, s, i)
	}
	return s
}
