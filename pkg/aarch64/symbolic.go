package aarch64

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

// ExecSymbolic mirrors Exec over symbolic bitvector state:
// Add/Sub/And/Orr/Eor/Shifts/Mul map directly to their bitvector operators;
// divides guard divisor-zero; Compare/Test are no-ops on register state
// (flags are not symbolic); the Csel family collapses to `rd := rn`, a
// sound-but-incomplete approximation (see DESIGN.md).
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
	case OpOrr:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Or(b))
	case OpEor:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Xor(b))
	case OpLsl:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Shl(b))
	case OpLsr:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Lshr(b))
	case OpAsr:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Ashr(b))
	case OpMul:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.Mul(b))
	case OpUdiv:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.UDiv(b))
	case OpSdiv:
		a := s.Get(i.Rn.Index(), ZeroIndex)
		b := resolveSymbolicOperand(ctx, s, i.Op2)
		s.Set(i.Rd.Index(), ZeroIndex, a.SDiv(b))
	case OpCmp, OpCmn, OpTst:
		// No-op on register state: flags are not represented symbolically.
	case OpCsel, OpCsinc, OpCsinv, OpCsneg:
		s.Set(i.Rd.Index(), ZeroIndex, s.Get(i.Rn.Index(), ZeroIndex))
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
