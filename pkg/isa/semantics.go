package isa

import (
	"github.com/oisee/aarch64-optimizer/pkg/smt"
	"github.com/oisee/aarch64-optimizer/pkg/state"
)

// Semantics is the capability that lets pkg/equiv, pkg/search, pkg/stoke and
// pkg/symbolic apply a backend's concrete and symbolic interpreters without
// depending on that backend's concrete instruction type: the same
// "capability trait" posture as Register/Operand/Instruction above, applied
// to the semantic layer instead of the data model.
type Semantics interface {
	// ZeroIndex is the dense register index that always reads zero.
	ZeroIndex() int
	// ApplyConcrete runs one instruction against a concrete state.
	ApplyConcrete(s state.Concrete, i Instruction) state.Concrete
	// ApplySymbolic runs one instruction against a symbolic state within ctx.
	ApplySymbolic(ctx *smt.Context, s state.Symbolic, i Instruction) state.Symbolic
}

// ApplyConcreteSeq folds Semantics.ApplyConcrete over a sequence, left to
// right.
func ApplyConcreteSeq(sem Semantics, s state.Concrete, seq []Instruction) state.Concrete {
	for _, i := range seq {
		s = sem.ApplyConcrete(s, i)
	}
	return s
}

// ApplySymbolicSeq folds Semantics.ApplySymbolic over a sequence, left to
// right.
func ApplySymbolicSeq(sem Semantics, ctx *smt.Context, s state.Symbolic, seq []Instruction) state.Symbolic {
	for _, i := range seq {
		s = sem.ApplySymbolic(ctx, s, i)
	}
	return s
}
