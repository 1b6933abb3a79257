package riscv

import (
	"github.com/oisee/aarch64-optimizer/pkg/isa"
	"github.com/oisee/aarch64-optimizer/pkg/smt"
	"github.com/oisee/aarch64-optimizer/pkg/state"
)

// Semantics implements isa.Semantics for the RISC-V profile, adapting the
// concrete Exec/ExecSymbolic interpreters to the isa.Instruction capability.
type Semantics struct{}

var _ isa.Semantics = Semantics{}

func (Semantics) ZeroIndex() int { return ZeroIndex }

func (Semantics) ApplyConcrete(s state.Concrete, i isa.Instruction) state.Concrete {
	return Exec(s, i.(Instruction))
}

func (Semantics) ApplySymbolic(ctx *smt.Context, s state.Symbolic, i isa.Instruction) state.Symbolic {
	return ExecSymbolic(ctx, s, i.(Instruction))
}
