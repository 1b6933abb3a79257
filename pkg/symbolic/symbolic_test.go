package symbolic

import (
	"testing"

	"github.com/oisee/aarch64-optimizer/pkg/aarch64"
	"github.com/oisee/aarch64-optimizer/pkg/cost"
	"github.com/oisee/aarch64-optimizer/pkg/equiv"
	"github.com/oisee/aarch64-optimizer/pkg/isa"
	"github.com/oisee/aarch64-optimizer/pkg/search"
	"github.com/oisee/aarch64-optimizer/pkg/state"
)

func toISA(seq []aarch64.Instruction) []isa.Instruction {
	out := make([]isa.Instruction, len(seq))
	for i, s := range seq {
		out[i] = s
	}
	return out
}

func regPool() []isa.Register {
	regs := []aarch64.Reg{aarch64.X(0), aarch64.X(1), aarch64.X(2), aarch64.XZR}
	out := make([]isa.Register, len(regs))
	for i, r := range regs {
		out[i] = r
	}
	return out
}

func TestBinaryModeFallsBackToLinear(t *testing.T) {
	target := toISA([]aarch64.Instruction{
		aarch64.MovReg(aarch64.X(0), aarch64.X(1)),
		aarch64.Add(aarch64.X(0), aarch64.X(0), aarch64.ImmOperand(1)),
	})
	mask := state.NewMask(aarch64.ZeroIndex)
	mask.Add(0)

	base := search.Config{
		Metric:      cost.InstructionCount,
		Classify:    aarch64.Classify,
		EquivConfig: equiv.DefaultConfig(),
		Registers:   regPool(),
		Immediates:  []int64{0, 1, 2},
	}

	linear := Run(aarch64.ISA{}, aarch64.Semantics{}, target, mask, Config{Config: base, Mode: Linear})
	binary := Run(aarch64.ISA{}, aarch64.Semantics{}, target, mask, Config{Config: base, Mode: Binary})

	if linear.FoundOptimization != binary.FoundOptimization {
		t.Errorf("Binary falling back to Linear should reach the same verdict")
	}
}

func TestModeString(t *testing.T) {
	if Linear.String() != "linear" || Binary.String() != "binary" {
		t.Errorf("unexpected Mode.String() values")
	}
}
