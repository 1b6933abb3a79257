package aarch64

import (
	"github.com/oisee/aarch64-optimizer/pkg/cost"
	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

// Classify buckets an instruction into the three-tier ALU/multiply/divide
// latency split. It satisfies cost.Classifier by type-asserting back to the
// concrete instruction, the same adapter pattern as Semantics.
func Classify(instr isa.Instruction) cost.LatencyClass {
	i := instr.(Instruction)
	switch i.Op {
	case OpMul:
		return cost.ClassMultiply
	case OpSdiv, OpUdiv:
		return cost.ClassDivide
	default:
		return cost.ClassALU
	}
}

// InstructionSizeBytes is the fixed AArch64 instruction width.
const InstructionSizeBytes = 4
