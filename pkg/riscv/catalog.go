package riscv

import (
	"github.com/oisee/aarch64-optimizer/pkg/cost"
	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

// Classify buckets an instruction into the same three-tier ALU/multiply/
// divide split pkg/aarch64.Classify uses, satisfying cost.Classifier via the
// same type-assertion adapter.
func Classify(instr isa.Instruction) cost.LatencyClass {
	i := instr.(Instruction)
	switch i.Op {
	case OpMul:
		return cost.ClassMultiply
	case OpDiv, OpDivu:
		return cost.ClassDivide
	default:
		return cost.ClassALU
	}
}

// InstructionSizeBytes is the fixed RV32I/RV64I instruction width (the
// compressed "C" extension is out of scope).
const InstructionSizeBytes = 4
