package isa

import "math/rand/v2"

// OpcodeMutator is an optional Generator capability implementing the
// "Opcode" proposal operator of the stochastic search: replace an instruction's
// opcode with another of compatible shape (Add↔Sub↔And↔Orr↔Eor,
// Lsl↔Lsr↔Asr, Mul↔Sdiv↔Udiv, MovReg↔MovImm). Not every backend groups its
// opcodes into swappable families, so this lives outside the mandatory
// Generator interface.
type OpcodeMutator interface {
	MutateOpcode(rng *rand.Rand, instr Instruction, registers []Register, immediates []int64) Instruction
}

// OperandMutator is an optional Generator capability implementing the
// "Operand" proposal operator of the stochastic search: mutate exactly one operand
// field (destination, or a source register/immediate) of one instruction,
// leaving the opcode unchanged.
type OperandMutator interface {
	MutateOperand(rng *rand.Rand, instr Instruction, registers []Register, immediates []int64) Instruction
}
