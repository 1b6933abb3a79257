package aarch64

import (
	"math/rand/v2"

	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

var _ isa.OpcodeMutator = Generator{}
var _ isa.OperandMutator = Generator{}

// opcodeFamilies groups opcodes the "Opcode" proposal operator may swap
// between: Add/Sub/And/Orr/Eor, Lsl/Lsr/Asr, Mul/Sdiv/Udiv, MovReg/MovImm.
// Compare and Select families have no sibling to swap to, so they are
// absent here.
var opcodeFamilies = [][]Op{
	{OpAdd, OpSub, OpAnd, OpOrr, OpEor},
	{OpLsl, OpLsr, OpAsr},
	{OpMul, OpSdiv, OpUdiv},
	{OpMovReg, OpMovImm},
}

func familyOf(op Op) []Op {
	for _, fam := range opcodeFamilies {
		for _, o := range fam {
			if o == op {
				return fam
			}
		}
	}
	return nil
}

// MutateOpcode implements isa.OpcodeMutator: swap to another opcode in the
// same family, reshaping operands only as much as the new opcode requires
// (MovReg needs a source register where MovImm needs an immediate; logical
// ops need a register rm where Add/Sub also accept an immediate).
func (Generator) MutateOpcode(rng *rand.Rand, instr isa.Instruction, registers []isa.Register, immediates []int64) isa.Instruction {
	ai, ok := instr.(Instruction)
	if !ok {
		return instr
	}
	fam := familyOf(ai.Op)
	if len(fam) < 2 {
		return ai
	}
	regs := toReg(registers)
	randReg := func() Reg { return regs[rng.IntN(len(regs))] }
	randImm := func() int64 {
		if len(immediates) == 0 {
			return 0
		}
		return immediates[rng.IntN(len(immediates))]
	}

	newOp := fam[rng.IntN(len(fam))]
	out := ai
	out.Op = newOp

	switch newOp {
	case OpMovReg:
		out.Op2 = Operand{}
		if ai.Op2.IsRegister() {
			out.Rn = ai.Op2.Reg()
		} else {
			out.Rn = randReg()
		}
	case OpMovImm:
		out.Rn = Reg{}
		if ai.Op == OpMovReg {
			out.Op2 = ImmOperand(clampImm(randImm(), 0, 0xFFFF))
		} else if out.Op2.IsRegister() {
			out.Op2 = ImmOperand(clampImm(randImm(), 0, 0xFFFF))
		}
	case OpAnd, OpOrr, OpEor:
		if out.Op2.IsImmediate() {
			out.Op2 = RegOperand(randReg())
		}
	}

	if !out.Encodable() {
		return ai
	}
	return out
}

// MutateOperand implements isa.OperandMutator: with equal probability,
// replace the destination register or replace one source operand (register
// or immediate). An unencodable result is not retried: the original
// instruction is returned unchanged.
func (Generator) MutateOperand(rng *rand.Rand, instr isa.Instruction, registers []isa.Register, immediates []int64) isa.Instruction {
	ai, ok := instr.(Instruction)
	if !ok {
		return instr
	}
	regs := toReg(registers)
	randReg := func() Reg { return regs[rng.IntN(len(regs))] }
	randImm := func() int64 {
		if len(immediates) == 0 {
			return 0
		}
		return immediates[rng.IntN(len(immediates))]
	}

	out := ai
	if ai.hasDest() && rng.IntN(2) == 0 {
		out.Rd = randReg()
	} else if ai.Op2.IsImmediate() {
		out.Op2 = ImmOperand(randImm())
	} else if ai.Op2.IsRegister() {
		out.Op2 = RegOperand(randReg())
	} else if ai.hasRn() {
		out.Rn = randReg()
	}

	if !out.Encodable() {
		return ai
	}
	return out
}
