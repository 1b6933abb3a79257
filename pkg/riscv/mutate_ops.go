package riscv

import (
	"math/rand/v2"

	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

var _ isa.OpcodeMutator = Generator{}
var _ isa.OperandMutator = Generator{}

// opcodeFamilies groups opcodes the "Opcode" proposal operator may swap
// between: Add/Sub/And/Or/Xor, Sll/Srl/Sra, Slt/Sltu, Mul/Div/Divu,
// MovReg/MovImm. Mirrors pkg/aarch64.opcodeFamilies, split further because
// Slt/Sltu can't safely swap into the Mul/Div/Divu family's immediate-free
// shape without changing meaning more than a same-family swap should.
var opcodeFamilies = [][]Op{
	{OpAdd, OpSub, OpAnd, OpOr, OpXor},
	{OpSll, OpSrl, OpSra},
	{OpSlt, OpSltu},
	{OpMul, OpDiv, OpDivu},
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
// same family, reshaping operands only as much as the new opcode requires.
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
			out.Op2 = ImmOperand(clampImm(randImm(), -2048, 2047))
		} else if out.Op2.IsRegister() {
			out.Op2 = ImmOperand(clampImm(randImm(), -2048, 2047))
		}
	case OpAnd, OpOr, OpXor, OpSlt, OpSltu, OpMul, OpDiv, OpDivu:
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
// replace the destination register or replace one source operand.
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
	if rng.IntN(2) == 0 {
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
