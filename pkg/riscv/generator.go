package riscv

import (
	"math/rand/v2"

	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

// Generator implements isa.Generator for the RISC-V profile.
type Generator struct{}

var _ isa.Generator = Generator{}

func (Generator) OpcodeCount() int { return OpCodeCount }

// GenerateAll enumerates every instruction reachable by substituting
// registers into every register slot and immediates into every immediate
// slot, the same scheme as pkg/aarch64.Generator.GenerateAll. Unlike
// AArch64 there is no Compare or Select family: Slt/Sltu cover that ground
// with an ordinary register-writing opcode.
func (Generator) GenerateAll(registers []isa.Register, immediates []int64) []isa.Instruction {
	regs := toReg(registers)
	var out []Instruction

	for _, rd := range regs {
		for _, imm := range immediates {
			out = append(out, MovImm(rd, imm))
		}
		for _, rn := range regs {
			out = append(out, MovReg(rd, rn))
		}
	}

	binaryImm := func(build func(rd, rn Reg, op2 Operand) Instruction) {
		for _, rd := range regs {
			for _, rn := range regs {
				for _, rm := range regs {
					out = append(out, build(rd, rn, RegOperand(rm)))
				}
				for _, imm := range immediates {
					out = append(out, build(rd, rn, ImmOperand(imm)))
				}
			}
		}
	}
	binaryImm(Add)
	binaryImm(Sub)

	logical := func(build func(rd, rn Reg, op2 Operand) Instruction) {
		for _, rd := range regs {
			for _, rn := range regs {
				for _, rm := range regs {
					out = append(out, build(rd, rn, RegOperand(rm)))
				}
			}
		}
	}
	logical(And)
	logical(Or)
	logical(Xor)

	shiftFamily := func(build func(rd, rn Reg, op2 Operand) Instruction) {
		for _, rd := range regs {
			for _, rn := range regs {
				for _, amt := range isa.ShiftLadder {
					out = append(out, build(rd, rn, ImmOperand(amt)))
				}
			}
		}
	}
	shiftFamily(Sll)
	shiftFamily(Srl)
	shiftFamily(Sra)

	registerTernary := func(build func(rd, rn, rm Reg) Instruction) {
		for _, rd := range regs {
			for _, rn := range regs {
				for _, rm := range regs {
					out = append(out, build(rd, rn, rm))
				}
			}
		}
	}
	registerTernary(Slt)
	registerTernary(Sltu)
	registerTernary(Mul)
	registerTernary(Div)
	registerTernary(Divu)

	result := make([]isa.Instruction, 0, len(out))
	for _, i := range out {
		if i.Encodable() {
			result = append(result, i)
		}
	}
	return result
}

// GenerateRandom samples one instruction uniformly over the opcode family,
// then samples operand slots, clamping immediates/shift amounts into their
// encodable range.
func (Generator) GenerateRandom(rng *rand.Rand, registers []isa.Register, immediates []int64) isa.Instruction {
	regs := toReg(registers)
	randReg := func() Reg { return regs[rng.IntN(len(regs))] }
	randImm := func() int64 {
		if len(immediates) == 0 {
			return 0
		}
		return immediates[rng.IntN(len(immediates))]
	}
	randShift := func() int64 { return isa.ShiftLadder[rng.IntN(len(isa.ShiftLadder))] }

	op := Op(rng.IntN(OpCodeCount))
	var instr Instruction
	switch op {
	case OpMovReg:
		instr = MovReg(randReg(), randReg())
	case OpMovImm:
		instr = MovImm(randReg(), clampImm(randImm(), -2048, 2047))
	case OpAdd, OpSub:
		var op2 Operand
		if rng.IntN(2) == 0 {
			op2 = RegOperand(randReg())
		} else {
			op2 = ImmOperand(clampImm(randImm(), -2048, 2047))
		}
		instr = buildBinary(op, randReg(), randReg(), op2)
	case OpAnd, OpOr, OpXor:
		instr = buildBinary(op, randReg(), randReg(), RegOperand(randReg()))
	case OpSll, OpSrl, OpSra:
		instr = buildBinary(op, randReg(), randReg(), ImmOperand(randShift()))
	case OpSlt:
		instr = Slt(randReg(), randReg(), randReg())
	case OpSltu:
		instr = Sltu(randReg(), randReg(), randReg())
	case OpMul:
		instr = Mul(randReg(), randReg(), randReg())
	case OpDiv:
		instr = Div(randReg(), randReg(), randReg())
	case OpDivu:
		instr = Divu(randReg(), randReg(), randReg())
	}
	if !instr.Encodable() {
		return Generator{}.GenerateRandom(rng, registers, immediates)
	}
	return instr
}

// Mutate applies one of three uniformly-selected strategies: replace the
// whole instruction, replace the destination register, or replace a source
// operand. Every RISC-V family writes a destination, so "replace
// destination" never degenerates the way it does for AArch64's Compare
// family.
func (Generator) Mutate(rng *rand.Rand, instr isa.Instruction, registers []isa.Register, immediates []int64) isa.Instruction {
	ai, ok := instr.(Instruction)
	if !ok {
		return Generator{}.GenerateRandom(rng, registers, immediates)
	}
	regs := toReg(registers)
	randReg := func() Reg { return regs[rng.IntN(len(regs))] }

	switch rng.IntN(3) {
	case 0:
		return Generator{}.GenerateRandom(rng, registers, immediates)
	case 1:
		ai.Rd = randReg()
		if ai.Encodable() {
			return ai
		}
		return Generator{}.GenerateRandom(rng, registers, immediates)
	default:
		if ai.Op2.IsRegister() {
			ai.Op2 = RegOperand(randReg())
		} else if ai.hasRn() {
			ai.Rn = randReg()
		}
		if ai.Encodable() {
			return ai
		}
		return Generator{}.GenerateRandom(rng, registers, immediates)
	}
}

func buildBinary(op Op, rd, rn Reg, op2 Operand) Instruction {
	switch op {
	case OpAdd:
		return Add(rd, rn, op2)
	case OpSub:
		return Sub(rd, rn, op2)
	case OpAnd:
		return And(rd, rn, op2)
	case OpOr:
		return Or(rd, rn, op2)
	case OpXor:
		return Xor(rd, rn, op2)
	case OpSll:
		return Sll(rd, rn, op2)
	case OpSrl:
		return Srl(rd, rn, op2)
	case OpSra:
		return Sra(rd, rn, op2)
	default:
		return Instruction{Op: op, Rd: rd, Rn: rn, Op2: op2}
	}
}

func clampImm(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func toReg(registers []isa.Register) []Reg {
	out := make([]Reg, len(registers))
	for i, r := range registers {
		if reg, ok := r.(Reg); ok {
			out[i] = reg
		}
	}
	return out
}
