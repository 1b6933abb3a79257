package aarch64

import (
	"math/rand/v2"

	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

// Generator implements isa.Generator for the AArch64 profile.
type Generator struct{}

var _ isa.Generator = Generator{}

func (Generator) OpcodeCount() int { return OpCodeCount }

// GenerateAll enumerates every instruction reachable by substituting
// registers into every register slot and immediates (plus the shift ladder)
// into every immediate slot. Order is stable: opcodes in declaration order,
// then rd, then rn, then rm/imm, except that the move family is grouped by
// rd (every MovImm immediate, then every MovReg source, for each rd).
func (Generator) GenerateAll(registers []isa.Register, immediates []int64) []isa.Instruction {
	regs := toReg(registers)
	var out []isa.Instruction

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
	logical(Orr)
	logical(Eor)

	shiftFamily := func(build func(rd, rn Reg, op2 Operand) Instruction) {
		for _, rd := range regs {
			for _, rn := range regs {
				for _, amt := range isa.ShiftLadder {
					out = append(out, build(rd, rn, ImmOperand(amt)))
				}
			}
		}
	}
	shiftFamily(Lsl)
	shiftFamily(Lsr)
	shiftFamily(Asr)

	multiplicative := func(build func(rd, rn, rm Reg) Instruction) {
		for _, rd := range regs {
			for _, rn := range regs {
				for _, rm := range regs {
					out = append(out, build(rd, rn, rm))
				}
			}
		}
	}
	multiplicative(Mul)
	multiplicative(Sdiv)
	multiplicative(Udiv)

	compare := func(build func(rn Reg, op2 Operand) Instruction) {
		for _, rn := range regs {
			for _, rm := range regs {
				out = append(out, build(rn, RegOperand(rm)))
			}
			for _, imm := range immediates {
				out = append(out, build(rn, ImmOperand(imm)))
			}
		}
	}
	compare(Cmp)
	compare(Cmn)
	for _, rn := range regs {
		for _, rm := range regs {
			out = append(out, Tst(rn, RegOperand(rm)))
		}
	}

	selectFamily := func(build func(rd, rn, rm Reg, cond CondCode) Instruction) {
		for _, rd := range regs {
			for _, rn := range regs {
				for _, rm := range regs {
					for c := CondEQ; c <= CondNV; c++ {
						out = append(out, build(rd, rn, rm, c))
					}
				}
			}
		}
	}
	selectFamily(Csel)
	selectFamily(Csinc)
	selectFamily(Csinv)
	selectFamily(Csneg)

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
	randCond := func() CondCode { return CondCode(rng.IntN(int(CondNV) + 1)) }

	op := Op(rng.IntN(OpCodeCount))
	var instr Instruction
	switch op {
	case OpMovReg:
		instr = MovReg(randReg(), randReg())
	case OpMovImm:
		instr = MovImm(randReg(), clampImm(randImm(), 0, 0xFFFF))
	case OpAdd, OpSub, OpCmp, OpCmn:
		var op2 Operand
		if rng.IntN(2) == 0 {
			op2 = RegOperand(randReg())
		} else {
			op2 = ImmOperand(clampImm(randImm(), 0, 0xFFF))
		}
		instr = buildBinary(op, randReg(), randReg(), op2)
	case OpAnd, OpOrr, OpEor, OpTst:
		instr = buildBinary(op, randReg(), randReg(), RegOperand(randReg()))
	case OpLsl, OpLsr, OpAsr:
		instr = buildBinary(op, randReg(), randReg(), ImmOperand(randShift()))
	case OpMul:
		instr = Mul(randReg(), randReg(), randReg())
	case OpSdiv:
		instr = Sdiv(randReg(), randReg(), randReg())
	case OpUdiv:
		instr = Udiv(randReg(), randReg(), randReg())
	case OpCsel:
		instr = Csel(randReg(), randReg(), randReg(), randCond())
	case OpCsinc:
		instr = Csinc(randReg(), randReg(), randReg(), randCond())
	case OpCsinv:
		instr = Csinv(randReg(), randReg(), randReg(), randCond())
	case OpCsneg:
		instr = Csneg(randReg(), randReg(), randReg(), randCond())
	}
	if !instr.Encodable() {
		// Draw a fresh instruction (new opcode and operands) from scratch.
		return Generator{}.GenerateRandom(rng, registers, immediates)
	}
	return instr
}

// Mutate applies one of three uniformly-selected strategies: replace the
// whole instruction, replace the destination register, or replace a source
// operand. A compare instruction has no destination, so "replace
// destination" degenerates to "replace entire instruction".
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
		if !ai.hasDest() {
			return Generator{}.GenerateRandom(rng, registers, immediates)
		}
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
	case OpOrr:
		return Orr(rd, rn, op2)
	case OpEor:
		return Eor(rd, rn, op2)
	case OpLsl:
		return Lsl(rd, rn, op2)
	case OpLsr:
		return Lsr(rd, rn, op2)
	case OpAsr:
		return Asr(rd, rn, op2)
	case OpCmp:
		return Cmp(rn, op2)
	case OpCmn:
		return Cmn(rn, op2)
	case OpTst:
		return Tst(rn, op2)
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
