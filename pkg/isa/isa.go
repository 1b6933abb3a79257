// Package isa defines the capability traits shared by every backend
// (pkg/aarch64, pkg/riscv): small interfaces for registers, operands,
// instructions, and the generator that enumerates/mutates them. The search
// and semantic layers depend only on these interfaces, never on a concrete
// ISA, so the same algorithms run over multiple backends.
package isa

import "math/rand/v2"

// Register is a capability set for a single architectural register.
type Register interface {
	// Index is the register's position in the ISA's dense register file.
	Index() int
	// IsZero reports whether this is the read-as-zero register.
	IsZero() bool
	// IsSpecial reports whether this register is never auto-generated by
	// search (e.g. the stack pointer).
	IsSpecial() bool
	String() string
}

// Operand is a sum of Register or Immediate.
type Operand interface {
	IsRegister() bool
	IsImmediate() bool
	Register() Register // valid iff IsRegister()
	Immediate() int64    // valid iff IsImmediate()
	String() string
}

// CondCode is a 4-bit condition-code enumeration, used only by Select-family
// instructions.
type CondCode uint8

// Instruction is a capability set over a single instruction of the
// tagged-union data model. Implementations are small value types.
type Instruction interface {
	// Opcode is a dense, small identifier suitable for statistics bucketing.
	Opcode() int
	Mnemonic() string
	// Dest returns the destination register and true, or (nil, false) for
	// instructions with no destination (compares).
	Dest() (Register, bool)
	// Sources returns every register read by this instruction.
	Sources() []Register
	ReadsFlags() bool
	WritesFlags() bool
	// Encodable reports whether this instruction's operands fall within the
	// target ISA's machine-code immediate ranges.
	Encodable() bool
}

// Generator enumerates, samples, and mutates instructions for one ISA.
type Generator interface {
	// GenerateAll enumerates every instruction reachable by substituting
	// registers and immediates into every operand/immediate slot. Order is
	// stable and deterministic; duplicates are not removed.
	GenerateAll(registers []Register, immediates []int64) []Instruction
	// GenerateRandom samples a single instruction uniformly over the opcode
	// family, then samples operand slots, retrying/clamping until the
	// result is encodable.
	GenerateRandom(rng *rand.Rand, registers []Register, immediates []int64) Instruction
	// Mutate applies one of three strategies (replace instruction, replace
	// destination, replace a source operand), selected uniformly.
	Mutate(rng *rand.Rand, instr Instruction, registers []Register, immediates []int64) Instruction
	// OpcodeCount is the number of dense opcode identifiers this ISA uses.
	OpcodeCount() int
}

// ISA bundles the register file, zero register, width, and generator for one
// target architecture.
type ISA interface {
	Name() string
	Registers() []Register
	ZeroRegister() Register
	// RegisterWidth is the register width in bits (64 for both profiles
	// covered here).
	RegisterWidth() int
	// InstructionSizeBytes is the fixed machine-code instruction size, or 0
	// if instructions are variably sized.
	InstructionSizeBytes() int
	Generator() Generator
}

// ShiftLadder is the fixed set of shift-immediate values the generator
// substitutes into shift-amount slots.
var ShiftLadder = []int64{0, 1, 2, 4, 8, 16, 32}
