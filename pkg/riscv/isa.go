package riscv

import "github.com/oisee/aarch64-optimizer/pkg/isa"

// ISA implements isa.ISA for the RV32I/RV64I secondary profile.
type ISA struct{}

var _ isa.ISA = ISA{}

func (ISA) Name() string { return "riscv" }

func (ISA) Registers() []isa.Register {
	regs := AllRegisters()
	out := make([]isa.Register, len(regs))
	for i, r := range regs {
		out[i] = r
	}
	return out
}

func (ISA) ZeroRegister() isa.Register { return X(ZeroIndex) }
func (ISA) RegisterWidth() int         { return 64 }
func (ISA) InstructionSizeBytes() int  { return InstructionSizeBytes }
func (ISA) Generator() isa.Generator   { return Generator{} }
