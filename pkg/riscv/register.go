// Package riscv implements the RV32I/RV64I secondary profile of the ISA
// capability set, sharing pkg/isa/pkg/state/pkg/smt/pkg/cost/pkg/equiv with
// the AArch64 profile in pkg/aarch64. RISC-V's register file is flat and
// flag-free: 32 integer registers x0-x31, with x0 hardwired to zero (no
// separate XZR alias the way AArch64 needs one).
package riscv

import "fmt"

// NumGeneral is the register file size (x0-x31, x0 hardwired zero).
const NumGeneral = 32

// ZeroIndex is x0's dense index: unlike AArch64's XZR, RISC-V's zero
// register sits inside the ordinary register file rather than beside it.
const ZeroIndex = 0

// Reg is a single RV32I/RV64I integer register.
type Reg struct {
	idx int
}

// X builds a handle for register n (0-31). X(0) is the hardwired-zero
// register.
func X(n int) Reg { return Reg{idx: n} }

func (r Reg) Index() int      { return r.idx }
func (r Reg) IsZero() bool    { return r.idx == ZeroIndex }
func (r Reg) IsSpecial() bool { return false }

func (r Reg) String() string { return fmt.Sprintf("x%d", r.idx) }

// AllRegisters returns x0-x31, the set the generator substitutes into
// register operand slots.
func AllRegisters() []Reg {
	out := make([]Reg, NumGeneral)
	for i := range out {
		out[i] = X(i)
	}
	return out
}
