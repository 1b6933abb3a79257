// Package state holds the concrete and symbolic machine-state shapes
// shared across ISA backends: each backend decides which register index is
// "zero" and which is "special" (never auto-generated), but the state shape
// itself, a flat register file plus one flags record, is common.
package state

import "github.com/oisee/aarch64-optimizer/pkg/smt"

// NumRegs is the size of the generic register file. AArch64 uses indices
// 0-30 for X0-X30 and 31 for XZR; RISC-V uses 0-31 for x0-x31.
const NumRegs = 32

// Flags is the condition-flags record {N,Z,C,V}. Flags are derived
// deterministically from the most recent flag-writing instruction and are
// never symbolic; only concrete execution updates them.
type Flags struct {
	N, Z, C, V bool
}

// Concrete is the concrete machine state: a mapping from every register
// (including the zero register and the stack pointer) to a 64-bit value,
// plus one Flags record.
type Concrete struct {
	Regs  [NumRegs]uint64
	SP    uint64
	Flags Flags
}

// Get returns the value of register idx, or 0 unconditionally if idx is the
// ISA's zero register.
func (s Concrete) Get(idx, zeroIdx int) uint64 {
	if idx == zeroIdx {
		return 0
	}
	return s.Regs[idx]
}

// Set writes val to register idx, silently dropping the write if idx is the
// zero register.
func (s *Concrete) Set(idx, zeroIdx int, val uint64) {
	if idx == zeroIdx {
		return
	}
	s.Regs[idx] = val
}

// Equal reports whether two concrete states are identical in every field,
// including flags.
func (s Concrete) Equal(o Concrete) bool {
	return s == o
}

// EqualOn reports whether s and o agree on every register named by mask
// (flags are not part of live-out equivalence).
func (s Concrete) EqualOn(o Concrete, mask Mask) bool {
	for _, idx := range mask.Registers() {
		if s.Regs[idx] != o.Regs[idx] {
			return false
		}
	}
	if mask.SP && s.SP != o.SP {
		return false
	}
	return true
}

// Symbolic is the symbolic machine state: same shape as Concrete, but each
// register holds a 64-bit symbolic bitvector term. Flags are not
// represented symbolically.
type Symbolic struct {
	Regs [NumRegs]smt.BV
	SP   smt.BV
}

// NewSymbolic builds a fresh symbolic state: every register gets its own
// fresh symbolic constant except the zero register, which is bound to the
// constant-zero bitvector.
func NewSymbolic(ctx *smt.Context, prefix string, zeroIdx int) Symbolic {
	var s Symbolic
	for i := 0; i < NumRegs; i++ {
		if i == zeroIdx {
			s.Regs[i] = ctx.Const(0)
			continue
		}
		s.Regs[i] = ctx.Var(prefix + "_reg")
	}
	s.SP = ctx.Var(prefix + "_sp")
	return s
}

// Get returns the symbolic value of register idx.
func (s Symbolic) Get(idx, zeroIdx int) smt.BV {
	return s.Regs[idx]
}

// Set writes val to register idx, dropping the write if idx is the zero
// register.
func (s *Symbolic) Set(idx, zeroIdx int, val smt.BV) {
	if idx == zeroIdx {
		return
	}
	s.Regs[idx] = val
}
