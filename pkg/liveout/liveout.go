// Package liveout parses live-out register lists: comma/space-separated
// register names, case-insensitive, accepting x0..x30, xzr, sp, and the
// fp/lr ABI aliases for the AArch64 profile, plus plain x0..x31 for RISC-V.
package liveout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oisee/aarch64-optimizer/pkg/aarch64"
	"github.com/oisee/aarch64-optimizer/pkg/ferr"
	"github.com/oisee/aarch64-optimizer/pkg/riscv"
	"github.com/oisee/aarch64-optimizer/pkg/state"
)

// Parse parses a comma/space-separated register list into a live-out mask
// for the AArch64 profile. Accepts x0..x30, xzr, sp, and the ABI aliases
// fp (X29) and lr (X30). xzr insertions are silently dropped by
// state.Mask.Add.
func Parse(text string) (state.Mask, error) {
	mask := state.NewMask(aarch64.ZeroIndex)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return mask, fmt.Errorf("%w: empty live-out list", ferr.InvalidImmediate)
	}
	for _, f := range fields {
		idx, isSP, err := parseRegisterName(f)
		if err != nil {
			return state.Mask{}, err
		}
		if isSP {
			mask.AddSP()
			continue
		}
		mask.Add(idx)
	}
	return mask, nil
}

// ParseRegister resolves a single general-register token (x0..x30, xzr, and
// the fp/lr ABI aliases) to an aarch64.Reg, for callers like pkg/asmtext that
// parse operand text rather than live-out lists. It rejects "sp" since
// aarch64.Instruction's register fields never name the stack pointer.
func ParseRegister(tok string) (aarch64.Reg, error) {
	idx, isSP, err := parseRegisterName(tok)
	if err != nil {
		return aarch64.Reg{}, err
	}
	if isSP {
		return aarch64.Reg{}, fmt.Errorf("%w: sp is not a general register operand", ferr.InvalidImmediate)
	}
	return aarch64.X(idx), nil
}

// ParseRISCV parses a comma/space-separated register list into a live-out
// mask for the RISC-V profile: plain x0..x31 tokens only, no ABI aliases
// (the secondary profile doesn't need them for the contracts this module
// exposes).
func ParseRISCV(text string) (state.Mask, error) {
	mask := state.NewMask(riscv.ZeroIndex)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return mask, fmt.Errorf("%w: empty live-out list", ferr.InvalidImmediate)
	}
	for _, f := range fields {
		lower := strings.ToLower(strings.TrimSpace(f))
		if !strings.HasPrefix(lower, "x") {
			return state.Mask{}, fmt.Errorf("%w: unrecognized register %q", ferr.InvalidImmediate, f)
		}
		n, err := strconv.Atoi(lower[1:])
		if err != nil || n < 0 || n >= riscv.NumGeneral {
			return state.Mask{}, fmt.Errorf("%w: unrecognized register %q", ferr.InvalidImmediate, f)
		}
		mask.Add(n)
	}
	return mask, nil
}

// parseRegisterName resolves one register token to a dense index, or
// reports isSP for the stack pointer (which has no dense index).
func parseRegisterName(tok string) (idx int, isSP bool, err error) {
	lower := strings.ToLower(strings.TrimSpace(tok))
	switch lower {
	case "":
		return 0, false, fmt.Errorf("%w: empty register name", ferr.InvalidImmediate)
	case "xzr", "zr":
		return aarch64.ZeroIndex, false, nil
	case "sp":
		return 0, true, nil
	case "fp":
		return 29, false, nil
	case "lr":
		return 30, false, nil
	}
	if !strings.HasPrefix(lower, "x") {
		return 0, false, fmt.Errorf("%w: unrecognized register %q", ferr.InvalidImmediate, tok)
	}
	n, err := strconv.Atoi(lower[1:])
	if err != nil || n < 0 || n > 30 {
		return 0, false, fmt.Errorf("%w: unrecognized register %q", ferr.InvalidImmediate, tok)
	}
	return n, false, nil
}
