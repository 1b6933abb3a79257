// Package ferr names the module's error kinds as sentinel errors, wrapped
// at raise sites with fmt.Errorf("%w: detail", kind) so errors.Is still
// matches after detail is attached.
package ferr

import "errors"

// Kind sentinels. Callers wrap these with fmt.Errorf("%w: detail", Kind) so
// errors.Is still matches the kind after a detail is attached.
var (
	// DisassemblyUnsupported is raised when the disassembler contract meets
	// an unknown mnemonic. Recovery: skip the instruction with a warning.
	DisassemblyUnsupported = errors.New("disassembly: unsupported mnemonic")

	// NotEncodable is raised when the assembler rejects an instruction whose
	// operand falls outside the target ISA's immediate range.
	NotEncodable = errors.New("assembler: instruction not encodable")

	// SolverTimeout / SolverUnknown are raised by the SMT engine when a
	// query exhausts its step budget without reaching UNSAT/SAT. Recovery:
	// surfaced as equiv.Unknown; the search treats it as "not proven
	// equivalent".
	SolverTimeout = errors.New("smt: solver timeout")
	SolverUnknown = errors.New("smt: solver returned unknown")

	// WindowAlignment / WindowBounds belong to the external assembler/patcher
	// contract (out of core scope) but are named here so core code that
	// surfaces them to a caller uses a consistent sentinel.
	WindowAlignment = errors.New("patch window: misaligned")
	WindowBounds    = errors.New("patch window: out of bounds")

	// InvalidImmediate is raised by live-out/immediate-list parsing.
	InvalidImmediate = errors.New("invalid immediate or register name")

	// WorkerPanic is raised (recovered, then reported) when a search worker
	// panics; the coordinator continues with the remaining workers.
	WorkerPanic = errors.New("worker: panic recovered")
)
