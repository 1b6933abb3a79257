// Package equiv decides whether two instruction sequences are equivalent
// modulo a live-out mask, in three stages: a concrete test-vector filter, an
// optional fast-only shortcut, and a final SMT query whose UNSAT result is
// the proof. Sequences are equivalent iff, for every initial register state,
// the final values of the live-out registers agree.
package equiv

import (
	"fmt"
	"math/rand/v2"

	"github.com/oisee/aarch64-optimizer/pkg/isa"
	"github.com/oisee/aarch64-optimizer/pkg/smt"
	"github.com/oisee/aarch64-optimizer/pkg/state"
)

// Status is the checker's verdict.
type Status int

const (
	Equivalent Status = iota
	NotEquivalent
	NotEquivalentByTest
	Unknown
)

func (s Status) String() string {
	switch s {
	case Equivalent:
		return "equivalent"
	case NotEquivalent:
		return "not-equivalent"
	case NotEquivalentByTest:
		return "not-equivalent-by-test"
	case Unknown:
		return "unknown"
	default:
		return "?"
	}
}

// Result is the outcome of Check: a Status plus the payload that goes with
// it (a counterexample for NotEquivalentByTest, a reason string for
// Unknown).
type Result struct {
	Status        Status
	Counterexample *state.Concrete // set iff Status == NotEquivalentByTest
	Reason         string          // set iff Status == Unknown
}

// Config holds the tunables of the equivalence checker: the random-test
// battery size, the SMT solver's step budget (standing in for a per-query
// millisecond timeout), and the fast-only shortcut that skips the SMT stage
// entirely.
type Config struct {
	NumRandomTests  int
	SolverStepLimit int
	FastOnly        bool
}

// DefaultConfig is a modest random battery plus the fixed edge-case suite,
// a generous solver step budget, and full (not fast-only) checking.
func DefaultConfig() Config {
	return Config{NumRandomTests: 16, SolverStepLimit: 200_000, FastOnly: false}
}

// Check runs the three-stage equivalence decision for two sequences over
// one ISA profile (identified by its Semantics and zero register index).
func Check(isaDef isa.ISA, sem isa.Semantics, a, b []isa.Instruction, mask state.Mask, cfg Config) Result {
	if cex, ok := testFilter(sem, a, b, mask, cfg.NumRandomTests); !ok {
		return Result{Status: NotEquivalentByTest, Counterexample: cex}
	}
	if cfg.FastOnly {
		return Result{Status: Equivalent}
	}
	return smtQuery(isaDef, sem, a, b, mask, cfg.SolverStepLimit)
}

// TestFilter runs the concrete test-vector stage standalone (no SMT
// follow-up), for callers like pkg/stoke that need a cheap pre-filter before
// deciding whether a proposal is even worth an SMT call.
func TestFilter(sem isa.Semantics, a, b []isa.Instruction, mask state.Mask, numRandom int) (*state.Concrete, bool) {
	return testFilter(sem, a, b, mask, numRandom)
}

// testFilter runs both sequences against N random states plus the fixed
// edge-case suite. It returns the first
// disagreeing state (and false) on mismatch, or (nil, true) if every state
// agreed on every live-out register.
func testFilter(sem isa.Semantics, a, b []isa.Instruction, mask state.Mask, numRandom int) (*state.Concrete, bool) {
	for _, s := range testStates(sem.ZeroIndex(), mask, numRandom) {
		outA := isa.ApplyConcreteSeq(sem, s, a)
		outB := isa.ApplyConcreteSeq(sem, s, b)
		if !outA.EqualOn(outB, mask) {
			cex := s
			return &cex, false
		}
	}
	return nil, true
}

// edgeValues is the fixed boundary suite: 0, 1, UINT64_MAX, INT64_MAX,
// INT64_MIN, power-of-two boundaries, and alternating-bit patterns.
var edgeValues = buildEdgeValues()

func buildEdgeValues() []uint64 {
	vals := []uint64{
		0,
		1,
		^uint64(0),             // UINT64_MAX
		uint64(1<<63) - 1,      // INT64_MAX
		uint64(1) << 63,        // INT64_MIN
		0xAAAAAAAAAAAAAAAA,     // alternating 1010...
		0x5555555555555555,     // alternating 0101...
	}
	for k := 0; k < 64; k++ {
		vals = append(vals, uint64(1)<<uint(k))
	}
	return vals
}

// testStates builds the combined test battery: numRandom uniformly random
// states, one edge state per edge value (every general register set to that
// value), and the two-register cross product of edge values over the first
// two live-out registers.
func testStates(zeroIdx int, mask state.Mask, numRandom int) []state.Concrete {
	rng := rand.New(rand.NewPCG(0x5eed, 0xc0ffee))
	var out []state.Concrete

	for i := 0; i < numRandom; i++ {
		out = append(out, randomState(rng, zeroIdx))
	}

	for _, v := range edgeValues {
		out = append(out, uniformState(v, zeroIdx))
	}

	liveRegs := mask.Registers()
	if len(liveRegs) >= 2 {
		r0, r1 := liveRegs[0], liveRegs[1]
		for _, a := range edgeValues {
			for _, b := range edgeValues {
				s := uniformState(0, zeroIdx)
				s.Set(r0, zeroIdx, a)
				s.Set(r1, zeroIdx, b)
				out = append(out, s)
			}
		}
	}
	return out
}

func randomState(rng *rand.Rand, zeroIdx int) state.Concrete {
	var s state.Concrete
	for i := 0; i < state.NumRegs; i++ {
		s.Set(i, zeroIdx, rng.Uint64())
	}
	s.SP = rng.Uint64()
	return s
}

func uniformState(v uint64, zeroIdx int) state.Concrete {
	var s state.Concrete
	for i := 0; i < state.NumRegs; i++ {
		s.Set(i, zeroIdx, v)
	}
	s.SP = v
	return s
}

// smtQuery is the proof stage: build a symbolic initial state, apply both
// sequences symbolically, assert the disjunction of "final live-out values
// differ", and issue one Check call. UNSAT means no differing state exists.
func smtQuery(isaDef isa.ISA, sem isa.Semantics, a, b []isa.Instruction, mask state.Mask, stepLimit int) Result {
	ctx := smt.NewContext()
	initial := state.NewSymbolic(ctx, "in", sem.ZeroIndex())

	outA := isa.ApplySymbolicSeq(sem, ctx, initial, a)
	outB := isa.ApplySymbolicSeq(sem, ctx, initial, b)

	solver := smt.NewSolver(ctx, stepLimit)

	var diff smt.Bool
	haveDiff := false
	addDiff := func(x, y smt.BV) {
		d := x.Eq(y).Not()
		if !haveDiff {
			diff = d
			haveDiff = true
		} else {
			diff = ctx.BoolOr(diff, d)
		}
	}
	for _, idx := range mask.Registers() {
		addDiff(outA.Get(idx, sem.ZeroIndex()), outB.Get(idx, sem.ZeroIndex()))
	}
	if mask.SP {
		addDiff(outA.SP, outB.SP)
	}
	if !haveDiff {
		// Nothing is live-out: every state trivially agrees.
		return Result{Status: Equivalent}
	}

	solver.Assert(diff)
	switch solver.Check() {
	case smt.Unsat:
		return Result{Status: Equivalent}
	case smt.Sat:
		return Result{Status: NotEquivalent}
	default:
		return Result{Status: Unknown, Reason: fmt.Sprintf("solver exceeded step budget %d", stepLimit)}
	}
}
