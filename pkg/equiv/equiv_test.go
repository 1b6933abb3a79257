package equiv

import (
	"testing"

	"github.com/oisee/aarch64-optimizer/pkg/aarch64"
	"github.com/oisee/aarch64-optimizer/pkg/isa"
	"github.com/oisee/aarch64-optimizer/pkg/state"
)

func toISA(seq []aarch64.Instruction) []isa.Instruction {
	out := make([]isa.Instruction, len(seq))
	for i, s := range seq {
		out[i] = s
	}
	return out
}

func liveOut(regs ...int) state.Mask {
	m := state.NewMask(aarch64.ZeroIndex)
	for _, r := range regs {
		m.Add(r)
	}
	return m
}

var sem = aarch64.Semantics{}
var isaDef = aarch64.ISA{}

// S1: MovImm{X0,0} is equivalent to Eor{X0,X0,X0} (same cost under
// InstructionCount, so not an "optimization", but Check must say Equivalent).
func TestS1_MovZeroEquivalentToSelfXor(t *testing.T) {
	a := toISA([]aarch64.Instruction{aarch64.MovImm(aarch64.X(0), 0)})
	b := toISA([]aarch64.Instruction{aarch64.Eor(aarch64.X(0), aarch64.X(0), aarch64.RegOperand(aarch64.X(0)))})
	res := Check(isaDef, sem, a, b, liveOut(0), DefaultConfig())
	if res.Status != Equivalent {
		t.Fatalf("S1: got %v, want Equivalent", res.Status)
	}
}

// S3: MovImm{X0,1} vs MovImm{X0,2} must fail the test filter immediately.
func TestS3_DistinctImmediatesNotEquivalentByTest(t *testing.T) {
	a := toISA([]aarch64.Instruction{aarch64.MovImm(aarch64.X(0), 1)})
	b := toISA([]aarch64.Instruction{aarch64.MovImm(aarch64.X(0), 2)})
	res := Check(isaDef, sem, a, b, liveOut(0), DefaultConfig())
	if res.Status != NotEquivalentByTest {
		t.Fatalf("S3: got %v, want NotEquivalentByTest", res.Status)
	}
	if res.Counterexample == nil {
		t.Errorf("S3: expected a counterexample")
	}
}

// S4: the X1 write is dead when only X0 is live-out, so dropping it is
// equivalent.
func TestS4_DeadWriteIsEquivalent(t *testing.T) {
	a := toISA([]aarch64.Instruction{
		aarch64.MovImm(aarch64.X(0), 0),
		aarch64.MovImm(aarch64.X(1), 1),
	})
	b := toISA([]aarch64.Instruction{aarch64.MovImm(aarch64.X(0), 0)})
	res := Check(isaDef, sem, a, b, liveOut(0), DefaultConfig())
	if res.Status != Equivalent {
		t.Fatalf("S4: got %v, want Equivalent", res.Status)
	}
}

// S5: ADD commutativity.
func TestS5_AddCommutativity(t *testing.T) {
	a := toISA([]aarch64.Instruction{aarch64.Add(aarch64.X(0), aarch64.X(1), aarch64.RegOperand(aarch64.X(2)))})
	b := toISA([]aarch64.Instruction{aarch64.Add(aarch64.X(0), aarch64.X(2), aarch64.RegOperand(aarch64.X(1)))})
	res := Check(isaDef, sem, a, b, liveOut(0), DefaultConfig())
	if res.Status != Equivalent {
		t.Fatalf("S5: got %v, want Equivalent", res.Status)
	}
}

// S6: ORR with the zero register (register form) equals a plain MOV.
func TestS6_OrrZeroEqualsMov(t *testing.T) {
	a := toISA([]aarch64.Instruction{aarch64.Orr(aarch64.X(0), aarch64.X(1), aarch64.RegOperand(aarch64.XZR))})
	b := toISA([]aarch64.Instruction{aarch64.MovReg(aarch64.X(0), aarch64.X(1))})
	res := Check(isaDef, sem, a, b, liveOut(0), DefaultConfig())
	if res.Status != Equivalent {
		t.Fatalf("S6: got %v, want Equivalent", res.Status)
	}
}

func TestFastOnlyShortcutSkipsSMT(t *testing.T) {
	a := toISA([]aarch64.Instruction{aarch64.MovReg(aarch64.X(0), aarch64.X(1))})
	b := toISA([]aarch64.Instruction{aarch64.MovReg(aarch64.X(0), aarch64.X(1))})
	cfg := DefaultConfig()
	cfg.FastOnly = true
	res := Check(isaDef, sem, a, b, liveOut(0), cfg)
	if res.Status != Equivalent {
		t.Fatalf("fast-only identical sequences: got %v, want Equivalent", res.Status)
	}
}

func TestNotEquivalentBySMT(t *testing.T) {
	a := toISA([]aarch64.Instruction{aarch64.Add(aarch64.X(0), aarch64.X(1), aarch64.RegOperand(aarch64.X(2)))})
	b := toISA([]aarch64.Instruction{aarch64.Sub(aarch64.X(0), aarch64.X(1), aarch64.RegOperand(aarch64.X(2)))})
	res := Check(isaDef, sem, a, b, liveOut(0), DefaultConfig())
	if res.Status != NotEquivalent && res.Status != NotEquivalentByTest {
		t.Fatalf("Add vs Sub: got %v, want some non-equivalent verdict", res.Status)
	}
}

func TestCongruence(t *testing.T) {
	// Three distinct ways of zeroing X0: a constant move, a self-XOR, and a
	// register-minus-itself. Equivalence must hold for every pairing, in
	// particular a<->c once a<->b and b<->c are established.
	a := toISA([]aarch64.Instruction{aarch64.MovImm(aarch64.X(0), 0)})
	b := toISA([]aarch64.Instruction{aarch64.Eor(aarch64.X(0), aarch64.X(0), aarch64.RegOperand(aarch64.X(0)))})
	c := toISA([]aarch64.Instruction{aarch64.Sub(aarch64.X(0), aarch64.X(1), aarch64.RegOperand(aarch64.X(1)))})

	pairs := []struct {
		name string
		x, y []isa.Instruction
	}{
		{"a<->b", a, b},
		{"b<->c", b, c},
		{"a<->c", a, c},
	}
	for _, p := range pairs {
		res := Check(isaDef, sem, p.x, p.y, liveOut(0), DefaultConfig())
		if res.Status != Equivalent {
			t.Fatalf("%s: got %v, want Equivalent", p.name, res.Status)
		}
	}
}
