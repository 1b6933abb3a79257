package aarch64

import (
	"math/rand/v2"
	"testing"

	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

func TestGenerateAllProducesOnlyEncodableInstructions(t *testing.T) {
	regs := []isa.Register{X(0), X(1), XZR}
	imms := []int64{0, 1, 0xFFF}

	all := Generator{}.GenerateAll(regs, imms)
	if len(all) == 0 {
		t.Fatal("GenerateAll returned no instructions")
	}
	for _, instr := range all {
		if !instr.Encodable() {
			t.Fatalf("GenerateAll produced a non-encodable instruction: %v", instr)
		}
	}
}

func TestGenerateRandomAlwaysEncodable(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	regs := []isa.Register{X(0), X(1), X(2), XZR}
	imms := []int64{0, 1, 100}

	for i := 0; i < 500; i++ {
		instr := Generator{}.GenerateRandom(rng, regs, imms)
		ai, ok := instr.(Instruction)
		if !ok {
			t.Fatalf("GenerateRandom returned non-aarch64 instruction")
		}
		if !ai.Encodable() {
			t.Fatalf("GenerateRandom produced a non-encodable instruction: %v", ai)
		}
	}
}

func TestMutateOnCompareDegradesToReplace(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	regs := []isa.Register{X(0), X(1), XZR}
	imms := []int64{0, 1}

	cmp := Cmp(X(0), RegOperand(X(1)))
	for i := 0; i < 50; i++ {
		mutated := Generator{}.Mutate(rng, cmp, regs, imms)
		ai, ok := mutated.(Instruction)
		if !ok {
			t.Fatalf("Mutate returned non-aarch64 instruction")
		}
		if !ai.Encodable() {
			t.Fatalf("Mutate produced a non-encodable instruction: %v", ai)
		}
	}
}

func TestOpcodeCountMatchesDeclaredFamilies(t *testing.T) {
	gen := Generator{}
	if gen.OpcodeCount() != OpCodeCount {
		t.Errorf("OpcodeCount mismatch: %d vs %d", gen.OpcodeCount(), OpCodeCount)
	}
}
