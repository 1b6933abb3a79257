package riscv

import (
	"math/rand/v2"
	"testing"

	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

func TestGenerateAllProducesOnlyEncodableInstructions(t *testing.T) {
	regs := []isa.Register{X(0), X(1), X(ZeroIndex)}
	imms := []int64{0, 1, 100}

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
	regs := []isa.Register{X(0), X(1), X(2), X(ZeroIndex)}
	imms := []int64{0, 1, 100}

	for i := 0; i < 500; i++ {
		instr := Generator{}.GenerateRandom(rng, regs, imms)
		ri, ok := instr.(Instruction)
		if !ok {
			t.Fatalf("GenerateRandom returned non-riscv instruction")
		}
		if !ri.Encodable() {
			t.Fatalf("GenerateRandom produced a non-encodable instruction: %v", ri)
		}
	}
}

func TestMutateStaysEncodable(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	regs := []isa.Register{X(0), X(1), X(ZeroIndex)}
	imms := []int64{0, 1}

	base := Add(X(0), X(1), ImmOperand(1))
	for i := 0; i < 50; i++ {
		mutated := Generator{}.Mutate(rng, base, regs, imms)
		ri, ok := mutated.(Instruction)
		if !ok {
			t.Fatalf("Mutate returned non-riscv instruction")
		}
		if !ri.Encodable() {
			t.Fatalf("Mutate produced a non-encodable instruction: %v", ri)
		}
	}
}

func TestOpcodeCountMatchesDeclaredFamilies(t *testing.T) {
	gen := Generator{}
	if gen.OpcodeCount() != OpCodeCount {
		t.Errorf("OpcodeCount mismatch: %d vs %d", gen.OpcodeCount(), OpCodeCount)
	}
}

func TestMutateOpcodeStaysWithinFamily(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	regs := []isa.Register{X(0), X(1), X(2)}
	imms := []int64{0, 5}

	base := Add(X(0), X(1), RegOperand(X(2)))
	for i := 0; i < 50; i++ {
		mutated := Generator{}.MutateOpcode(rng, base, regs, imms)
		ri, ok := mutated.(Instruction)
		if !ok {
			t.Fatalf("MutateOpcode returned non-riscv instruction")
		}
		fam := familyOf(base.Op)
		inFamily := false
		for _, o := range fam {
			if o == ri.Op {
				inFamily = true
			}
		}
		if !inFamily {
			t.Fatalf("MutateOpcode produced opcode %v outside family of %v", ri.Op, base.Op)
		}
		if !ri.Encodable() {
			t.Fatalf("MutateOpcode produced a non-encodable instruction: %v", ri)
		}
	}
}
