package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/oisee/aarch64-optimizer/pkg/aarch64"
	"github.com/oisee/aarch64-optimizer/pkg/cost"
	"github.com/oisee/aarch64-optimizer/pkg/isa"
)

func sampleRule() Rule {
	return Rule{
		Source: []isa.Instruction{
			aarch64.MovReg(aarch64.X(0), aarch64.X(1)),
			aarch64.Add(aarch64.X(0), aarch64.X(0), aarch64.ImmOperand(1)),
		},
		Replacement: []isa.Instruction{
			aarch64.Add(aarch64.X(0), aarch64.X(1), aarch64.ImmOperand(1)),
		},
		CostSaved: 1,
		Metric:    cost.InstructionCount,
	}
}

func TestTableSortsByCostSaved(t *testing.T) {
	table := NewTable()
	small := sampleRule()
	big := sampleRule()
	big.CostSaved = 5
	table.Add(small)
	table.Add(big)

	rules := table.Rules()
	if len(rules) != 2 || table.Len() != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].CostSaved != 5 {
		t.Errorf("rules should sort by cost saved descending, got %d first", rules[0].CostSaved)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.ckpt")
	want := &Checkpoint{
		Rules:           []Rule{sampleRule()},
		CompletedTarget: 42,
		TargetLen:       3,
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CompletedTarget != want.CompletedTarget || got.TargetLen != want.TargetLen {
		t.Errorf("progress fields did not round-trip: %+v", got)
	}
	if len(got.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(got.Rules))
	}
	rule := got.Rules[0]
	if len(rule.Source) != 2 || len(rule.Replacement) != 1 {
		t.Fatalf("rule shape did not round-trip: %+v", rule)
	}
	if rule.Replacement[0].(aarch64.Instruction) != sampleRule().Replacement[0].(aarch64.Instruction) {
		t.Errorf("replacement instruction did not round-trip: %v", rule.Replacement[0])
	}
	if rule.CostSaved != 1 || rule.Metric != cost.InstructionCount {
		t.Errorf("rule metadata did not round-trip: %+v", rule)
	}
}
