// Package checkpoint persists search state to disk so a long-running
// enumerate/search sweep can resume after an interruption: a mutex-protected
// rule table plus a gob-encoded checkpoint, with each concrete backend's
// instruction types gob-registered up front.
package checkpoint

import (
	"encoding/gob"
	"os"
	"sort"
	"sync"

	"github.com/oisee/aarch64-optimizer/pkg/aarch64"
	"github.com/oisee/aarch64-optimizer/pkg/cost"
	"github.com/oisee/aarch64-optimizer/pkg/isa"
	"github.com/oisee/aarch64-optimizer/pkg/riscv"
)

func init() {
	gob.Register(aarch64.Instruction{})
	gob.Register(aarch64.Reg{})
	gob.Register(riscv.Instruction{})
	gob.Register(riscv.Reg{})
}

// Rule records one discovered optimization: Source replaced by Replacement,
// saving CostSaved units of Metric.
type Rule struct {
	Source      []isa.Instruction
	Replacement []isa.Instruction
	CostSaved   int
	Metric      cost.Metric
}

// Table stores discovered optimization rules behind a mutex; a parallel
// search has many goroutines adding rules concurrently.
type Table struct {
	mu    sync.Mutex
	rules []Rule
}

// NewTable creates an empty table.
func NewTable() *Table { return &Table{} }

// Add inserts a rule into the table.
func (t *Table) Add(r Rule) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = append(t.rules, r)
}

// Rules returns a copy of all rules, sorted by cost saved (descending).
func (t *Table) Rules() []Rule {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	sort.Slice(out, func(i, j int) bool { return out[i].CostSaved > out[j].CostSaved })
	return out
}

// Len returns the number of rules.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rules)
}

// Checkpoint holds enough state to resume a parameter sweep across many
// target sequences: the rules found so far, plus how far the sweep got.
type Checkpoint struct {
	Rules           []Rule
	CompletedTarget int // number of target sequences fully searched
	TargetLen       int // current target length being searched
}

// Save writes search state to path.
func Save(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// Load reads search state from path.
func Load(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}
