// Package search implements the enumerative strategy: for each candidate
// length from 1 to |target|-1, enumerate candidates (exhaustively for L≤2,
// sample-bounded for L≥3), skip any at or above the current best cost, and
// verify survivors with the equivalence checker. The exponential regime is
// bounded rather than skipped.
package search

import (
	"math/rand/v2"
	"time"

	"github.com/oisee/aarch64-optimizer/pkg/cost"
	"github.com/oisee/aarch64-optimizer/pkg/equiv"
	"github.com/oisee/aarch64-optimizer/pkg/isa"
	"github.com/oisee/aarch64-optimizer/pkg/state"
)

// State is the per-strategy lifecycle state machine, shared by every search
// strategy in this module.
type State int

const (
	Initializing State = iota
	Running
	Improved
	Terminating
	Done
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Improved:
		return "improved"
	case Terminating:
		return "terminating"
	case Done:
		return "done"
	default:
		return "?"
	}
}

// DefaultSampleBound caps how many random tuples the L≥3 regime draws per
// length when Config.SampleBound is unset.
const DefaultSampleBound = 10_000

// Config holds the tunables of the enumerative strategy.
type Config struct {
	Metric      cost.Metric
	Classify    cost.Classifier
	SampleBound int // defaults to DefaultSampleBound when <= 0
	Deadline    time.Time
	EquivConfig equiv.Config
	RNGSeed     uint64
	Registers   []isa.Register
	Immediates  []int64

	// Stop is an optional cooperative-cancellation probe, checked between
	// candidates alongside the deadline. The parallel coordinator points it
	// at its shared should-stop flag.
	Stop func() bool
	// BestCostBound optionally supplies a global cost bound (the parallel
	// coordinator's shared best): candidates at or above it are pruned even
	// when they beat this worker's local best.
	BestCostBound func() int
	// OnImprovement is invoked for every confirmed cheaper equivalent, so a
	// coordinator can broadcast it before the search finishes.
	OnImprovement func(seq []isa.Instruction, cost int)
}

func (c Config) sampleBound() int {
	if c.SampleBound <= 0 {
		return DefaultSampleBound
	}
	return c.SampleBound
}

// Statistics reports the search's progress and final extent.
type Statistics struct {
	CandidatesEvaluated int
	LengthReached       int
	State               State
}

// Result is the outcome of one search run.
type Result struct {
	Original          []isa.Instruction
	Optimized         []isa.Instruction // nil unless FoundOptimization
	FoundOptimization bool
	Statistics        Statistics
}

// Run executes the enumerative search for one target sequence under one
// ISA profile.
func Run(isaDef isa.ISA, sem isa.Semantics, target []isa.Instruction, mask state.Mask, cfg Config) Result {
	stats := Statistics{State: Initializing}
	originalCost := cost.SequenceCost(target, cfg.Metric, isaDef.InstructionSizeBytes(), cfg.Classify)
	bestCost := originalCost
	var best []isa.Instruction

	if len(target) <= 1 {
		stats.State = Done
		return Result{Original: target, Statistics: stats}
	}

	gen := isaDef.Generator()
	allSingle := gen.GenerateAll(cfg.Registers, cfg.Immediates)
	rng := rand.New(rand.NewPCG(cfg.RNGSeed, cfg.RNGSeed^0x9E3779B97F4A7C15))

	stats.State = Running

lengthLoop:
	for l := 1; l < len(target); l++ {
		stats.LengthReached = l

		evaluate := func(cand []isa.Instruction) (stopHit bool) {
			if !cfg.Deadline.IsZero() && time.Now().After(cfg.Deadline) {
				return true
			}
			if cfg.Stop != nil && cfg.Stop() {
				return true
			}
			stats.CandidatesEvaluated++
			candCost := cost.SequenceCost(cand, cfg.Metric, isaDef.InstructionSizeBytes(), cfg.Classify)
			bound := bestCost
			if cfg.BestCostBound != nil {
				if g := cfg.BestCostBound(); g < bound {
					bound = g
				}
			}
			if candCost >= bound {
				return false
			}
			res := equiv.Check(isaDef, sem, target, cand, mask, cfg.EquivConfig)
			if res.Status == equiv.Equivalent {
				best = append([]isa.Instruction(nil), cand...)
				bestCost = candCost
				stats.State = Improved
				stats.State = Running
				if cfg.OnImprovement != nil {
					cfg.OnImprovement(best, bestCost)
				}
			}
			return false
		}

		if l <= 2 {
			if deadlineHit := enumerateExhaustive(allSingle, l, evaluate); deadlineHit {
				break lengthLoop
			}
		} else {
			bound := cfg.sampleBound()
			for n := 0; n < bound; n++ {
				cand := make([]isa.Instruction, l)
				for i := range cand {
					cand[i] = gen.GenerateRandom(rng, cfg.Registers, cfg.Immediates)
				}
				if evaluate(cand) {
					break lengthLoop
				}
			}
		}
	}

	stats.State = Terminating
	stats.State = Done

	result := Result{Original: target, Statistics: stats}
	if best != nil && bestCost < originalCost {
		result.Optimized = best
		result.FoundOptimization = true
	}
	return result
}

// enumerateExhaustive walks the full cartesian product of allSingle^length,
// invoking visit on each tuple. visit returns true to signal the deadline
// was hit, stopping enumeration early.
func enumerateExhaustive(allSingle []isa.Instruction, length int, visit func([]isa.Instruction) bool) bool {
	idx := make([]int, length)
	cand := make([]isa.Instruction, length)
	if len(allSingle) == 0 {
		return false
	}
	for {
		for i, p := range idx {
			cand[i] = allSingle[p]
		}
		if visit(cand) {
			return true
		}

		pos := length - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(allSingle) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return false
		}
	}
}
