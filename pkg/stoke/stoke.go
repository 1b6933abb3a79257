// Package stoke implements the stochastic (MCMC) search strategy: a
// Metropolis-Hastings walk over instruction sequences with a test-vector
// proposal filter, a beta-parameterized acceptance rule, and an SMT gate on
// proposals cheap enough to beat the best verified equivalent so far.
package stoke

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/oisee/aarch64-optimizer/pkg/cost"
	"github.com/oisee/aarch64-optimizer/pkg/equiv"
	"github.com/oisee/aarch64-optimizer/pkg/isa"
	"github.com/oisee/aarch64-optimizer/pkg/search"
	"github.com/oisee/aarch64-optimizer/pkg/state"
)

// Weights holds the proposal-operator selection weights. They need not sum
// to 1; propose draws against their sum.
type Weights struct {
	Operand     float64
	Opcode      float64
	Swap        float64
	Instruction float64
}

// DefaultWeights: Operand 50%, Opcode 16%, Swap 16%, Instruction 18%.
var DefaultWeights = Weights{Operand: 0.50, Opcode: 0.16, Swap: 0.16, Instruction: 0.18}

// Config holds the tunables of the stochastic strategy.
type Config struct {
	Iterations      int
	Beta            float64 // inverse temperature; higher = greedier
	Weights         Weights
	FullRestartProb float64 // whole-sequence random restart probability per step; 0 means the 0.10 default, negative disables
	NumTests        int     // size of the concrete test battery (plus the fixed edge-case suite)
	RNGSeed         uint64
	Registers       []isa.Register
	Immediates      []int64
	Metric          cost.Metric
	Classify        cost.Classifier
	Deadline        time.Time // zero means unbounded; checked between iterations

	// Stop is an optional cooperative-cancellation probe checked between
	// iterations; the parallel coordinator points it at its shared
	// should-stop flag.
	Stop func() bool
	// BestCostBound optionally supplies the global best cost: the SMT gate
	// only fires for proposals strictly below both the chain's own best and
	// this bound, so workers don't pay for solver calls another worker
	// already beat.
	BestCostBound func() int
	// OnImprovement is invoked for every verified-equivalent new best, so a
	// coordinator can broadcast it before the chain finishes.
	OnImprovement func(seq []isa.Instruction, cost int)
	// AdoptSolution is polled periodically: when it yields a sequence, the
	// chain restarts its walk from that sequence (the solution-sharing hook
	// of the parallel coordinator's BetterSolution broadcast).
	AdoptSolution func() ([]isa.Instruction, bool)
}

func (c Config) normalizedWeights() Weights {
	w := c.Weights
	if w == (Weights{}) {
		w = DefaultWeights
	}
	return w
}

// Result is reused from pkg/search since the shape is identical across
// strategies.
type Result = search.Result

// Chain is a single Metropolis-Hastings walk, one per worker: a current
// sequence with its cost, a verified best, and acceptance counters.
type Chain struct {
	isaDef   isa.ISA
	sem      isa.Semantics
	target   []isa.Instruction
	mask     state.Mask
	cfg      Config
	rng      *rand.Rand
	current  []isa.Instruction
	currCost int
	best     []isa.Instruction
	bestCost int

	Accepted  int64
	Rejected  int64
	Evaluated int64
}

// NewChain creates a chain seeded deterministically from seed (the parallel
// coordinator passes base_seed + worker_id).
func NewChain(isaDef isa.ISA, sem isa.Semantics, target []isa.Instruction, mask state.Mask, cfg Config, seed uint64) *Chain {
	if cfg.FullRestartProb == 0 {
		cfg.FullRestartProb = 0.10
	}
	rng := rand.New(rand.NewPCG(seed, seed^0xDEADBEEF))

	var initial []isa.Instruction
	if rng.IntN(2) == 0 {
		initial = append([]isa.Instruction(nil), target...)
	} else {
		initial = randomSequence(rng, isaDef.Generator(), len(target), cfg.Registers, cfg.Immediates)
	}

	c := &Chain{
		isaDef: isaDef, sem: sem, target: target, mask: mask, cfg: cfg, rng: rng,
		current: initial,
	}
	c.currCost = c.costOf(initial)
	// The target is the only sequence known equivalent at this point, so it
	// seeds the best-so-far slot; a random initial state is merely the walk's
	// starting position, never a verified result.
	c.best = append([]isa.Instruction(nil), target...)
	c.bestCost = c.costOf(target)
	return c
}

func (c *Chain) costOf(seq []isa.Instruction) int {
	return cost.SequenceCost(seq, c.cfg.Metric, c.isaDef.InstructionSizeBytes(), c.cfg.Classify)
}

func randomSequence(rng *rand.Rand, gen isa.Generator, length int, registers []isa.Register, immediates []int64) []isa.Instruction {
	out := make([]isa.Instruction, length)
	for i := range out {
		out[i] = gen.GenerateRandom(rng, registers, immediates)
	}
	return out
}

// Step performs one MCMC iteration: propose, test-filter, (maybe) SMT-gate,
// accept/reject by the Metropolis criterion. It returns true iff the
// proposal was accepted.
func (c *Chain) Step() bool {
	if c.cfg.FullRestartProb > 0 && c.rng.Float64() < c.cfg.FullRestartProb {
		length := 1 + c.rng.IntN(len(c.target))
		c.current = randomSequence(c.rng, c.isaDef.Generator(), length, c.cfg.Registers, c.cfg.Immediates)
		c.currCost = c.costOf(c.current)
		return true
	}

	proposal := c.propose()
	c.Evaluated++

	numTests := c.cfg.NumTests
	if numTests <= 0 {
		numTests = 16
	}
	if _, ok := equiv.TestFilter(c.sem, c.target, proposal, c.mask, numTests); !ok {
		// Proposals failing the test filter are rejected outright and do not
		// count toward acceptance statistics.
		return false
	}

	proposalCost := c.costOf(proposal)
	gate := c.bestCost
	if c.cfg.BestCostBound != nil {
		if g := c.cfg.BestCostBound(); g < gate {
			gate = g
		}
	}
	if proposalCost < gate {
		res := equiv.Check(c.isaDef, c.sem, c.target, proposal, c.mask, equiv.Config{FastOnly: false, NumRandomTests: 0, SolverStepLimit: 200_000})
		if res.Status == equiv.Equivalent {
			c.best = append([]isa.Instruction(nil), proposal...)
			c.bestCost = proposalCost
			if c.cfg.OnImprovement != nil {
				c.cfg.OnImprovement(c.best, c.bestCost)
			}
		}
	}

	if c.accept(proposalCost) {
		c.current = proposal
		c.currCost = proposalCost
		c.Accepted++
		return true
	}
	c.Rejected++
	return false
}

// accept implements the Metropolis criterion: accept iff
// proposal_cost < current_cost - ln(U)/beta, U uniform in (0,1].
func (c *Chain) accept(proposalCost int) bool {
	if proposalCost < c.currCost {
		return true
	}
	beta := c.cfg.Beta
	if beta <= 0 {
		beta = 1.0
	}
	u := c.rng.Float64()
	if u <= 0 {
		u = 1e-300
	}
	threshold := float64(c.currCost) - math.Log(u)/beta
	return float64(proposalCost) < threshold
}

// propose applies one weighted-random mutation operator to a copy of the
// current sequence.
func (c *Chain) propose() []isa.Instruction {
	seq := append([]isa.Instruction(nil), c.current...)
	w := c.cfg.normalizedWeights()
	total := w.Operand + w.Opcode + w.Swap + w.Instruction
	if total <= 0 {
		total = 1
	}
	r := c.rng.Float64() * total

	switch {
	case r < w.Operand:
		return c.mutateOperand(seq)
	case r < w.Operand+w.Opcode:
		return c.mutateOpcode(seq)
	case r < w.Operand+w.Opcode+w.Swap:
		return mutateSwap(c.rng, seq)
	default:
		return c.mutateInstruction(seq)
	}
}

func (c *Chain) mutateOperand(seq []isa.Instruction) []isa.Instruction {
	if len(seq) == 0 {
		return seq
	}
	gen := c.isaDef.Generator()
	mutator, ok := gen.(isa.OperandMutator)
	pos := c.rng.IntN(len(seq))
	if !ok {
		seq[pos] = gen.Mutate(c.rng, seq[pos], c.cfg.Registers, c.cfg.Immediates)
		return seq
	}
	seq[pos] = mutator.MutateOperand(c.rng, seq[pos], c.cfg.Registers, c.cfg.Immediates)
	return seq
}

func (c *Chain) mutateOpcode(seq []isa.Instruction) []isa.Instruction {
	if len(seq) == 0 {
		return seq
	}
	gen := c.isaDef.Generator()
	mutator, ok := gen.(isa.OpcodeMutator)
	pos := c.rng.IntN(len(seq))
	if !ok {
		seq[pos] = gen.Mutate(c.rng, seq[pos], c.cfg.Registers, c.cfg.Immediates)
		return seq
	}
	seq[pos] = mutator.MutateOpcode(c.rng, seq[pos], c.cfg.Registers, c.cfg.Immediates)
	return seq
}

func mutateSwap(rng *rand.Rand, seq []isa.Instruction) []isa.Instruction {
	if len(seq) < 2 {
		return seq
	}
	i := rng.IntN(len(seq))
	j := rng.IntN(len(seq))
	seq[i], seq[j] = seq[j], seq[i]
	return seq
}

func (c *Chain) mutateInstruction(seq []isa.Instruction) []isa.Instruction {
	if len(seq) == 0 {
		return seq
	}
	pos := c.rng.IntN(len(seq))
	seq[pos] = c.isaDef.Generator().GenerateRandom(c.rng, c.cfg.Registers, c.cfg.Immediates)
	return seq
}

// Adopt restarts the walk from a shared solution (the coordinator's
// BetterSolution broadcast), leaving the chain's own verified best alone.
func (c *Chain) Adopt(seq []isa.Instruction) {
	if len(seq) == 0 {
		return
	}
	c.current = append([]isa.Instruction(nil), seq...)
	c.currCost = c.costOf(c.current)
}

// Best returns the best verified-equivalent sequence found so far and its
// cost.
func (c *Chain) Best() ([]isa.Instruction, int) { return c.best, c.bestCost }

// Current returns the chain's current sequence and its cost (not
// necessarily verified equivalent; only Best is).
func (c *Chain) Current() ([]isa.Instruction, int) { return c.current, c.currCost }

// Run drives a single chain for cfg.Iterations steps and returns the
// SearchResult, matching pkg/search.Result's shape so callers can treat
// every strategy uniformly.
func Run(isaDef isa.ISA, sem isa.Semantics, target []isa.Instruction, mask state.Mask, cfg Config) Result {
	originalCost := cost.SequenceCost(target, cfg.Metric, isaDef.InstructionSizeBytes(), cfg.Classify)
	chain := NewChain(isaDef, sem, target, mask, cfg, cfg.RNGSeed)

	iterations := cfg.Iterations
	if iterations <= 0 {
		iterations = 100_000
	}
	hasDeadline := !cfg.Deadline.IsZero()
	for i := 0; i < iterations; i++ {
		if cfg.Stop != nil && cfg.Stop() {
			break
		}
		if i%64 == 0 {
			if hasDeadline && time.Now().After(cfg.Deadline) {
				break
			}
			if cfg.AdoptSolution != nil {
				if seq, ok := cfg.AdoptSolution(); ok {
					chain.Adopt(seq)
				}
			}
		}
		chain.Step()
	}

	best, bestCost := chain.Best()
	result := Result{
		Original: target,
		Statistics: search.Statistics{
			CandidatesEvaluated: int(chain.Evaluated),
			State:               search.Done,
		},
	}
	if bestCost < originalCost {
		result.Optimized = best
		result.FoundOptimization = true
	}
	return result
}
