// Package coordinator runs the parallel hybrid search: a worker pool (one
// symbolic worker plus N-1 stochastic chains, each seeded from
// base_seed+worker_id) that races toward a verified-equivalent replacement,
// sharing the best cost found so far and stopping every worker once a
// deadline or a stop signal fires.
//
// Coordination is message passing over channels (Improvement/Finished/Error
// from workers, BetterSolution/Stop back to them) plus two atomic scalars: a
// monotonically-decreasing best cost and a should-stop flag. Workers read
// both lock-free on the hot path.
package coordinator

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oisee/aarch64-optimizer/pkg/cost"
	"github.com/oisee/aarch64-optimizer/pkg/isa"
	"github.com/oisee/aarch64-optimizer/pkg/search"
	"github.com/oisee/aarch64-optimizer/pkg/state"
	"github.com/oisee/aarch64-optimizer/pkg/stoke"
	"github.com/oisee/aarch64-optimizer/pkg/symbolic"
)

// Algorithm names the strategy a worker ran, carried on Improvement messages
// so the coordinator can report which algorithm produced the winning result.
type Algorithm int

const (
	Symbolic Algorithm = iota
	Stochastic
)

func (a Algorithm) String() string {
	if a == Symbolic {
		return "symbolic"
	}
	return "stochastic"
}

// workerMessage is one worker-to-coordinator message.
type workerMessage struct {
	kind        workerMsgKind
	workerID    int
	sequence    []isa.Instruction
	cost        int
	algorithm   Algorithm
	evaluated   int64
	errorText   string
}

type workerMsgKind int

const (
	msgImprovement workerMsgKind = iota
	msgFinished
	msgError
)

// coordinatorMessage is one coordinator-to-worker message.
type coordinatorMessage struct {
	stop     bool
	sequence []isa.Instruction
	cost     int
}

// sharedBest is the workers' shared scoreboard: a monotonically-decreasing
// best cost (initially +infinity, represented as MaxInt64) plus a should-stop
// flag, both accessed lock-free from every worker goroutine.
type sharedBest struct {
	bestCost   atomic.Int64
	shouldStop atomic.Bool
}

func newSharedBest() *sharedBest {
	sb := &sharedBest{}
	sb.bestCost.Store(int64(^uint64(0) >> 1))
	return sb
}

// tryUpdate stores newCost iff it is strictly less than the current best,
// retrying under compare-and-swap contention. Returns true iff it won.
func (sb *sharedBest) tryUpdate(newCost int) bool {
	for {
		current := sb.bestCost.Load()
		if int64(newCost) >= current {
			return false
		}
		if sb.bestCost.CompareAndSwap(current, int64(newCost)) {
			return true
		}
	}
}

func (sb *sharedBest) currentBest() int64 { return sb.bestCost.Load() }

// Config holds the tunables of the parallel coordinator.
type Config struct {
	NumWorkers      int
	IncludeSymbolic bool // reserve worker 0 for the symbolic strategy
	SolutionSharing bool // broadcast BetterSolution to other workers
	Timeout         time.Duration
	BaseSeed        uint64

	Metric     cost.Metric
	Classify   cost.Classifier
	Registers  []isa.Register
	Immediates []int64

	StokeConfig    stoke.Config
	SymbolicConfig symbolic.Config
}

func (c Config) numStochasticWorkers() int {
	if c.IncludeSymbolic && c.NumWorkers > 1 {
		return c.NumWorkers - 1
	}
	return c.NumWorkers
}

// WorkerStat reports one worker's final contribution.
type WorkerStat struct {
	WorkerID  int
	Algorithm Algorithm
	Evaluated int64
}

// Result is the parallel search outcome: the best verified-equivalent
// sequence found across every worker, plus aggregated and per-worker stats.
type Result struct {
	Best              []isa.Instruction
	BestCost          int
	FoundOptimization bool
	TotalEvaluated    int64
	WorkerStats       []WorkerStat
	Errors            []string
}

// Run spawns cfg.NumWorkers goroutines in the hybrid profile (worker 0 runs
// the symbolic strategy when cfg.IncludeSymbolic, every other worker runs a
// stochastic chain seeded with cfg.BaseSeed+worker_id) and
// coordinates them via message passing until every worker finishes or the
// deadline/stop signal fires.
func Run(isaDef isa.ISA, sem isa.Semantics, target []isa.Instruction, mask state.Mask, cfg Config) Result {
	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}

	shared := newSharedBest()
	originalCost := cost.SequenceCost(target, cfg.Metric, isaDef.InstructionSizeBytes(), cfg.Classify)
	shared.bestCost.Store(int64(originalCost))

	toCoordinator := make(chan workerMessage, numWorkers*4)
	toWorkers := make([]chan coordinatorMessage, numWorkers)
	for i := range toWorkers {
		toWorkers[i] = make(chan coordinatorMessage, 8)
	}

	var wg sync.WaitGroup
	for id := 0; id < numWorkers; id++ {
		wg.Add(1)
		useSymbolic := cfg.IncludeSymbolic && id == 0
		go func(workerID int, symbolicWorker bool) {
			defer wg.Done()
			runWorker(workerID, symbolicWorker, isaDef, sem, target, mask, cfg, shared, toCoordinator, toWorkers[workerID])
		}(id, useSymbolic)
	}

	go func() {
		wg.Wait()
		close(toCoordinator)
	}()

	result := runCoordinator(target, cfg, shared, toCoordinator, toWorkers, originalCost)
	return result
}

// runCoordinator is the receive-timeout polling loop: check the deadline,
// drain one message (or time out after 100ms and loop again), and aggregate
// Improvement/Finished/Error messages until the worker channel closes.
func runCoordinator(target []isa.Instruction, cfg Config, shared *sharedBest, fromWorkers <-chan workerMessage, toWorkers []chan coordinatorMessage, originalCost int) Result {
	start := time.Now()
	var deadline time.Time
	if cfg.Timeout > 0 {
		deadline = start.Add(cfg.Timeout)
	}

	var best []isa.Instruction
	bestCost := originalCost
	found := false
	var totalEvaluated int64
	stats := make(map[int]WorkerStat)
	var errs []string

	broadcastStop := func() {
		shared.shouldStop.Store(true)
		for _, ch := range toWorkers {
			select {
			case ch <- coordinatorMessage{stop: true}:
			default:
			}
		}
	}

	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			broadcastStop()
		}

		select {
		case msg, ok := <-fromWorkers:
			if !ok {
				goto drained
			}
			switch msg.kind {
			case msgImprovement:
				if msg.cost < bestCost {
					best = msg.sequence
					bestCost = msg.cost
					found = true
					if cfg.SolutionSharing {
						for i, ch := range toWorkers {
							if i == msg.workerID {
								continue
							}
							select {
							case ch <- coordinatorMessage{sequence: msg.sequence, cost: msg.cost}:
							default:
							}
						}
					}
				}
			case msgFinished:
				stats[msg.workerID] = WorkerStat{WorkerID: msg.workerID, Algorithm: msg.algorithm, Evaluated: msg.evaluated}
				totalEvaluated += msg.evaluated
			case msgError:
				errs = append(errs, fmt.Sprintf("worker %d: %s", msg.workerID, msg.errorText))
			}
		case <-time.After(100 * time.Millisecond):
		}
	}

drained:
	// Every worker has reported Finished (or the channel disconnected), so no
	// further broadcast can happen; closing the per-worker channels releases
	// their receive goroutines.
	for _, ch := range toWorkers {
		close(ch)
	}

	out := make([]WorkerStat, 0, len(stats))
	for id := 0; id < len(toWorkers); id++ {
		if s, ok := stats[id]; ok {
			out = append(out, s)
		}
	}

	return Result{
		Best:              best,
		BestCost:          bestCost,
		FoundOptimization: found,
		TotalEvaluated:    totalEvaluated,
		WorkerStats:       out,
		Errors:            errs,
	}
}

// runWorker drives one worker's strategy to completion, recovering from any
// panic and reporting it as an Error message rather than crashing the whole
// search. A panicking worker still counts as Finished (with zero candidates
// evaluated) so the coordinator's per-worker accounting stays complete.
func runWorker(workerID int, symbolicWorker bool, isaDef isa.ISA, sem isa.Semantics, target []isa.Instruction, mask state.Mask, cfg Config, shared *sharedBest, toCoordinator chan<- workerMessage, fromCoordinator <-chan coordinatorMessage) {
	var algorithm Algorithm
	if symbolicWorker {
		algorithm = Symbolic
	} else {
		algorithm = Stochastic
	}

	defer func() {
		if r := recover(); r != nil {
			toCoordinator <- workerMessage{kind: msgError, workerID: workerID, errorText: fmt.Sprintf("panic: %v", r)}
			toCoordinator <- workerMessage{kind: msgFinished, workerID: workerID, algorithm: algorithm}
		}
	}()

	// inbox holds the most recent BetterSolution broadcast; the strategy's
	// AdoptSolution hook claims it with a Swap so each broadcast is adopted
	// at most once.
	var inbox atomic.Pointer[[]isa.Instruction]
	go func() {
		for msg := range fromCoordinator {
			if msg.stop {
				return
			}
			seq := msg.sequence
			inbox.Store(&seq)
		}
	}()

	// The CAS on the shared best decides the improvement race; only the
	// winner sends Improvement.
	onImprove := func(seq []isa.Instruction, seqCost int) {
		if shared.tryUpdate(seqCost) {
			owned := append([]isa.Instruction(nil), seq...)
			toCoordinator <- workerMessage{kind: msgImprovement, workerID: workerID, sequence: owned, cost: seqCost, algorithm: algorithm}
		}
	}
	stopProbe := shared.shouldStop.Load
	bestBound := func() int { return int(shared.currentBest()) }

	var res search.Result
	if symbolicWorker {
		symCfg := cfg.SymbolicConfig
		symCfg.Metric = cfg.Metric
		symCfg.Classify = cfg.Classify
		symCfg.Registers = cfg.Registers
		symCfg.Immediates = cfg.Immediates
		symCfg.Stop = stopProbe
		symCfg.BestCostBound = bestBound
		symCfg.OnImprovement = onImprove
		if !isZeroTime(cfg.Timeout) {
			symCfg.Deadline = time.Now().Add(cfg.Timeout)
		}
		res = symbolic.Run(isaDef, sem, target, mask, symCfg)
	} else {
		stokeCfg := cfg.StokeConfig
		stokeCfg.Metric = cfg.Metric
		stokeCfg.Classify = cfg.Classify
		stokeCfg.Registers = cfg.Registers
		stokeCfg.Immediates = cfg.Immediates
		stokeCfg.RNGSeed = cfg.BaseSeed + uint64(workerID)
		stokeCfg.Stop = stopProbe
		stokeCfg.BestCostBound = bestBound
		stokeCfg.OnImprovement = onImprove
		if cfg.SolutionSharing {
			stokeCfg.AdoptSolution = func() ([]isa.Instruction, bool) {
				if p := inbox.Swap(nil); p != nil {
					return *p, true
				}
				return nil, false
			}
		}
		if !isZeroTime(cfg.Timeout) {
			stokeCfg.Deadline = time.Now().Add(cfg.Timeout)
		}
		res = stoke.Run(isaDef, sem, target, mask, stokeCfg)
	}

	toCoordinator <- workerMessage{kind: msgFinished, workerID: workerID, evaluated: int64(res.Statistics.CandidatesEvaluated), algorithm: algorithm}
}

func isZeroTime(d time.Duration) bool { return d <= 0 }
