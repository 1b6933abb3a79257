package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/oisee/aarch64-optimizer/pkg/aarch64"
	"github.com/oisee/aarch64-optimizer/pkg/asmtext"
	"github.com/oisee/aarch64-optimizer/pkg/checkpoint"
	"github.com/oisee/aarch64-optimizer/pkg/coordinator"
	"github.com/oisee/aarch64-optimizer/pkg/cost"
	"github.com/oisee/aarch64-optimizer/pkg/isa"
	"github.com/oisee/aarch64-optimizer/pkg/liveout"
	"github.com/oisee/aarch64-optimizer/pkg/riscv"
	"github.com/oisee/aarch64-optimizer/pkg/search"
	"github.com/oisee/aarch64-optimizer/pkg/state"
	"github.com/oisee/aarch64-optimizer/pkg/stoke"
	"github.com/oisee/aarch64-optimizer/pkg/symbolic"
	"github.com/spf13/cobra"
)

// profile bundles the per-ISA plumbing the CLI needs, resolved once from
// the --arch flag.
type profile struct {
	name       string
	isaDef     isa.ISA
	sem        isa.Semantics
	classify   cost.Classifier
	registers  []isa.Register
	immediates []int64
	parseText  func(string) ([]isa.Instruction, error)
	parseLive  func(string) (state.Mask, error)
}

func resolveProfile(arch string) (profile, error) {
	switch strings.ToLower(arch) {
	case "aarch64", "arm64", "":
		return profile{
			name:       "aarch64",
			isaDef:     aarch64.ISA{},
			sem:        aarch64.Semantics{},
			classify:   aarch64.Classify,
			registers:  aarch64.ISA{}.Registers(),
			immediates: defaultImmediates,
			parseText:  asmtext.ParseText,
			parseLive:  liveout.Parse,
		}, nil
	case "riscv", "rv64", "rv32":
		return profile{
			name:       "riscv",
			isaDef:     riscv.ISA{},
			sem:        riscv.Semantics{},
			classify:   riscv.Classify,
			registers:  riscv.ISA{}.Registers(),
			immediates: defaultImmediates,
			parseText:  nil, // no text-assembly reader for the secondary profile yet
			parseLive:  liveout.ParseRISCV,
		}, nil
	default:
		return profile{}, fmt.Errorf("unknown --arch %q: use aarch64 or riscv", arch)
	}
}

// defaultImmediates is the fixed immediate ladder every subcommand hands the
// generator (the CLI has no option to supply a different one), covering the small values and
// power-of-two/mask boundaries that show up in real instruction sequences.
var defaultImmediates = []int64{0, 1, 2, 4, 8, 16, 32, 63, 64, 255, 256, 0xFFF, 0xFFFF}

func main() {
	rootCmd := &cobra.Command{
		Use:   "superopt",
		Short: "AArch64/RISC-V superoptimizer: find lower-cost equivalent instruction sequences",
	}

	rootCmd.AddCommand(
		newOptimizeCmd(),
		newSearchCmd(),
		newLiveoutCmd(),
		newCostCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newOptimizeCmd() *cobra.Command {
	var (
		arch       string
		liveOutStr string
		metricStr  string
		strategy   string
		timeout    time.Duration
		workers    int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "optimize [instructions]",
		Short: "Find a lower-cost replacement for a single target instruction sequence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProfile(arch)
			if err != nil {
				return err
			}
			if p.parseText == nil {
				return fmt.Errorf("optimize: %s has no text-assembly reader; pass --arch aarch64", p.name)
			}

			input := strings.Join(args, " ")
			target, err := p.parseText(input)
			if err != nil {
				return fmt.Errorf("failed to parse target: %w", err)
			}

			metric, ok := cost.ParseMetric(metricStr)
			if !ok {
				return fmt.Errorf("unknown --metric %q", metricStr)
			}

			mask, err := p.parseLive(liveOutStr)
			if err != nil {
				return fmt.Errorf("failed to parse --live-out: %w", err)
			}

			originalCost := cost.SequenceCost(target, metric, p.isaDef.InstructionSizeBytes(), p.classify)
			fmt.Printf("Target: %s (%s: %d)\n", asmtext.Format(target), metric, originalCost)

			var result search.Result
			switch strategy {
			case "enumerative":
				cfg := search.Config{
					Metric: metric, Classify: p.classify,
					Registers: p.registers, Immediates: p.immediates,
					Deadline: deadlineFrom(timeout),
				}
				result = search.Run(p.isaDef, p.sem, target, mask, cfg)
			case "symbolic":
				cfg := symbolic.Config{Config: search.Config{
					Metric: metric, Classify: p.classify,
					Registers: p.registers, Immediates: p.immediates,
					Deadline: deadlineFrom(timeout),
				}}
				result = symbolic.Run(p.isaDef, p.sem, target, mask, cfg)
			case "stochastic":
				cfg := stoke.Config{
					Metric: metric, Classify: p.classify,
					Registers: p.registers, Immediates: p.immediates,
					Deadline: deadlineFrom(timeout), RNGSeed: 1,
				}
				result = stoke.Run(p.isaDef, p.sem, target, mask, cfg)
			case "parallel":
				numWorkers := workers
				if numWorkers <= 0 {
					numWorkers = runtime.NumCPU()
				}
				coordCfg := coordinator.Config{
					NumWorkers: numWorkers, IncludeSymbolic: true, SolutionSharing: true,
					Timeout: timeout, BaseSeed: 1,
					Metric: metric, Classify: p.classify,
					Registers: p.registers, Immediates: p.immediates,
				}
				coordResult := coordinator.Run(p.isaDef, p.sem, target, mask, coordCfg)
				printParallelResult(coordResult)
				return nil
			default:
				return fmt.Errorf("unknown --strategy %q: use enumerative, symbolic, stochastic, or parallel", strategy)
			}

			printSearchResult(result, metric)
			if verbose {
				fmt.Printf("candidates evaluated: %d, length reached: %d, state: %s\n",
					result.Statistics.CandidatesEvaluated, result.Statistics.LengthReached, result.Statistics.State)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&arch, "arch", "aarch64", "Target ISA profile: aarch64 or riscv")
	cmd.Flags().StringVar(&liveOutStr, "live-out", "x0", "Comma/space-separated live-out register list")
	cmd.Flags().StringVar(&metricStr, "metric", "instruction-count", "Cost metric: instruction-count, latency, or code-size")
	cmd.Flags().StringVar(&strategy, "strategy", "enumerative", "Search strategy: enumerative, symbolic, stochastic, or parallel")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Search deadline (0 = unbounded)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel worker count (0 = NumCPU, --strategy parallel only)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var (
		arch       string
		length     int
		count      int
		metricStr  string
		seed       uint64
		output     string
		liveOutStr string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Sweep randomly generated target sequences and checkpoint the optimizations found",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProfile(arch)
			if err != nil {
				return err
			}
			metric, ok := cost.ParseMetric(metricStr)
			if !ok {
				return fmt.Errorf("unknown --metric %q", metricStr)
			}
			mask, err := p.parseLive(liveOutStr)
			if err != nil {
				return fmt.Errorf("failed to parse --live-out: %w", err)
			}

			rng := rand.New(rand.NewPCG(seed, seed^0xA5A5A5A5))
			gen := p.isaDef.Generator()
			table := checkpoint.NewTable()

			for i := 0; i < count; i++ {
				target := make([]isa.Instruction, length)
				for j := range target {
					target[j] = gen.GenerateRandom(rng, p.registers, p.immediates)
				}

				cfg := search.Config{
					Metric: metric, Classify: p.classify,
					Registers: p.registers, Immediates: p.immediates,
					RNGSeed: seed + uint64(i),
				}
				result := search.Run(p.isaDef, p.sem, target, mask, cfg)
				if result.FoundOptimization {
					saved := cost.Delta(
						cost.SequenceCost(target, metric, p.isaDef.InstructionSizeBytes(), p.classify),
						cost.SequenceCost(result.Optimized, metric, p.isaDef.InstructionSizeBytes(), p.classify),
					)
					table.Add(checkpoint.Rule{Source: target, Replacement: result.Optimized, CostSaved: saved, Metric: metric})
				}
			}

			fmt.Printf("Searched %d target sequences of length %d, found %d optimizations\n", count, length, table.Len())
			for _, r := range table.Rules() {
				fmt.Printf("  -%d %s: %s -> %s\n", r.CostSaved, r.Metric, formatAny(p, r.Source), formatAny(p, r.Replacement))
			}

			if output != "" {
				ckpt := &checkpoint.Checkpoint{Rules: table.Rules(), CompletedTarget: count, TargetLen: length}
				if err := checkpoint.Save(output, ckpt); err != nil {
					return fmt.Errorf("failed to save checkpoint: %w", err)
				}
				fmt.Printf("Checkpoint written to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&arch, "arch", "aarch64", "Target ISA profile: aarch64 or riscv")
	cmd.Flags().IntVar(&length, "length", 3, "Target sequence length")
	cmd.Flags().IntVar(&count, "count", 100, "Number of random target sequences to sweep")
	cmd.Flags().StringVar(&metricStr, "metric", "instruction-count", "Cost metric: instruction-count, latency, or code-size")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "RNG seed")
	cmd.Flags().StringVar(&output, "checkpoint", "", "Checkpoint output file path")
	cmd.Flags().StringVar(&liveOutStr, "live-out", "x0", "Comma/space-separated live-out register list")
	return cmd
}

func newLiveoutCmd() *cobra.Command {
	var arch string
	cmd := &cobra.Command{
		Use:   "liveout [registers]",
		Short: "Parse and print a live-out register list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProfile(arch)
			if err != nil {
				return err
			}
			mask, err := p.parseLive(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("registers: %v, sp: %v\n", mask.Registers(), mask.SP)
			return nil
		},
	}
	cmd.Flags().StringVar(&arch, "arch", "aarch64", "Target ISA profile: aarch64 or riscv")
	return cmd
}

func newCostCmd() *cobra.Command {
	var (
		arch      string
		metricStr string
	)
	cmd := &cobra.Command{
		Use:   "cost [instructions]",
		Short: "Print the cost of an instruction sequence under a given metric",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProfile(arch)
			if err != nil {
				return err
			}
			if p.parseText == nil {
				return fmt.Errorf("cost: %s has no text-assembly reader; pass --arch aarch64", p.name)
			}
			seq, err := p.parseText(strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to parse: %w", err)
			}
			metric, ok := cost.ParseMetric(metricStr)
			if !ok {
				return fmt.Errorf("unknown --metric %q", metricStr)
			}
			total := cost.SequenceCost(seq, metric, p.isaDef.InstructionSizeBytes(), p.classify)
			fmt.Printf("%s: %d\n", metric, total)
			return nil
		},
	}
	cmd.Flags().StringVar(&arch, "arch", "aarch64", "Target ISA profile: aarch64 or riscv")
	cmd.Flags().StringVar(&metricStr, "metric", "instruction-count", "Cost metric: instruction-count, latency, or code-size")
	return cmd
}

func deadlineFrom(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

func printSearchResult(result search.Result, metric cost.Metric) {
	if !result.FoundOptimization {
		fmt.Println("No shorter replacement found.")
		fmt.Printf("Candidates evaluated: %d, length reached: %d\n", result.Statistics.CandidatesEvaluated, result.Statistics.LengthReached)
		return
	}
	fmt.Printf("Replacement: %s\n", asmtext.Format(result.Optimized))
	fmt.Printf("(%s metric, %d instructions evaluated)\n", metric, result.Statistics.CandidatesEvaluated)
}

func printParallelResult(result coordinator.Result) {
	if !result.FoundOptimization {
		fmt.Println("No shorter replacement found.")
	} else {
		fmt.Printf("Replacement: %s (cost %d)\n", asmtext.Format(result.Best), result.BestCost)
	}
	fmt.Printf("Total evaluated: %d across %d workers\n", result.TotalEvaluated, len(result.WorkerStats))
	for _, s := range result.WorkerStats {
		fmt.Printf("  worker %d (%s): %d evaluated\n", s.WorkerID, s.Algorithm, s.Evaluated)
	}
	for _, e := range result.Errors {
		fmt.Fprintln(os.Stderr, "  error:", e)
	}
}

// formatAny renders a sequence as ':'-separated assembly text. asmtext.Format
// only joins each instruction's Stringer output, so it works across both
// backends even though asmtext's parser is AArch64-only.
func formatAny(p profile, seq []isa.Instruction) string {
	return asmtext.Format(seq)
}
