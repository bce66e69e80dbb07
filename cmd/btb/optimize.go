package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"

	"github.com/btb-suite/beatthebox/internal/config"
	"github.com/btb-suite/beatthebox/internal/optimizer"
)

var (
	optTrials        int
	optSeed          uint64
	optWorkers       int
	optTop           int
	optJokerMin      int
	optJokerMax      int
	optBudgetMin     int
	optBudgetMax     int
	optThresholdMin  float64
	optThresholdMax  float64
	optThresholdStep float64
	optCutoff        float64
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Grid-search game configurations for the best win rate",
	Long: `optimize simulates every point of the jokers x budget x threshold grid
and ranks the configurations: win rate first, then mean moves, then
budget. Budgets above the cap for a joker count are skipped.`,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().IntVar(&optTrials, "trials", config.DefaultTrials, "trials per grid point")
	optimizeCmd.Flags().Uint64Var(&optSeed, "seed", 0, "master seed (0 = random)")
	optimizeCmd.Flags().IntVar(&optWorkers, "workers", 0, "parallel workers per point (0 = GOMAXPROCS)")
	optimizeCmd.Flags().IntVar(&optTop, "top", 10, "configurations to print")
	optimizeCmd.Flags().IntVar(&optJokerMin, "joker-min", 0, "minimum joker count")
	optimizeCmd.Flags().IntVar(&optJokerMax, "joker-max", 2, "maximum joker count")
	optimizeCmd.Flags().IntVar(&optBudgetMin, "budget-min", 0, "minimum inclusive budget")
	optimizeCmd.Flags().IntVar(&optBudgetMax, "budget-max", 45, "maximum inclusive budget")
	optimizeCmd.Flags().Float64Var(&optThresholdMin, "threshold-min", 0, "minimum threshold")
	optimizeCmd.Flags().Float64Var(&optThresholdMax, "threshold-max", 10, "maximum threshold")
	optimizeCmd.Flags().Float64Var(&optThresholdStep, "threshold-step", config.DefaultThresholdStep, "threshold step")
	optimizeCmd.Flags().Float64Var(&optCutoff, "recovery-cutoff", 0, "exact-match percent that justifies an inclusive spend (0 = default)")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	raw, _, err := loadRaw()
	if err != nil {
		return err
	}
	space, err := config.Sweep(raw)
	if err != nil {
		return err
	}
	overrideSpace(&space, cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	params := optimizer.Params{
		Space:          space,
		TrialsPerPoint: optTrials,
		Seed:           optSeed,
		Workers:        optWorkers,
		RecoveryCutoff: optCutoff,
		OnProgress: func(done, total int, best optimizer.Result) {
			log.Printf("point %d/%d, best so far %s (win rate %.2f%%)",
				done, total, best.Point, best.Stats.WinRate)
		},
	}
	results, err := optimizer.Search(ctx, params)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no grid point finished")
	}

	top := optTop
	if top > len(results) {
		top = len(results)
	}
	fmt.Printf("\ntop %d of %d configurations:\n", top, len(results))
	for i, r := range results[:top] {
		fmt.Printf("%2d. %s  win rate %.2f%%  moves %.2f  inclusive used %.2f\n",
			i+1, r.Point, r.Stats.WinRate, r.Stats.Moves.Mean, r.Stats.MeanInclusiveUsed)
	}
	printParameterBests(results)
	return nil
}

// printParameterBests reports the best configuration reachable at each
// distinct value of every swept parameter.
func printParameterBests(results []optimizer.Result) {
	pb := optimizer.BestPerParameter(results)

	fmt.Println("\nbest per joker count:")
	for _, j := range sortedKeys(pb.ByJokers) {
		r := pb.ByJokers[j]
		fmt.Printf("  jokers=%d: %s  win rate %.2f%%\n", j, r.Point, r.Stats.WinRate)
	}
	fmt.Println("best per inclusive budget:")
	for _, b := range sortedKeys(pb.ByBudget) {
		r := pb.ByBudget[b]
		fmt.Printf("  budget=%d: %s  win rate %.2f%%\n", b, r.Point, r.Stats.WinRate)
	}
	fmt.Println("best per threshold:")
	for _, th := range sortedKeys(pb.ByThreshold) {
		r := pb.ByThreshold[th]
		fmt.Printf("  threshold=%.2f: %s  win rate %.2f%%\n", th, r.Point, r.Stats.WinRate)
	}
}

func sortedKeys[K int | float64](m map[K]optimizer.Result) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func overrideSpace(s *optimizer.Space, cmd *cobra.Command) {
	if cmd.Flags().Changed("joker-min") {
		s.JokerMin = optJokerMin
	}
	if cmd.Flags().Changed("joker-max") {
		s.JokerMax = optJokerMax
	}
	if cmd.Flags().Changed("budget-min") {
		s.BudgetMin = optBudgetMin
	}
	if cmd.Flags().Changed("budget-max") {
		s.BudgetMax = optBudgetMax
	}
	if cmd.Flags().Changed("threshold-min") {
		s.ThresholdMin = optThresholdMin
	}
	if cmd.Flags().Changed("threshold-max") {
		s.ThresholdMax = optThresholdMax
	}
	if cmd.Flags().Changed("threshold-step") {
		s.ThresholdStep = optThresholdStep
	}
}
