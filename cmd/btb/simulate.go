package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"

	"github.com/btb-suite/beatthebox/internal/config"
	"github.com/btb-suite/beatthebox/internal/sim"
)

var (
	simTrials    int
	simJokers    int
	simBudget    int
	simThreshold float64
	simSeed      uint64
	simWorkers   int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a batch of automated games and report aggregate statistics",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simTrials, "trials", config.DefaultTrials, "number of games to play")
	simulateCmd.Flags().IntVar(&simJokers, "jokers", 0, "jokers added to the deck (0-2)")
	simulateCmd.Flags().IntVar(&simBudget, "budget", 0, "inclusive prediction budget")
	simulateCmd.Flags().Float64Var(&simThreshold, "threshold", config.DefaultThreshold, "inclusive-move margin for the policy")
	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 0, "master seed (0 = random)")
	simulateCmd.Flags().IntVar(&simWorkers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	raw, _, err := loadRaw()
	if err != nil {
		return err
	}
	params, err := config.Batch(raw)
	if err != nil {
		return err
	}
	overrideBatch(&params, cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	pol := sim.NewThresholdPolicy(params.Config.Threshold)
	stats, err := sim.RunBatch(ctx, params, pol)
	if err != nil {
		return err
	}
	printStats(stats)
	return nil
}

func overrideBatch(p *sim.BatchParams, cmd *cobra.Command) {
	if cmd.Flags().Changed("trials") {
		p.Trials = simTrials
	}
	if cmd.Flags().Changed("jokers") {
		p.Config.Jokers = simJokers
	}
	if cmd.Flags().Changed("budget") {
		p.Config.InclusiveBudget = simBudget
	}
	if cmd.Flags().Changed("threshold") {
		p.Config.Threshold = simThreshold
	}
	if cmd.Flags().Changed("seed") {
		p.Seed = simSeed
	}
	if cmd.Flags().Changed("workers") {
		p.Workers = simWorkers
	}
}

func printStats(st sim.AggregateStats) {
	fmt.Printf("trials    %d (wins %d, losses %d, violations %d)\n",
		st.Trials, st.Wins, st.Losses, st.Violations)
	fmt.Printf("win rate  %.2f%%\n", st.WinRate)
	fmt.Printf("moves     mean %.2f, stddev %.2f, p50 %.0f, p90 %.0f, p99 %.0f\n",
		st.Moves.Mean, st.Moves.StdDev, st.Moves.P50, st.Moves.P90, st.Moves.P99)
	fmt.Printf("means     inclusive used %.2f, recoveries %.2f, jokers drawn %.2f\n",
		st.MeanInclusiveUsed, st.MeanRecoveries, st.MeanJokersDrawn)
	printHistogram("inclusive left at game end", st.InclusiveLeft)
	printHistogram("active positions left in wins", st.BoxesLeftInWins)
	printHistogram("cards left in losses", st.CardsLeftInLosses)
}

func printHistogram(title string, h map[int]int) {
	if len(h) == 0 {
		return
	}
	keys := make([]int, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	fmt.Println(title + ":")
	for _, k := range keys {
		fmt.Printf("  %3d: %d\n", k, h[k])
	}
}
