package main

import (
	"testing"

	"github.com/btb-suite/beatthebox/internal/config"
	"github.com/btb-suite/beatthebox/internal/optimizer"
	"github.com/btb-suite/beatthebox/internal/sim"
)

func TestOverrideBatchLayersChangedFlags(t *testing.T) {
	if err := simulateCmd.ParseFlags([]string{"--trials", "50", "--jokers", "2", "--seed", "9"}); err != nil {
		t.Fatal(err)
	}
	p := sim.BatchParams{Trials: config.DefaultTrials}
	p.Config.Threshold = config.DefaultThreshold
	overrideBatch(&p, simulateCmd)

	if p.Trials != 50 || p.Config.Jokers != 2 || p.Seed != 9 {
		t.Fatalf("overrides not applied: %+v", p)
	}
	// Untouched flags keep the resolved values.
	if p.Config.Threshold != config.DefaultThreshold {
		t.Fatalf("threshold=%f, want untouched default", p.Config.Threshold)
	}
}

func TestOverrideSpaceLayersChangedFlags(t *testing.T) {
	if err := optimizeCmd.ParseFlags([]string{"--budget-min", "3", "--threshold-step", "1"}); err != nil {
		t.Fatal(err)
	}
	s := optimizer.Space{JokerMax: 2, BudgetMax: 45, ThresholdMax: 10, ThresholdStep: config.DefaultThresholdStep}
	overrideSpace(&s, optimizeCmd)

	if s.BudgetMin != 3 || s.ThresholdStep != 1 {
		t.Fatalf("overrides not applied: %+v", s)
	}
	if s.BudgetMax != 45 {
		t.Fatalf("budget max=%d, want untouched 45", s.BudgetMax)
	}
}

func TestPlayConfigLayersChangedFlags(t *testing.T) {
	if err := playCmd.ParseFlags([]string{"--jokers", "1", "--budget", "5"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := playConfig(playCmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jokers != 1 || cfg.InclusiveBudget != 5 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Threshold != config.DefaultThreshold {
		t.Fatalf("threshold=%f, want the built-in default", cfg.Threshold)
	}
}
