package config

import (
	"github.com/btb-suite/beatthebox/internal/optimizer"
	"github.com/btb-suite/beatthebox/internal/session"
	"github.com/btb-suite/beatthebox/internal/sim"
)

// Defaults when neither the preset nor the caller says otherwise.
const (
	DefaultTrials        = 1000
	DefaultThreshold     = 9.5
	DefaultThresholdStep = 0.5
)

// GameSession resolves a validated session.Config from a raw preset.
func GameSession(cfg RawConfig) (session.Config, error) {
	out := session.Config{Threshold: DefaultThreshold}
	if g := cfg.Game; g != nil {
		if g.Jokers != nil {
			out.Jokers = *g.Jokers
		}
		if g.InclusiveBudget != nil {
			out.InclusiveBudget = *g.InclusiveBudget
		}
		if g.Threshold != nil {
			out.Threshold = *g.Threshold
		}
		if g.ShowFailed != nil {
			out.FailedCardVisible = *g.ShowFailed
		}
	}
	return out, out.Validate()
}

// Batch resolves simulator parameters from a raw preset.
func Batch(cfg RawConfig) (sim.BatchParams, error) {
	gc, err := GameSession(cfg)
	if err != nil {
		return sim.BatchParams{}, err
	}
	out := sim.BatchParams{Config: gc, Trials: DefaultTrials}
	if s := cfg.Simulation; s != nil {
		if s.Trials != nil {
			out.Trials = *s.Trials
		}
		if s.Seed != nil {
			out.Seed = *s.Seed
		}
		if s.Workers != nil {
			out.Workers = *s.Workers
		}
	}
	return out, nil
}

// Sweep resolves an optimizer space from a raw preset. Absent bounds fall
// back to the full documented ranges with the default step.
func Sweep(cfg RawConfig) (optimizer.Space, error) {
	out := optimizer.Space{
		JokerMax:      2,
		BudgetMax:     session.BaseInclusiveMax + 2,
		ThresholdMax:  10,
		ThresholdStep: DefaultThresholdStep,
	}
	if w := cfg.Sweep; w != nil {
		if w.JokerMin != nil {
			out.JokerMin = *w.JokerMin
		}
		if w.JokerMax != nil {
			out.JokerMax = *w.JokerMax
		}
		if w.BudgetMin != nil {
			out.BudgetMin = *w.BudgetMin
		}
		if w.BudgetMax != nil {
			out.BudgetMax = *w.BudgetMax
		}
		if w.ThresholdMin != nil {
			out.ThresholdMin = *w.ThresholdMin
		}
		if w.ThresholdMax != nil {
			out.ThresholdMax = *w.ThresholdMax
		}
		if w.ThresholdStep != nil {
			out.ThresholdStep = *w.ThresholdStep
		}
	}
	return out, out.Validate()
}
