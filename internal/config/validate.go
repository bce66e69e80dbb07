package config

import (
	"fmt"
	"strings"

	"github.com/btb-suite/beatthebox/internal/session"
)

// ValidateRaw checks semantic constraints of a RawConfig. All problems
// come back in one error.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if g := cfg.Game; g != nil {
		jokers := 0
		if g.Jokers != nil {
			jokers = *g.Jokers
			if jokers < 0 || jokers > 2 {
				errs = append(errs, "game.jokers must be 0, 1 or 2")
			}
		}
		if g.InclusiveBudget != nil {
			max := session.BaseInclusiveMax + jokers
			if *g.InclusiveBudget < 0 || *g.InclusiveBudget > max {
				errs = append(errs, fmt.Sprintf("game.inclusive_budget must be 0..%d with %d joker(s)", max, jokers))
			}
		}
		if g.Threshold != nil && (*g.Threshold < 0 || *g.Threshold > 100) {
			errs = append(errs, "game.threshold must be in 0..100")
		}
	}

	if s := cfg.Simulation; s != nil {
		if s.Trials != nil && *s.Trials <= 0 {
			errs = append(errs, "simulation.trials must be >= 1")
		}
		if s.Workers != nil && *s.Workers < 0 {
			errs = append(errs, "simulation.workers must be >= 0 (0 means all cores)")
		}
	}

	if w := cfg.Sweep; w != nil {
		if w.JokerMin != nil && w.JokerMax != nil && (*w.JokerMin < 0 || *w.JokerMax > 2 || *w.JokerMin > *w.JokerMax) {
			errs = append(errs, "sweep joker range must satisfy 0 <= min <= max <= 2")
		}
		if w.BudgetMin != nil && w.BudgetMax != nil && (*w.BudgetMin < 0 || *w.BudgetMin > *w.BudgetMax) {
			errs = append(errs, "sweep budget range must satisfy 0 <= min <= max")
		}
		if w.ThresholdMin != nil && w.ThresholdMax != nil && (*w.ThresholdMin < 0 || *w.ThresholdMax > 100 || *w.ThresholdMin > *w.ThresholdMax) {
			errs = append(errs, "sweep threshold range must satisfy 0 <= min <= max <= 100")
		}
		if w.ThresholdStep != nil && *w.ThresholdStep <= 0 {
			errs = append(errs, "sweep.threshold_step must be > 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
