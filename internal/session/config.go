package session

import (
	"fmt"
	"strings"
)

// BaseInclusiveMax is the largest inclusive budget with no jokers; each
// joker in play raises the cap by one (so 45 at two jokers).
const BaseInclusiveMax = 43

// Config fixes one game's parameters. Immutable for the session.
type Config struct {
	Jokers            int
	InclusiveBudget   int
	Threshold         float64 // decision margin for automated play, percent
	FailedCardVisible bool    // reveal failed cards in views during recovery
}

// Validate rejects out-of-bounds parameters before any session starts.
func (c Config) Validate() error {
	var errs []string
	if c.Jokers < 0 || c.Jokers > 2 {
		errs = append(errs, "jokers must be 0, 1 or 2")
	}
	if max := BaseInclusiveMax + c.Jokers; c.InclusiveBudget < 0 || c.InclusiveBudget > max {
		errs = append(errs, fmt.Sprintf("inclusive budget must be 0..%d with %d joker(s)", max, c.Jokers))
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		errs = append(errs, "threshold must be in 0..100")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
