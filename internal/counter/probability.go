package counter

import "github.com/btb-suite/beatthebox/internal/deck"

// Probabilities estimates, in percent, the chance that the next draw
// satisfies each prediction mode against one target card. Jokers in the
// pile succeed against every mode, so they count toward higher, lower,
// and the exact-match chance alike.
type Probabilities struct {
	Higher        float64
	Lower         float64
	HigherOrEqual float64
	LowerOrEqual  float64
	ExactMatch    float64
}

// MoveProbabilities computes the estimate from the remaining-card tally.
// A joker target is a certain success in every mode. The second return is
// false when the pile is empty.
func (s *Set) MoveProbabilities(target deck.Card) (Probabilities, bool) {
	total := s.RemainingCards()
	if total == 0 {
		return Probabilities{}, false
	}
	if target.Joker {
		return Probabilities{
			Higher: 100, Lower: 100,
			HigherOrEqual: 100, LowerOrEqual: 100,
			ExactMatch: 100,
		}, true
	}

	var higher, lower, equal int
	for r, n := range s.remaining {
		switch {
		case r > target.Rank:
			higher += n
		case r < target.Rank:
			lower += n
		default:
			equal += n
		}
	}

	pct := func(n int) float64 { return float64(n) / float64(total) * 100 }
	return Probabilities{
		Higher:        pct(higher + s.jokers),
		Lower:         pct(lower + s.jokers),
		HigherOrEqual: pct(higher + equal + s.jokers),
		LowerOrEqual:  pct(lower + equal + s.jokers),
		ExactMatch:    pct(equal + s.jokers),
	}, true
}
