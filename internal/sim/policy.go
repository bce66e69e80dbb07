package sim

import (
	"github.com/btb-suite/beatthebox/internal/box"
	"github.com/btb-suite/beatthebox/internal/session"
)

// Decision is one automated move: the position to play, the prediction,
// and the failed position to recover if the move turns out eligible
// (-1 for none).
type Decision struct {
	Position   int
	Prediction box.Prediction
	Recovery   int
}

// Policy chooses the next move for an in-progress session. Implementations
// must be deterministic given the same session state so seeded trials
// reproduce exactly.
type Policy interface {
	Decide(s *session.Session) (Decision, bool)
}

// ThresholdPolicy scores every legal move by its estimated success chance
// and plays the best one. An inclusive move is worth its budget cost only
// when it beats the best plain move by at least Margin percentage points,
// or edges it out while the exact-match chance clears RecoveryCutoff
// (recovery odds justify the spend). Both knobs are tunable; the second
// defaults to 20 percent.
type ThresholdPolicy struct {
	Margin         float64
	RecoveryCutoff float64
}

func NewThresholdPolicy(margin float64) ThresholdPolicy {
	return ThresholdPolicy{Margin: margin, RecoveryCutoff: 20}
}

func (p ThresholdPolicy) Decide(s *session.Session) (Decision, bool) {
	bestProb := -1.0
	best := Decision{Position: -1, Recovery: -1}
	failed := s.Box().FailedPositions()

	for pos := 0; pos < box.Positions; pos++ {
		probs, err := s.Probabilities(pos)
		if err != nil {
			continue // failed position or exhausted pile
		}

		for _, pred := range []box.Prediction{box.Higher, box.Lower} {
			pr := probs.Higher
			if pred == box.Lower {
				pr = probs.Lower
			}
			if pr > bestProb {
				bestProb = pr
				best = Decision{Position: pos, Prediction: pred, Recovery: -1}
			}
		}

		if s.Budget() <= 0 {
			continue
		}
		for _, pred := range []box.Prediction{box.HigherOrEqual, box.LowerOrEqual} {
			pr := probs.HigherOrEqual
			if pred == box.LowerOrEqual {
				pr = probs.LowerOrEqual
			}
			spend := pr > bestProb+p.Margin ||
				(pr > bestProb && probs.ExactMatch > p.RecoveryCutoff)
			if !spend {
				continue
			}
			bestProb = pr
			recovery := -1
			if len(failed) > 0 && probs.ExactMatch > p.RecoveryCutoff {
				recovery = failed[len(failed)-1]
			}
			best = Decision{Position: pos, Prediction: pred, Recovery: recovery}
		}
	}

	if best.Position >= 0 {
		return best, true
	}

	// No scored move (empty estimates); fall back to the first active
	// position, guessing around the middle rank.
	for pos := 0; pos < box.Positions; pos++ {
		c, err := s.Box().Card(pos)
		if err != nil {
			continue
		}
		pred := box.Lower
		if c.Joker || c.Rank <= 7 {
			pred = box.Higher
		}
		return Decision{Position: pos, Prediction: pred, Recovery: -1}, true
	}
	return Decision{}, false
}
