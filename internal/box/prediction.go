package box

import "fmt"

// Prediction is the player's call on the next drawn card relative to the
// selected position. The two inclusive modes spend budget and open the
// recovery window on an exact match.
type Prediction int

const (
	Higher Prediction = iota
	Lower
	HigherOrEqual
	LowerOrEqual
)

func (p Prediction) Inclusive() bool {
	return p == HigherOrEqual || p == LowerOrEqual
}

func (p Prediction) String() string {
	switch p {
	case Higher:
		return "higher"
	case Lower:
		return "lower"
	case HigherOrEqual:
		return "higher_equal"
	case LowerOrEqual:
		return "lower_equal"
	}
	return fmt.Sprintf("prediction(%d)", int(p))
}

// ParsePrediction accepts the wire names plus single-letter shorthands
// used by the interactive player (h, l, H/he, L/le).
func ParsePrediction(s string) (Prediction, error) {
	switch s {
	case "higher", "h":
		return Higher, nil
	case "lower", "l":
		return Lower, nil
	case "higher_equal", "he", "H":
		return HigherOrEqual, nil
	case "lower_equal", "le", "L":
		return LowerOrEqual, nil
	}
	return 0, fmt.Errorf("unknown prediction %q", s)
}
