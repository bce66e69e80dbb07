package box

import (
	"errors"
	"fmt"

	"github.com/btb-suite/beatthebox/internal/deck"
)

var (
	ErrInsufficientBudget = errors.New("no inclusive choices remaining")
	ErrRecoveryNotAllowed = errors.New("recovery requires an exact inclusive success")
	ErrRecoveryNotFailed  = errors.New("recovery target is not a failed position")
)

// Outcome classifies one applied move.
type Outcome int

const (
	// Correct prediction; drawn card replaced the target.
	OutcomeReplace Outcome = iota
	// Inclusive exact match (or joker under an inclusive mode); the move
	// succeeded and one failed position was eligible for recovery.
	OutcomeExactRecovery
	// Joker drawn or joker target under a plain mode; automatic success.
	OutcomeJoker
	// Wrong prediction; target position failed.
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReplace:
		return "success"
	case OutcomeExactRecovery:
		return "success_recovery"
	case OutcomeJoker:
		return "success_joker"
	case OutcomeFailure:
		return "failure"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Move is one prediction against the box. RecoveryTarget (-1 for none)
// names the failed position to restore if the move turns out
// recovery-eligible; the drawn card is unknown when the caller commits,
// so an unused request on an inclusive move is not an error.
type Move struct {
	Position       int
	Prediction     Prediction
	Drawn          deck.Card
	RecoveryTarget int
}

// Result is the atomic outcome of Apply: the successor state, the new
// inclusive budget, and what happened. Recovered is the restored position
// index, or -1.
type Result struct {
	State     State
	Budget    int
	Outcome   Outcome
	Recovered int
}

// Apply is the rule engine: a pure transition from (state, budget, move)
// to a Result. It never mutates its inputs; on error nothing changed.
//
// Rules, in order:
//   - the target must be an active position;
//   - an inclusive prediction costs one budget unit and fails outright at 0;
//   - a joker (drawn or target) always succeeds;
//   - under an inclusive mode, a joker or an exact rank match additionally
//     opens recovery of one failed position within this same transition;
//   - otherwise the numeric comparison decides, and a miss fails the target.
func Apply(s State, budget int, m Move) (Result, error) {
	target, err := s.Card(m.Position)
	if err != nil {
		return Result{}, err
	}
	if m.RecoveryTarget >= 0 && !m.Prediction.Inclusive() {
		return Result{}, ErrRecoveryNotAllowed
	}
	if m.Prediction.Inclusive() {
		if budget <= 0 {
			return Result{}, ErrInsufficientBudget
		}
		budget--
	}

	res := Result{State: s, Budget: budget, Recovered: -1}

	jokerPlay := m.Drawn.Joker || target.Joker
	exact := jokerPlay || m.Drawn.Rank == target.Rank
	success := jokerPlay || correct(m.Prediction, m.Drawn.Rank, target.Rank)

	if !success {
		res.State.pos[m.Position].failed = true
		res.Outcome = OutcomeFailure
		return res, nil
	}

	res.State.pos[m.Position] = position{card: m.Drawn}
	switch {
	case m.Prediction.Inclusive() && exact:
		res.Outcome = OutcomeExactRecovery
	case jokerPlay:
		res.Outcome = OutcomeJoker
	default:
		res.Outcome = OutcomeReplace
	}

	if res.Outcome == OutcomeExactRecovery && m.RecoveryTarget >= 0 {
		if m.RecoveryTarget >= Positions || !res.State.pos[m.RecoveryTarget].failed {
			return Result{}, fmt.Errorf("%w: %d", ErrRecoveryNotFailed, m.RecoveryTarget)
		}
		res.State.pos[m.RecoveryTarget].failed = false
		res.Recovered = m.RecoveryTarget
	}
	return res, nil
}

// Recover restores a failed position outside of Apply, for callers that
// defer the choice until after seeing the outcome (interactive play).
func Recover(s State, i int) (State, deck.Card, error) {
	if i < 0 || i >= Positions || !s.pos[i].failed {
		return s, deck.Card{}, fmt.Errorf("%w: %d", ErrRecoveryNotFailed, i)
	}
	s.pos[i].failed = false
	return s, s.pos[i].card, nil
}

func correct(p Prediction, drawn, target deck.Rank) bool {
	switch p {
	case Higher:
		return drawn > target
	case Lower:
		return drawn < target
	case HigherOrEqual:
		return drawn >= target
	case LowerOrEqual:
		return drawn <= target
	}
	return false
}
