package box_test

import (
	"errors"
	"testing"

	"github.com/btb-suite/beatthebox/internal/box"
	"github.com/btb-suite/beatthebox/internal/deck"
)

func card(r deck.Rank) deck.Card { return deck.Card{Rank: r, Suit: deck.SuitSpades} }

func joker() deck.Card { return deck.Card{Joker: true} }

// deal nine cards ranked 2..10 across the grid.
func testState(t *testing.T) box.State {
	t.Helper()
	cards := make([]deck.Card, 0, box.Positions)
	for r := deck.RankTwo; r <= deck.RankTen; r++ {
		cards = append(cards, card(r))
	}
	s, err := box.Deal(cards)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDealRequiresNineCards(t *testing.T) {
	if _, err := box.Deal(make([]deck.Card, 8)); !errors.Is(err, box.ErrBadDeal) {
		t.Fatalf("Deal with 8 cards: got %v, want ErrBadDeal", err)
	}
}

func TestApplyOutcomes(t *testing.T) {
	// Position 3 holds rank 5 in the test deal.
	cases := []struct {
		name    string
		pred    box.Prediction
		drawn   deck.Card
		budget  int
		outcome box.Outcome
		budgetAfter int
	}{
		{"higher correct", box.Higher, card(deck.RankNine), 0, box.OutcomeReplace, 0},
		{"lower correct", box.Lower, card(deck.RankThree), 0, box.OutcomeReplace, 0},
		{"higher wrong", box.Higher, card(deck.RankThree), 0, box.OutcomeFailure, 0},
		{"equal fails plain higher", box.Higher, card(deck.RankFive), 0, box.OutcomeFailure, 0},
		{"equal fails plain lower", box.Lower, card(deck.RankFive), 0, box.OutcomeFailure, 0},
		{"inclusive exact", box.HigherOrEqual, card(deck.RankFive), 3, box.OutcomeExactRecovery, 2},
		{"inclusive non-exact", box.LowerOrEqual, card(deck.RankTwo), 3, box.OutcomeReplace, 2},
		{"inclusive wrong", box.HigherOrEqual, card(deck.RankTwo), 3, box.OutcomeFailure, 2},
		{"joker drawn plain", box.Higher, joker(), 0, box.OutcomeJoker, 0},
		{"joker drawn inclusive", box.LowerOrEqual, joker(), 1, box.OutcomeExactRecovery, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := testState(t)
			res, err := box.Apply(s, tc.budget, box.Move{
				Position:       3,
				Prediction:     tc.pred,
				Drawn:          tc.drawn,
				RecoveryTarget: -1,
			})
			if err != nil {
				t.Fatal(err)
			}
			if res.Outcome != tc.outcome {
				t.Fatalf("outcome=%s, want %s", res.Outcome, tc.outcome)
			}
			if res.Budget != tc.budgetAfter {
				t.Fatalf("budget=%d, want %d", res.Budget, tc.budgetAfter)
			}
			if tc.outcome == box.OutcomeFailure {
				if res.State.Active(3) {
					t.Fatalf("failed position still active")
				}
				if fc, ok := res.State.FailedCard(3); !ok || fc != card(deck.RankFive) {
					t.Fatalf("failed position must retain its card, got %v ok=%v", fc, ok)
				}
			} else {
				got, err := res.State.Card(3)
				if err != nil {
					t.Fatal(err)
				}
				if got != tc.drawn {
					t.Fatalf("position card=%s, want drawn %s", got, tc.drawn)
				}
			}
		})
	}
}

func TestApplyJokerTargetAlwaysSucceeds(t *testing.T) {
	cards := make([]deck.Card, 0, box.Positions)
	cards = append(cards, joker())
	for r := deck.RankTwo; r <= deck.RankNine; r++ {
		cards = append(cards, card(r))
	}
	s, err := box.Deal(cards)
	if err != nil {
		t.Fatal(err)
	}
	res, err := box.Apply(s, 0, box.Move{
		Position: 0, Prediction: box.Lower, Drawn: card(deck.RankAce), RecoveryTarget: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != box.OutcomeJoker {
		t.Fatalf("outcome=%s, want %s", res.Outcome, box.OutcomeJoker)
	}
	if got, _ := res.State.Card(0); got != card(deck.RankAce) {
		t.Fatalf("drawn card must replace the joker, got %s", got)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := testState(t)
	_, err := box.Apply(s, 0, box.Move{
		Position: 0, Prediction: box.Higher, Drawn: card(deck.RankTwo), RecoveryTarget: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !s.Active(0) {
		t.Fatalf("Apply mutated its input state")
	}
}

func TestApplyBudgetExhausted(t *testing.T) {
	s := testState(t)
	_, err := box.Apply(s, 0, box.Move{
		Position: 0, Prediction: box.HigherOrEqual, Drawn: card(deck.RankNine), RecoveryTarget: -1,
	})
	if !errors.Is(err, box.ErrInsufficientBudget) {
		t.Fatalf("got %v, want ErrInsufficientBudget", err)
	}
}

func TestApplyRejectsFailedOrBadPosition(t *testing.T) {
	s := testState(t)
	res, err := box.Apply(s, 0, box.Move{
		Position: 2, Prediction: box.Higher, Drawn: card(deck.RankTwo), RecoveryTarget: -1,
	})
	if err != nil || res.Outcome != box.OutcomeFailure {
		t.Fatalf("setup move: outcome=%v err=%v", res.Outcome, err)
	}
	if _, err := box.Apply(res.State, 0, box.Move{
		Position: 2, Prediction: box.Higher, Drawn: card(deck.RankNine), RecoveryTarget: -1,
	}); !errors.Is(err, box.ErrFailedPosition) {
		t.Fatalf("playing a failed position: got %v, want ErrFailedPosition", err)
	}
	if _, err := box.Apply(s, 0, box.Move{
		Position: 9, Prediction: box.Higher, Drawn: card(deck.RankNine), RecoveryTarget: -1,
	}); !errors.Is(err, box.ErrInvalidPosition) {
		t.Fatalf("position 9: got %v, want ErrInvalidPosition", err)
	}
}

func TestApplyRecoveryRestoresFailedPosition(t *testing.T) {
	s := testState(t)
	// Fail position 6 (rank 8) first.
	res, err := box.Apply(s, 0, box.Move{
		Position: 6, Prediction: box.Higher, Drawn: card(deck.RankTwo), RecoveryTarget: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Exact hit on position 3 (rank 5) with an inclusive mode recovers it.
	res, err = box.Apply(res.State, 2, box.Move{
		Position: 3, Prediction: box.LowerOrEqual, Drawn: card(deck.RankFive), RecoveryTarget: 6,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != box.OutcomeExactRecovery {
		t.Fatalf("outcome=%s, want %s", res.Outcome, box.OutcomeExactRecovery)
	}
	if res.Recovered != 6 {
		t.Fatalf("recovered=%d, want 6", res.Recovered)
	}
	got, err := res.State.Card(6)
	if err != nil {
		t.Fatalf("recovered position must be active: %v", err)
	}
	if got != card(deck.RankEight) {
		t.Fatalf("recovered position holds %s, want its prior 8♠", got)
	}
}

func TestApplyRecoveryRequestErrors(t *testing.T) {
	s := testState(t)
	if _, err := box.Apply(s, 1, box.Move{
		Position: 0, Prediction: box.Higher, Drawn: card(deck.RankNine), RecoveryTarget: 4,
	}); !errors.Is(err, box.ErrRecoveryNotAllowed) {
		t.Fatalf("recovery with plain prediction: got %v, want ErrRecoveryNotAllowed", err)
	}
	if _, err := box.Apply(s, 1, box.Move{
		Position: 3, Prediction: box.HigherOrEqual, Drawn: card(deck.RankFive), RecoveryTarget: 4,
	}); !errors.Is(err, box.ErrRecoveryNotFailed) {
		t.Fatalf("recovering an active position: got %v, want ErrRecoveryNotFailed", err)
	}
}

func TestApplyIgnoresUnusedRecoveryRequest(t *testing.T) {
	s := testState(t)
	res, err := box.Apply(s, 0, box.Move{
		Position: 5, Prediction: box.Higher, Drawn: card(deck.RankTwo), RecoveryTarget: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Non-exact inclusive success: the standing request goes unused.
	res, err = box.Apply(res.State, 1, box.Move{
		Position: 3, Prediction: box.HigherOrEqual, Drawn: card(deck.RankKing), RecoveryTarget: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != box.OutcomeReplace {
		t.Fatalf("outcome=%s, want %s", res.Outcome, box.OutcomeReplace)
	}
	if res.Recovered != -1 {
		t.Fatalf("recovered=%d, want -1", res.Recovered)
	}
	if res.State.Active(5) {
		t.Fatalf("position 5 must stay failed without an exact hit")
	}
}

func TestRecoverStandalone(t *testing.T) {
	s := testState(t)
	res, err := box.Apply(s, 0, box.Move{
		Position: 1, Prediction: box.Lower, Drawn: card(deck.RankAce), RecoveryTarget: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	ns, c, err := box.Recover(res.State, 1)
	if err != nil {
		t.Fatal(err)
	}
	if c != card(deck.RankThree) {
		t.Fatalf("recovered card=%s, want 3♠", c)
	}
	if !ns.Active(1) {
		t.Fatalf("position 1 must be active after recovery")
	}
	if _, _, err := box.Recover(s, 1); !errors.Is(err, box.ErrRecoveryNotFailed) {
		t.Fatalf("recovering an active position: got %v, want ErrRecoveryNotFailed", err)
	}
}

func TestFailedPositionsOrder(t *testing.T) {
	s := testState(t)
	for _, pos := range []int{7, 2, 4} {
		res, err := box.Apply(s, 0, box.Move{
			Position: pos, Prediction: box.Higher, Drawn: card(deck.RankTwo), RecoveryTarget: -1,
		})
		if err != nil {
			t.Fatal(err)
		}
		s = res.State
	}
	got := s.FailedPositions()
	want := []int{2, 4, 7}
	if len(got) != len(want) {
		t.Fatalf("failed=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("failed=%v, want ascending %v", got, want)
		}
	}
	if s.ActiveCount() != 6 {
		t.Fatalf("active=%d, want 6", s.ActiveCount())
	}
}

func TestParsePrediction(t *testing.T) {
	cases := map[string]box.Prediction{
		"h":            box.Higher,
		"higher":       box.Higher,
		"l":            box.Lower,
		"lower":        box.Lower,
		"H":            box.HigherOrEqual,
		"he":           box.HigherOrEqual,
		"higher_equal": box.HigherOrEqual,
		"L":            box.LowerOrEqual,
		"le":           box.LowerOrEqual,
		"lower_equal":  box.LowerOrEqual,
	}
	for in, want := range cases {
		got, err := box.ParsePrediction(in)
		if err != nil {
			t.Fatalf("ParsePrediction(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParsePrediction(%q)=%s, want %s", in, got, want)
		}
	}
	if _, err := box.ParsePrediction("sideways"); err == nil {
		t.Fatalf("bad prediction must error")
	}
	if box.Higher.Inclusive() || !box.HigherOrEqual.Inclusive() {
		t.Fatalf("Inclusive misclassifies modes")
	}
}
