package session_test

import (
	"errors"
	"testing"

	"github.com/btb-suite/beatthebox/internal/box"
	"github.com/btb-suite/beatthebox/internal/counter"
	"github.com/btb-suite/beatthebox/internal/deck"
	"github.com/btb-suite/beatthebox/internal/session"
)

func mustStart(t *testing.T, cfg session.Config, seed uint64) *session.Session {
	t.Helper()
	s, err := session.Start(cfg, deck.NewSeededRNG(seed))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// firstActive plays the naive fallback: first active position, higher on
// low cards, lower on high ones.
func firstActive(t *testing.T, s *session.Session) (int, box.Prediction) {
	t.Helper()
	for i := 0; i < box.Positions; i++ {
		c, err := s.Box().Card(i)
		if err != nil {
			continue
		}
		if c.Joker || c.Rank <= deck.RankSeven {
			return i, box.Higher
		}
		return i, box.Lower
	}
	t.Fatal("no active position in a non-terminal session")
	return 0, box.Higher
}

func TestGameRunsToTermination(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		s := mustStart(t, session.Config{Jokers: 1, Threshold: 9.5}, seed)
		if s.Remaining() != 53-box.Positions {
			t.Fatalf("pile=%d after the deal, want %d", s.Remaining(), 53-box.Positions)
		}
		for !s.Phase().Terminal() {
			pos, pred := firstActive(t, s)
			if _, err := s.Step(pos, pred, -1); err != nil {
				t.Fatalf("seed %d: step: %v", seed, err)
			}
		}
		res, err := s.Result()
		if err != nil {
			t.Fatal(err)
		}
		if res.Moves != s.Moves() {
			t.Fatalf("result moves=%d, session moves=%d", res.Moves, s.Moves())
		}
		if s.Remaining()+box.Positions+res.Moves != 53 {
			t.Fatalf("seed %d: card conservation broken: pile=%d moves=%d", seed, s.Remaining(), res.Moves)
		}
		switch {
		case res.Won && (res.CardsLeft != 0 || res.ActiveLeft == 0):
			t.Fatalf("seed %d: won with pile=%d active=%d", seed, res.CardsLeft, res.ActiveLeft)
		case !res.Won && res.ActiveLeft != 0:
			t.Fatalf("seed %d: lost with %d active positions", seed, res.ActiveLeft)
		}
		if _, err := s.Step(0, box.Higher, -1); !errors.Is(err, session.ErrTerminated) {
			t.Fatalf("step after termination: got %v, want ErrTerminated", err)
		}
	}
}

func TestResultBeforeTermination(t *testing.T) {
	s := mustStart(t, session.Config{Threshold: 9.5}, 1)
	if _, err := s.Result(); !errors.Is(err, session.ErrNotTerminated) {
		t.Fatalf("got %v, want ErrNotTerminated", err)
	}
}

func TestRejectedStepChangesNothing(t *testing.T) {
	s := mustStart(t, session.Config{Jokers: 0, InclusiveBudget: 0, Threshold: 9.5}, 2)
	pile := s.Remaining()
	recorded := s.Counters().Recorded()

	if _, err := s.Step(0, box.HigherOrEqual, -1); !errors.Is(err, box.ErrInsufficientBudget) {
		t.Fatalf("got %v, want ErrInsufficientBudget", err)
	}
	if _, err := s.Step(4, box.Higher, 2); !errors.Is(err, box.ErrRecoveryNotAllowed) {
		t.Fatalf("got %v, want ErrRecoveryNotAllowed", err)
	}
	if _, err := s.Step(11, box.Higher, -1); !errors.Is(err, box.ErrInvalidPosition) {
		t.Fatalf("got %v, want ErrInvalidPosition", err)
	}
	if s.Remaining() != pile || s.Counters().Recorded() != recorded || s.Moves() != 0 {
		t.Fatalf("rejected steps must not consume cards or records")
	}
	if err := s.Undo(); !errors.Is(err, session.ErrNothingToUndo) {
		t.Fatalf("undo with no moves: got %v, want ErrNothingToUndo", err)
	}
}

func parse(t *testing.T, codes ...string) []deck.Card {
	t.Helper()
	out := make([]deck.Card, len(codes))
	for i, code := range codes {
		c, err := deck.ParseCard(code)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = c
	}
	return out
}

func TestCustomPlayWithRecovery(t *testing.T) {
	cfg := session.Config{Jokers: 0, InclusiveBudget: 2, Threshold: 9.5}
	s, err := session.StartCustom(cfg, parse(t, "2S", "3S", "4S", "5S", "6S", "7S", "8S", "9S", "10S"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Remaining() != 52-box.Positions {
		t.Fatalf("pile=%d, want %d", s.Remaining(), 52-box.Positions)
	}

	// Equal misses a plain higher: position 0 fails and keeps its 2.
	out, err := s.StepCard(0, box.Higher, parse(t, "2H")[0], -1)
	if err != nil {
		t.Fatal(err)
	}
	if out != box.OutcomeFailure {
		t.Fatalf("outcome=%s, want failure", out)
	}

	// Exact inclusive hit on position 3 recovers position 0 in one step.
	out, err = s.StepCard(3, box.HigherOrEqual, parse(t, "5H")[0], 0)
	if err != nil {
		t.Fatal(err)
	}
	if out != box.OutcomeExactRecovery {
		t.Fatalf("outcome=%s, want exact recovery", out)
	}
	if !s.Box().Active(0) {
		t.Fatalf("position 0 must be active after recovery")
	}
	if c, _ := s.Box().Card(0); c.Rank != deck.RankTwo {
		t.Fatalf("recovered card rank=%d, want 2", c.Rank)
	}
	if s.Budget() != 1 {
		t.Fatalf("budget=%d, want 1", s.Budget())
	}

	if v := s.View(); v.Recoveries != 1 {
		t.Fatalf("recoveries=%d, want 1", v.Recoveries)
	}
	// 9 dealt + 2 draws + 1 recovery re-count.
	if got := s.Counters().Recorded(); got != 12 {
		t.Fatalf("recorded=%d, want 12", got)
	}
}

func TestInteractiveRecover(t *testing.T) {
	cfg := session.Config{InclusiveBudget: 1, Threshold: 9.5}
	s, err := session.StartCustom(cfg, parse(t, "2S", "3S", "4S", "5S", "6S", "7S", "8S", "9S", "10S"))
	if err != nil {
		t.Fatal(err)
	}
	// Fail position 8; no recovery window opens on a failure.
	if _, err := s.StepCard(8, box.Lower, parse(t, "AS")[0], -1); err != nil {
		t.Fatal(err)
	}
	if err := s.Recover(8); !errors.Is(err, box.ErrRecoveryNotAllowed) {
		t.Fatalf("recover without an exact hit: got %v, want ErrRecoveryNotAllowed", err)
	}

	// An exact inclusive hit opens the window.
	out, err := s.StepCard(3, box.HigherOrEqual, parse(t, "5H")[0], -1)
	if err != nil {
		t.Fatal(err)
	}
	if out != box.OutcomeExactRecovery {
		t.Fatalf("outcome=%s, want exact recovery", out)
	}
	if err := s.Recover(0); !errors.Is(err, box.ErrRecoveryNotFailed) {
		t.Fatalf("recovering an active position: got %v, want ErrRecoveryNotFailed", err)
	}
	if err := s.Recover(8); err != nil {
		t.Fatal(err)
	}
	if !s.Box().Active(8) {
		t.Fatalf("position 8 must be active after Recover")
	}
	// The window is one-shot.
	if _, err := s.StepCard(8, box.Higher, parse(t, "KS")[0], -1); err != nil {
		t.Fatal(err)
	}
	if err := s.Recover(8); !errors.Is(err, box.ErrRecoveryNotAllowed) {
		t.Fatalf("second recover: got %v, want ErrRecoveryNotAllowed", err)
	}

	// The exact step and its interactive recovery unwind together.
	if err := s.Undo(); err != nil { // the KS step
		t.Fatal(err)
	}
	if err := s.Undo(); err != nil { // the 5H step + recovery
		t.Fatal(err)
	}
	if got := s.Counters().Recorded(); got != box.Positions+1 {
		t.Fatalf("recorded=%d after undo, want %d", got, box.Positions+1)
	}
	if s.Box().Active(8) {
		t.Fatalf("undo must return position 8 to failed")
	}
	if c, _ := s.Box().Card(3); c.Rank != deck.RankFive {
		t.Fatalf("position 3 rank=%d after undo, want 5", c.Rank)
	}
	if s.Budget() != 1 {
		t.Fatalf("budget=%d after undo, want 1", s.Budget())
	}
}

func TestUndoRoundTrip(t *testing.T) {
	s := mustStart(t, session.Config{Jokers: 2, InclusiveBudget: 5, Threshold: 9.5}, 11)
	beforeView := s.View()
	beforeCounts := s.Counters().Counts()
	beforePile := s.Remaining()

	pos, _ := firstActive(t, s)
	if _, err := s.Step(pos, box.HigherOrEqual, -1); err != nil {
		t.Fatal(err)
	}
	if s.Budget() != 4 {
		t.Fatalf("budget=%d after inclusive step, want 4", s.Budget())
	}
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}

	if got := s.View(); got != beforeView {
		t.Fatalf("view differs after undo:\n got %+v\nwant %+v", got, beforeView)
	}
	if got := s.Counters().Counts(); got != beforeCounts {
		t.Fatalf("counts differ after undo: %v vs %v", got, beforeCounts)
	}
	if s.Remaining() != beforePile {
		t.Fatalf("pile=%d after undo, want %d", s.Remaining(), beforePile)
	}

	// The replayed draw is the same card the undone move saw.
	var drawnBefore [counter.NumSchemes]int
	if _, err := s.Step(pos, box.HigherOrEqual, -1); err != nil {
		t.Fatal(err)
	}
	drawnBefore = s.Counters().Counts()
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Step(pos, box.HigherOrEqual, -1); err != nil {
		t.Fatal(err)
	}
	if got := s.Counters().Counts(); got != drawnBefore {
		t.Fatalf("redraw diverged after undo: %v vs %v", got, drawnBefore)
	}
}

func TestViewHidesFailedCardsByDefault(t *testing.T) {
	cfg := session.Config{Threshold: 9.5}
	s, err := session.StartCustom(cfg, parse(t, "2S", "3S", "4S", "5S", "6S", "7S", "8S", "9S", "10S"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.StepCard(0, box.Lower, parse(t, "KH")[0], -1); err != nil {
		t.Fatal(err)
	}
	v := s.View()
	if v.Positions[0].Active || v.Positions[0].Card != "" {
		t.Fatalf("failed card leaked into the view: %+v", v.Positions[0])
	}

	cfg.FailedCardVisible = true
	s2, err := session.StartCustom(cfg, parse(t, "2S", "3S", "4S", "5S", "6S", "7S", "8S", "9S", "10S"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s2.StepCard(0, box.Lower, parse(t, "KH")[0], -1); err != nil {
		t.Fatal(err)
	}
	if got := s2.View().Positions[0].Card; got != "2S" {
		t.Fatalf("visible failed card=%q, want 2S", got)
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []session.Config{
		{Jokers: 3, Threshold: 9.5},
		{Jokers: -1, Threshold: 9.5},
		{InclusiveBudget: -1, Threshold: 9.5},
		{InclusiveBudget: session.BaseInclusiveMax + 1, Threshold: 9.5},
		{Threshold: -0.1},
		{Threshold: 100.1},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: %+v must fail validation", i, cfg)
		}
	}
	ok := session.Config{Jokers: 2, InclusiveBudget: session.BaseInclusiveMax + 2, Threshold: 9.5}
	if err := ok.Validate(); err != nil {
		t.Fatalf("max budget with two jokers must validate: %v", err)
	}
}
