package session

import (
	"errors"
	"fmt"

	"github.com/btb-suite/beatthebox/internal/box"
	"github.com/btb-suite/beatthebox/internal/counter"
	"github.com/btb-suite/beatthebox/internal/deck"
)

var (
	ErrTerminated    = errors.New("session is terminated")
	ErrNotTerminated = errors.New("session is still in progress")
	ErrNothingToUndo = errors.New("no move to undo")
)

// Phase is the session state machine: InProgress until the deck runs out
// (Won, if anything is still active) or the whole box fails (Lost).
type Phase int

const (
	InProgress Phase = iota
	Won
	Lost
)

func (p Phase) String() string {
	switch p {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) Terminal() bool { return p != InProgress }

// Session owns one playthrough: the deck, the box, the counters and the
// inclusive budget, with moves applied through the rule engine.
type Session struct {
	cfg      Config
	deck     *deck.Deck
	box      box.State
	counters *counter.Set
	budget   int
	phase    Phase

	// recoveryOpen is true between an exact inclusive success that did
	// not name a recovery target and whatever happens next.
	recoveryOpen bool

	moves         int
	inclusiveUsed int
	recoveries    int
	jokersDrawn   int

	history []undoRecord
}

// undoRecord captures everything one Step changed. The box state and
// budget are stored whole; the deck and counters are rewound through
// their own inverses.
type undoRecord struct {
	box           box.State
	budget        int
	phase         Phase
	recoveryOpen  bool
	counterEvents int // log entries to unwind (draw + optional recovery)
	inclusiveUsed int
	recoveries    int
	jokersDrawn   int
}

// Start shuffles a fresh deck, deals the box, and primes the counters
// with the nine dealt cards.
func Start(cfg Config, rng deck.RandomSource) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, err := deck.New(cfg.Jokers)
	if err != nil {
		return nil, err
	}
	d.Shuffle(rng)
	return start(cfg, d, nil)
}

// StartCustom deals the caller's nine cards instead of shuffling; the
// rest of the deck forms the pile. Custom play then names each drawn
// card through StepCard.
func StartCustom(cfg Config, initial []deck.Card) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, err := deck.New(cfg.Jokers)
	if err != nil {
		return nil, err
	}
	if len(initial) != box.Positions {
		return nil, fmt.Errorf("%w: got %d", box.ErrBadDeal, len(initial))
	}
	for _, c := range initial {
		if err := d.Take(c); err != nil {
			return nil, err
		}
	}
	return start(cfg, d, initial)
}

func start(cfg Config, d *deck.Deck, initial []deck.Card) (*Session, error) {
	if initial == nil {
		initial = make([]deck.Card, 0, box.Positions)
		for i := 0; i < box.Positions; i++ {
			c, err := d.Draw()
			if err != nil {
				return nil, err
			}
			initial = append(initial, c)
		}
	}
	b, err := box.Deal(initial)
	if err != nil {
		return nil, err
	}
	cs := counter.NewSet(cfg.Jokers)
	for _, c := range initial {
		cs.RecordDraw(c)
	}
	return &Session{
		cfg:      cfg,
		deck:     d,
		box:      b,
		counters: cs,
		budget:   cfg.InclusiveBudget,
	}, nil
}

// Step draws the next card and applies one move. recovery (-1 for none)
// names the failed position to restore should the move come up
// recovery-eligible.
func (s *Session) Step(pos int, pred box.Prediction, recovery int) (box.Outcome, error) {
	if s.phase.Terminal() {
		return 0, ErrTerminated
	}
	// Validate before touching the deck so a rejected move changes nothing.
	if _, err := s.box.Card(pos); err != nil {
		return 0, err
	}
	if pred.Inclusive() && s.budget <= 0 {
		return 0, box.ErrInsufficientBudget
	}
	if recovery >= 0 && !pred.Inclusive() {
		return 0, box.ErrRecoveryNotAllowed
	}
	drawn, err := s.deck.Draw()
	if err != nil {
		return 0, err
	}
	return s.apply(pos, pred, drawn, recovery)
}

// StepCard is Step for custom play: the named card is removed from
// wherever it sits in the pile and played as the draw.
func (s *Session) StepCard(pos int, pred box.Prediction, drawn deck.Card, recovery int) (box.Outcome, error) {
	if s.phase.Terminal() {
		return 0, ErrTerminated
	}
	if _, err := s.box.Card(pos); err != nil {
		return 0, err
	}
	if pred.Inclusive() && s.budget <= 0 {
		return 0, box.ErrInsufficientBudget
	}
	if recovery >= 0 && !pred.Inclusive() {
		return 0, box.ErrRecoveryNotAllowed
	}
	if err := s.deck.Take(drawn); err != nil {
		return 0, err
	}
	return s.apply(pos, pred, drawn, recovery)
}

func (s *Session) apply(pos int, pred box.Prediction, drawn deck.Card, recovery int) (box.Outcome, error) {
	rec := undoRecord{
		box:           s.box,
		budget:        s.budget,
		phase:         s.phase,
		recoveryOpen:  s.recoveryOpen,
		counterEvents: 1,
		inclusiveUsed: s.inclusiveUsed,
		recoveries:    s.recoveries,
		jokersDrawn:   s.jokersDrawn,
	}

	res, err := box.Apply(s.box, s.budget, box.Move{
		Position:       pos,
		Prediction:     pred,
		Drawn:          drawn,
		RecoveryTarget: recovery,
	})
	if err != nil {
		// Rejected after the draw left the pile; put it back.
		if pb := s.deck.PutBack(); pb != nil {
			return 0, fmt.Errorf("%v (undo draw: %w)", err, pb)
		}
		return 0, err
	}

	s.counters.RecordDraw(drawn)
	s.box = res.State
	s.budget = res.Budget
	s.recoveryOpen = res.Outcome == box.OutcomeExactRecovery && res.Recovered < 0
	s.moves++
	if pred.Inclusive() {
		s.inclusiveUsed++
	}
	if drawn.Joker {
		s.jokersDrawn++
	}
	if res.Recovered >= 0 {
		s.recoveries++
		if c, err := s.box.Card(res.Recovered); err == nil {
			s.counters.RecordRecovered(c)
			rec.counterEvents = 2
		}
	}

	if s.box.AllFailed() {
		s.phase = Lost
	} else if s.deck.Remaining() == 0 {
		s.phase = Won
	}

	s.history = append(s.history, rec)
	return res.Outcome, nil
}

// Recover restores a failed position after an eligible move, for callers
// that choose interactively instead of passing a target to Step. The
// window opens on an exact inclusive success and closes on the next step,
// the recovery itself, or an undo.
func (s *Session) Recover(pos int) error {
	if s.phase.Terminal() {
		return ErrTerminated
	}
	if !s.recoveryOpen {
		return box.ErrRecoveryNotAllowed
	}
	ns, c, err := box.Recover(s.box, pos)
	if err != nil {
		return err
	}
	s.box = ns
	s.recoveryOpen = false
	s.recoveries++
	s.counters.RecordRecovered(c)
	if len(s.history) > 0 {
		s.history[len(s.history)-1].counterEvents++
	}
	return nil
}

// Undo rewinds the last Step completely: box, budget, phase, statistics,
// the drawn card back onto the pile, and every counter entry the move
// produced. Exact from the very first move.
func (s *Session) Undo() error {
	if len(s.history) == 0 {
		return ErrNothingToUndo
	}
	rec := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	for i := 0; i < rec.counterEvents; i++ {
		if err := s.counters.UndoLastDraw(); err != nil {
			return err
		}
	}
	if err := s.deck.PutBack(); err != nil {
		return err
	}
	s.box = rec.box
	s.budget = rec.budget
	s.phase = rec.phase
	s.recoveryOpen = rec.recoveryOpen
	s.moves--
	s.inclusiveUsed = rec.inclusiveUsed
	s.recoveries = rec.recoveries
	s.jokersDrawn = rec.jokersDrawn
	return nil
}

func (s *Session) Phase() Phase           { return s.phase }
func (s *Session) Budget() int            { return s.budget }
func (s *Session) Moves() int             { return s.moves }
func (s *Session) Remaining() int         { return s.deck.Remaining() }
func (s *Session) Box() box.State         { return s.box }
func (s *Session) Counters() *counter.Set { return s.counters }
func (s *Session) Configuration() Config  { return s.cfg }

// Probabilities estimates move odds for the card at an active position.
func (s *Session) Probabilities(pos int) (counter.Probabilities, error) {
	c, err := s.box.Card(pos)
	if err != nil {
		return counter.Probabilities{}, err
	}
	p, ok := s.counters.MoveProbabilities(c)
	if !ok {
		return counter.Probabilities{}, deck.ErrEmpty
	}
	return p, nil
}
