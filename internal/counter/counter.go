package counter

import (
	"errors"

	"github.com/btb-suite/beatthebox/internal/deck"
)

var ErrNothingToUndo = errors.New("no recorded draw to undo")

// Scheme selects one of the three running counts. All three treat eights
// and jokers as zero.
type Scheme int

const (
	// +1 for cards above 8, -1 below 8.
	SchemeHiLo Scheme = iota
	// +/-2 for the extreme bands (Q,K,A and 4,3,2), +/-1 in between.
	SchemeBalanced
	// +/-3, +/-2, +/-1 by two-rank bands out from the middle.
	SchemeStepped

	NumSchemes = 3
)

func (s Scheme) String() string {
	switch s {
	case SchemeHiLo:
		return "hi-lo"
	case SchemeBalanced:
		return "balanced"
	case SchemeStepped:
		return "stepped"
	}
	return "unknown"
}

func delta(s Scheme, c deck.Card) int {
	if c.Joker {
		return 0
	}
	v := int(c.Rank)
	switch s {
	case SchemeHiLo:
		switch {
		case v > 8:
			return 1
		case v < 8:
			return -1
		}
	case SchemeBalanced:
		switch {
		case v >= 12:
			return 2
		case v >= 9:
			return 1
		case v == 8:
			return 0
		case v >= 5:
			return -1
		default:
			return -2
		}
	case SchemeStepped:
		switch {
		case v >= 13:
			return 3
		case v >= 11:
			return 2
		case v >= 9:
			return 1
		case v == 8:
			return 0
		case v >= 6:
			return -1
		case v >= 4:
			return -2
		default:
			return -3
		}
	}
	return 0
}

// logEntry is what UndoLastDraw needs to invert one record exactly: the
// scheme deltas applied and whether the remaining-card tally moved.
type logEntry struct {
	deltas   [NumSchemes]int
	rank     deck.Rank
	joker    bool
	fromPile bool
}

// Set tracks the three counts plus a per-rank tally of cards still in the
// draw pile, all reconstructable from the sequence of recorded draws.
// Every record pushes a log entry, so undo is exact from the first call.
type Set struct {
	counts    [NumSchemes]int
	remaining map[deck.Rank]int
	jokers    int
	log       []logEntry
}

// NewSet primes the remaining tally with a full deck: four of each rank
// plus the configured jokers.
func NewSet(jokers int) *Set {
	s := &Set{remaining: make(map[deck.Rank]int, 13), jokers: jokers}
	for r := deck.RankTwo; r <= deck.RankAce; r++ {
		s.remaining[r] = 4
	}
	return s
}

// RecordDraw accounts for a card leaving the draw pile: the initial deal
// and every drawn card go through here.
func (s *Set) RecordDraw(c deck.Card) {
	s.record(c, true)
}

// RecordRecovered re-counts a card restored to the box by a recovery. The
// card never re-enters the pile, so only the scheme counts move.
func (s *Set) RecordRecovered(c deck.Card) {
	s.record(c, false)
}

func (s *Set) record(c deck.Card, fromPile bool) {
	e := logEntry{rank: c.Rank, joker: c.Joker, fromPile: fromPile}
	for i := Scheme(0); i < NumSchemes; i++ {
		e.deltas[i] = delta(i, c)
		s.counts[i] += e.deltas[i]
	}
	if fromPile {
		if c.Joker {
			s.jokers--
		} else {
			s.remaining[c.Rank]--
		}
	}
	s.log = append(s.log, e)
}

// UndoLastDraw inverts the most recent record exactly.
func (s *Set) UndoLastDraw() error {
	if len(s.log) == 0 {
		return ErrNothingToUndo
	}
	e := s.log[len(s.log)-1]
	s.log = s.log[:len(s.log)-1]
	for i := Scheme(0); i < NumSchemes; i++ {
		s.counts[i] -= e.deltas[i]
	}
	if e.fromPile {
		if e.joker {
			s.jokers++
		} else {
			s.remaining[e.rank]++
		}
	}
	return nil
}

func (s *Set) Count(sc Scheme) int { return s.counts[sc] }

// Counts returns all three counts in scheme order.
func (s *Set) Counts() [NumSchemes]int { return s.counts }

// Recorded is the number of entries in the reversible log.
func (s *Set) Recorded() int { return len(s.log) }

// RemainingCards is the tracked size of the draw pile (jokers included).
func (s *Set) RemainingCards() int {
	n := s.jokers
	for _, c := range s.remaining {
		n += c
	}
	return n
}

// RemainingJokers returns the jokers still in the pile.
func (s *Set) RemainingJokers() int { return s.jokers }
