package box

import (
	"errors"
	"fmt"

	"github.com/btb-suite/beatthebox/internal/deck"
)

// Positions is the fixed size of the box grid (3x3).
const Positions = 9

var (
	ErrBadDeal         = errors.New("box deal requires exactly 9 cards")
	ErrInvalidPosition = errors.New("invalid position")
	ErrFailedPosition  = errors.New("position is failed")
)

type position struct {
	card   deck.Card
	failed bool
}

// State is the 3x3 grid. Each position is Active and holds a card, or
// Failed and retains the card it held when the prediction missed, so a
// later recovery can restore it. State is a value: Apply returns a new
// one and never mutates its receiver.
type State struct {
	pos [Positions]position
}

// Deal builds the starting box from the initial nine cards.
func Deal(cards []deck.Card) (State, error) {
	var s State
	if len(cards) != Positions {
		return s, fmt.Errorf("%w: got %d", ErrBadDeal, len(cards))
	}
	for i, c := range cards {
		s.pos[i] = position{card: c}
	}
	return s, nil
}

func (s State) Active(i int) bool {
	return i >= 0 && i < Positions && !s.pos[i].failed
}

func (s State) ActiveCount() int {
	n := 0
	for _, p := range s.pos {
		if !p.failed {
			n++
		}
	}
	return n
}

func (s State) AllFailed() bool { return s.ActiveCount() == 0 }

// Card returns the card at an active position.
func (s State) Card(i int) (deck.Card, error) {
	if i < 0 || i >= Positions {
		return deck.Card{}, fmt.Errorf("%w: %d", ErrInvalidPosition, i)
	}
	if s.pos[i].failed {
		return deck.Card{}, fmt.Errorf("%w: %d", ErrFailedPosition, i)
	}
	return s.pos[i].card, nil
}

// FailedCard returns the card a failed position held before it missed.
func (s State) FailedCard(i int) (deck.Card, bool) {
	if i < 0 || i >= Positions || !s.pos[i].failed {
		return deck.Card{}, false
	}
	return s.pos[i].card, true
}

// FailedPositions lists failed indexes in ascending order.
func (s State) FailedPositions() []int {
	var out []int
	for i, p := range s.pos {
		if p.failed {
			out = append(out, i)
		}
	}
	return out
}
