package deck

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty      = errors.New("draw pile is empty")
	ErrJokerCount = errors.New("joker count must be 0, 1 or 2")
	ErrNotInPile  = errors.New("card is not in the draw pile")
)

// Deck holds the ordered draw pile and the multiset of cards already out
// of it (dealt or drawn). Total size never changes after construction.
type Deck struct {
	pile  []Card // pile[0] is the next draw
	dealt []Card
}

// New builds an unshuffled 52-card deck plus the requested jokers.
func New(jokers int) (*Deck, error) {
	if jokers < 0 || jokers > 2 {
		return nil, fmt.Errorf("%w: got %d", ErrJokerCount, jokers)
	}
	d := &Deck{pile: make([]Card, 0, 52+jokers)}
	for s := SuitSpades; s <= SuitClubs; s++ {
		for r := RankTwo; r <= RankAce; r++ {
			d.pile = append(d.pile, Card{Rank: r, Suit: s})
		}
	}
	for i := 0; i < jokers; i++ {
		d.pile = append(d.pile, Card{Joker: true})
	}
	return d, nil
}

// Shuffle permutes the remaining pile uniformly (Fisher-Yates).
func (d *Deck) Shuffle(rng RandomSource) {
	if rng == nil {
		rng = DefaultRNG()
	}
	for i := len(d.pile) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.pile[i], d.pile[j] = d.pile[j], d.pile[i]
	}
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if len(d.pile) == 0 {
		return Card{}, ErrEmpty
	}
	c := d.pile[0]
	d.pile = d.pile[1:]
	d.dealt = append(d.dealt, c)
	return c, nil
}

// Take removes a specific card from anywhere in the pile. Custom play
// lets the player name the card that came up instead of drawing blind.
func (d *Deck) Take(c Card) error {
	for i, pc := range d.pile {
		if pc.SameCard(c) {
			d.pile = append(d.pile[:i], d.pile[i+1:]...)
			d.dealt = append(d.dealt, pc)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotInPile, c)
}

// PutBack returns the most recently removed card to the top of the pile.
// Supports move undo.
func (d *Deck) PutBack() error {
	if len(d.dealt) == 0 {
		return errors.New("nothing to put back")
	}
	c := d.dealt[len(d.dealt)-1]
	d.dealt = d.dealt[:len(d.dealt)-1]
	d.pile = append([]Card{c}, d.pile...)
	return nil
}

func (d *Deck) Remaining() int { return len(d.pile) }
func (d *Deck) Size() int      { return len(d.pile) + len(d.dealt) }

// Dealt returns a copy of the out-of-pile multiset, oldest first.
func (d *Deck) Dealt() []Card {
	out := make([]Card, len(d.dealt))
	copy(out, d.dealt)
	return out
}
