package deck

import (
	"fmt"
	"strings"
)

// Rank is the playing value of a card. Ace is high (14); jacks, queens
// and kings are 11..13. Jokers carry no rank.
type Rank int

const (
	RankTwo   Rank = 2
	RankThree Rank = 3
	RankFour  Rank = 4
	RankFive  Rank = 5
	RankSix   Rank = 6
	RankSeven Rank = 7
	RankEight Rank = 8
	RankNine  Rank = 9
	RankTen   Rank = 10
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
	RankAce   Rank = 14
)

type Suit int

const (
	SuitSpades Suit = iota
	SuitHearts
	SuitDiamonds
	SuitClubs
)

var suitSymbols = [...]string{"♠", "♥", "♦", "♣"}
var suitLetters = [...]string{"S", "H", "D", "C"}

// Card is either a ranked card or a joker. Suit never affects the rules;
// it exists for display only.
type Card struct {
	Rank  Rank
	Suit  Suit
	Joker bool
}

func (c Card) String() string {
	if c.Joker {
		return "Joker"
	}
	var v string
	switch c.Rank {
	case RankAce:
		v = "A"
	case RankKing:
		v = "K"
	case RankQueen:
		v = "Q"
	case RankJack:
		v = "J"
	default:
		v = fmt.Sprintf("%d", int(c.Rank))
	}
	return v + suitSymbols[c.Suit]
}

// SameCard reports rank equality, treating jokers as matching only jokers.
// Suit is ignored, as everywhere in the rules.
func (c Card) SameCard(o Card) bool {
	if c.Joker || o.Joker {
		return c.Joker == o.Joker
	}
	return c.Rank == o.Rank
}

// ParseCard reads a card from text: a rank (2-10, J, Q, K, A) followed by
// a suit letter (S, H, D, C), or "joker". "10S" and "TS" both work.
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "JOKER" || s == "JK" {
		return Card{Joker: true}, nil
	}
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q (want rank+suit, e.g. 7H, TS, AC)", s)
	}
	suitStr := s[len(s)-1:]
	rankStr := s[:len(s)-1]

	var suit Suit
	switch suitStr {
	case "S":
		suit = SuitSpades
	case "H":
		suit = SuitHearts
	case "D":
		suit = SuitDiamonds
	case "C":
		suit = SuitClubs
	default:
		return Card{}, fmt.Errorf("invalid suit %q in card %q", suitStr, s)
	}

	var rank Rank
	switch rankStr {
	case "A":
		rank = RankAce
	case "K":
		rank = RankKing
	case "Q":
		rank = RankQueen
	case "J":
		rank = RankJack
	case "T", "10":
		rank = RankTen
	default:
		if len(rankStr) == 1 && rankStr[0] >= '2' && rankStr[0] <= '9' {
			rank = Rank(rankStr[0] - '0')
		} else {
			return Card{}, fmt.Errorf("invalid rank %q in card %q", rankStr, s)
		}
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// Letter form used by the HTTP API ("AS", "10H", "Joker").
func (c Card) Code() string {
	if c.Joker {
		return "Joker"
	}
	var v string
	switch c.Rank {
	case RankAce:
		v = "A"
	case RankKing:
		v = "K"
	case RankQueen:
		v = "Q"
	case RankJack:
		v = "J"
	default:
		v = fmt.Sprintf("%d", int(c.Rank))
	}
	return v + suitLetters[c.Suit]
}
