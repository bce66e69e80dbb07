package session

import (
	"github.com/btb-suite/beatthebox/internal/box"
	"github.com/btb-suite/beatthebox/internal/counter"
)

// Result is the terminal record of one playthrough.
type Result struct {
	Won           bool
	Moves         int
	ActiveLeft    int // positions still active (meaningful on a win)
	CardsLeft     int // pile size at termination (meaningful on a loss)
	InclusiveUsed int
	InclusiveLeft int
	Recoveries    int
	JokersDrawn   int
}

// Result reports the outcome once the session has terminated.
func (s *Session) Result() (Result, error) {
	if !s.phase.Terminal() {
		return Result{}, ErrNotTerminated
	}
	return Result{
		Won:           s.phase == Won,
		Moves:         s.moves,
		ActiveLeft:    s.box.ActiveCount(),
		CardsLeft:     s.deck.Remaining(),
		InclusiveUsed: s.inclusiveUsed,
		InclusiveLeft: s.budget,
		Recoveries:    s.recoveries,
		JokersDrawn:   s.jokersDrawn,
	}, nil
}

// PositionView is one grid slot as a display surface sees it.
type PositionView struct {
	Active bool   `json:"active"`
	Card   string `json:"card,omitempty"` // empty on a hidden failed slot
}

// View is the read-only snapshot handed to presentation layers. Failed
// cards appear only when the configuration allows revealing them; the
// engine always knows them regardless.
type View struct {
	Phase         string                      `json:"phase"`
	Positions     [box.Positions]PositionView `json:"positions"`
	Budget        int                         `json:"inclusive_remaining"`
	CardsLeft     int                         `json:"cards_remaining"`
	Counts        [counter.NumSchemes]int     `json:"counts"`
	Moves         int                         `json:"moves"`
	Recoveries    int                         `json:"recoveries"`
	FailedVisible bool                        `json:"failed_visible"`
}

func (s *Session) View() View {
	v := View{
		Phase:         s.phase.String(),
		Budget:        s.budget,
		CardsLeft:     s.deck.Remaining(),
		Counts:        s.counters.Counts(),
		Moves:         s.moves,
		Recoveries:    s.recoveries,
		FailedVisible: s.cfg.FailedCardVisible,
	}
	for i := 0; i < box.Positions; i++ {
		if c, err := s.box.Card(i); err == nil {
			v.Positions[i] = PositionView{Active: true, Card: c.Code()}
			continue
		}
		pv := PositionView{}
		if c, ok := s.box.FailedCard(i); ok && s.cfg.FailedCardVisible {
			pv.Card = c.Code()
		}
		v.Positions[i] = pv
	}
	return v
}
