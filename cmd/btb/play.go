package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/btb-suite/beatthebox/internal/box"
	"github.com/btb-suite/beatthebox/internal/config"
	"github.com/btb-suite/beatthebox/internal/counter"
	"github.com/btb-suite/beatthebox/internal/deck"
	"github.com/btb-suite/beatthebox/internal/session"
	"github.com/btb-suite/beatthebox/internal/sim"
)

var (
	playJokers     int
	playBudget     int
	playThreshold  float64
	playSeed       uint64
	playCustom     bool
	playShowFailed bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play an interactive game in the terminal",
	Long: `play deals a 3x3 box and walks the game one draw at a time.

Moves are entered as "<position> <prediction>", e.g. "4 h" or "7 le".
Predictions: h (higher), l (lower), he (higher-or-equal), le (lower-or-equal).
Other commands: hint, probs <pos>, counts, undo, quit.

With --custom the deal and every draw are typed in by hand ("AS", "10H",
"JOKER"), for following along with a physical deck.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&playJokers, "jokers", 0, "jokers added to the deck (0-2)")
	playCmd.Flags().IntVar(&playBudget, "budget", 0, "inclusive prediction budget")
	playCmd.Flags().Float64Var(&playThreshold, "threshold", config.DefaultThreshold, "margin used by the hint policy")
	playCmd.Flags().Uint64Var(&playSeed, "seed", 0, "shuffle seed (0 = random)")
	playCmd.Flags().BoolVar(&playCustom, "custom", false, "enter the deal and draws manually")
	playCmd.Flags().BoolVar(&playShowFailed, "show-failed", false, "reveal cards on failed positions")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := playConfig(cmd)
	if err != nil {
		return err
	}

	in := bufio.NewScanner(os.Stdin)
	var s *session.Session
	if playCustom {
		s, err = startCustom(cfg, in)
	} else {
		rng := deck.DefaultRNG()
		if playSeed != 0 {
			rng = deck.NewSeededRNG(playSeed)
		}
		s, err = session.Start(cfg, rng)
	}
	if err != nil {
		return err
	}

	pol := sim.NewThresholdPolicy(cfg.Threshold)
	for {
		printBox(s)
		if s.Phase().Terminal() {
			return printResult(s)
		}
		fmt.Print("> ")
		if !in.Scan() {
			return nil
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if done, err := handleCommand(s, pol, line, in); err != nil {
			fmt.Println(err)
		} else if done {
			return nil
		}
	}
}

// playConfig builds the session config from the preset (if any) with the
// command line flags layered on top.
func playConfig(cmd *cobra.Command) (session.Config, error) {
	raw, _, err := loadRaw()
	if err != nil {
		return session.Config{}, err
	}
	cfg, err := config.GameSession(raw)
	if err != nil {
		return session.Config{}, err
	}
	if cmd.Flags().Changed("jokers") {
		cfg.Jokers = playJokers
	}
	if cmd.Flags().Changed("budget") {
		cfg.InclusiveBudget = playBudget
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Threshold = playThreshold
	}
	if cmd.Flags().Changed("show-failed") {
		cfg.FailedCardVisible = playShowFailed
	}
	return cfg, cfg.Validate()
}

func startCustom(cfg session.Config, in *bufio.Scanner) (*session.Session, error) {
	fmt.Println("enter the 9 dealt cards, left to right, top to bottom")
	initial := make([]deck.Card, 0, box.Positions)
	for len(initial) < box.Positions {
		fmt.Printf("card %d: ", len(initial)+1)
		if !in.Scan() {
			return nil, fmt.Errorf("input closed before the deal was complete")
		}
		c, err := deck.ParseCard(strings.TrimSpace(in.Text()))
		if err != nil {
			fmt.Println(err)
			continue
		}
		initial = append(initial, c)
	}
	return session.StartCustom(cfg, initial)
}

func handleCommand(s *session.Session, pol sim.ThresholdPolicy, line string, in *bufio.Scanner) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "quit", "q", "exit":
		return true, nil
	case "undo":
		return false, s.Undo()
	case "counts":
		printCounts(s.Counters())
		return false, nil
	case "hint":
		d, ok := pol.Decide(s)
		if !ok {
			return false, fmt.Errorf("no legal move available")
		}
		fmt.Printf("suggest: position %d %s", d.Position+1, d.Prediction)
		if d.Recovery >= 0 {
			fmt.Printf(" (recover position %d on an exact hit)", d.Recovery+1)
		}
		fmt.Println()
		return false, nil
	case "probs":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: probs <position>")
		}
		pos, err := parsePosition(fields[1])
		if err != nil {
			return false, err
		}
		pr, err := s.Probabilities(pos)
		if err != nil {
			return false, err
		}
		printProbs(pos, pr)
		return false, nil
	}
	return false, playMove(s, fields, in)
}

func playMove(s *session.Session, fields []string, in *bufio.Scanner) error {
	if len(fields) < 2 {
		return fmt.Errorf("expected \"<position> <prediction>\"")
	}
	pos, err := parsePosition(fields[0])
	if err != nil {
		return err
	}
	pred, err := box.ParsePrediction(fields[1])
	if err != nil {
		return err
	}

	var outcome box.Outcome
	if playCustom {
		if len(fields) != 3 {
			return fmt.Errorf("custom play needs the drawn card: \"<position> <prediction> <card>\"")
		}
		drawn, err := deck.ParseCard(fields[2])
		if err != nil {
			return err
		}
		outcome, err = s.StepCard(pos, pred, drawn, -1)
		if err != nil {
			return err
		}
	} else {
		outcome, err = s.Step(pos, pred, -1)
		if err != nil {
			return err
		}
	}
	fmt.Printf("outcome: %s\n", outcome)

	if outcome == box.OutcomeExactRecovery {
		offerRecovery(s, in)
	}
	return nil
}

func offerRecovery(s *session.Session, in *bufio.Scanner) {
	failed := s.Box().FailedPositions()
	if len(failed) == 0 {
		return
	}
	labels := make([]string, len(failed))
	for i, p := range failed {
		labels[i] = strconv.Itoa(p + 1)
	}
	fmt.Printf("exact match: recover a failed position? [%s / n] ", strings.Join(labels, " "))
	if !in.Scan() {
		return
	}
	answer := strings.TrimSpace(in.Text())
	if answer == "" || answer == "n" || answer == "no" {
		return
	}
	pos, err := parsePosition(answer)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := s.Recover(pos); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("position %d recovered\n", pos+1)
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > box.Positions {
		return 0, fmt.Errorf("position must be 1-%d", box.Positions)
	}
	return n - 1, nil
}

func printBox(s *session.Session) {
	st := s.Box()
	cfg := s.Configuration()
	fmt.Println()
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			i := row*3 + col
			if c, err := st.Card(i); err == nil {
				cells[col] = fmt.Sprintf("%d:%-4s", i+1, c)
			} else if fc, ok := st.FailedCard(i); ok && cfg.FailedCardVisible {
				cells[col] = fmt.Sprintf("%d:[%s]", i+1, fc)
			} else {
				cells[col] = fmt.Sprintf("%d:----", i+1)
			}
		}
		fmt.Println("  " + strings.Join(cells, "  "))
	}
	fmt.Printf("cards left %d, inclusive budget %d, moves %d\n",
		s.Remaining(), s.Budget(), s.Moves())
}

func printCounts(set *counter.Set) {
	counts := set.Counts()
	for sc := counter.Scheme(0); sc < counter.NumSchemes; sc++ {
		fmt.Printf("  %s: %+d\n", sc, counts[sc])
	}
	fmt.Printf("  remaining: %d cards, %d jokers\n", set.RemainingCards(), set.RemainingJokers())
}

func printProbs(pos int, pr counter.Probabilities) {
	fmt.Printf("position %d:\n", pos+1)
	fmt.Printf("  higher          %5.1f%%\n", pr.Higher)
	fmt.Printf("  lower           %5.1f%%\n", pr.Lower)
	fmt.Printf("  higher-or-equal %5.1f%%\n", pr.HigherOrEqual)
	fmt.Printf("  lower-or-equal  %5.1f%%\n", pr.LowerOrEqual)
	fmt.Printf("  exact match     %5.1f%%\n", pr.ExactMatch)
}

func printResult(s *session.Session) error {
	res, err := s.Result()
	if err != nil {
		return err
	}
	if res.Won {
		fmt.Printf("\nyou beat the box in %d moves (%d active positions left)\n", res.Moves, res.ActiveLeft)
	} else {
		fmt.Printf("\nthe box wins: all positions failed with %d cards left\n", res.CardsLeft)
	}
	fmt.Printf("inclusive used %d, recoveries %d, jokers drawn %d\n",
		res.InclusiveUsed, res.Recoveries, res.JokersDrawn)
	return nil
}
