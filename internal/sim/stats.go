package sim

import (
	"math"
	"sort"

	"github.com/btb-suite/beatthebox/internal/session"
)

// Summary holds the moments and percentiles of one integer sample set.
type Summary struct {
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// summarize computes mean/variance/percentiles for integer samples.
func summarize(xs []int) Summary {
	n := len(xs)
	if n == 0 {
		return Summary{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)
	stddev := math.Sqrt(variance)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 {
			return float64(cp[0])
		}
		if p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Summary{
		Mean:    mean,
		Var:     variance,
		StdDev:  stddev,
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// AggregateStats summarizes one batch of trials. Trials that tripped an
// internal invariant are counted under Violations and excluded from every
// other figure, so a single bad trial cannot skew the batch.
type AggregateStats struct {
	Trials     int // trials that completed (wins + losses)
	Wins       int
	Losses     int
	Violations int
	WinRate    float64 // percent, over completed trials

	Moves             Summary
	MeanInclusiveUsed float64
	MeanRecoveries    float64
	MeanJokersDrawn   float64

	InclusiveLeft     map[int]int // budget remaining at termination -> games
	BoxesLeftInWins   map[int]int // active positions -> wins
	CardsLeftInLosses map[int]int // pile size -> losses
}

type trialResult struct {
	res       session.Result
	violation bool
	done      bool
}

// aggregate folds per-trial results in index order; the reduction is all
// sums and counts, so any completed subset yields valid statistics.
func aggregate(results []trialResult) AggregateStats {
	st := AggregateStats{
		InclusiveLeft:     make(map[int]int),
		BoxesLeftInWins:   make(map[int]int),
		CardsLeftInLosses: make(map[int]int),
	}
	var moves []int
	var inclusive, recoveries, jokers int
	for _, tr := range results {
		if !tr.done {
			continue
		}
		if tr.violation {
			st.Violations++
			continue
		}
		st.Trials++
		moves = append(moves, tr.res.Moves)
		inclusive += tr.res.InclusiveUsed
		recoveries += tr.res.Recoveries
		jokers += tr.res.JokersDrawn
		st.InclusiveLeft[tr.res.InclusiveLeft]++
		if tr.res.Won {
			st.Wins++
			st.BoxesLeftInWins[tr.res.ActiveLeft]++
		} else {
			st.Losses++
			st.CardsLeftInLosses[tr.res.CardsLeft]++
		}
	}
	if st.Trials > 0 {
		st.WinRate = float64(st.Wins) / float64(st.Trials) * 100
		st.Moves = summarize(moves)
		st.MeanInclusiveUsed = float64(inclusive) / float64(st.Trials)
		st.MeanRecoveries = float64(recoveries) / float64(st.Trials)
		st.MeanJokersDrawn = float64(jokers) / float64(st.Trials)
	}
	return st
}
