package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/btb-suite/beatthebox/internal/session"
	"github.com/btb-suite/beatthebox/internal/sim"
)

var ErrEmptySpace = errors.New("parameter space is empty")

// Space enumerates the configuration grid: joker count x inclusive budget
// x decision threshold. Grid points whose budget exceeds the cap for
// their joker count are skipped, matching the documented bounds.
type Space struct {
	JokerMin, JokerMax   int
	BudgetMin, BudgetMax int
	ThresholdMin         float64
	ThresholdMax         float64
	ThresholdStep        float64
}

// Point is one candidate configuration.
type Point struct {
	Jokers    int
	Budget    int
	Threshold float64
}

func (p Point) String() string {
	return fmt.Sprintf("jokers=%d budget=%d threshold=%.2f%%", p.Jokers, p.Budget, p.Threshold)
}

func (s Space) Validate() error {
	var errs []string
	if s.JokerMin < 0 || s.JokerMax > 2 || s.JokerMin > s.JokerMax {
		errs = append(errs, "joker range must satisfy 0 <= min <= max <= 2")
	}
	if s.BudgetMin < 0 || s.BudgetMax > session.BaseInclusiveMax+2 || s.BudgetMin > s.BudgetMax {
		errs = append(errs, fmt.Sprintf("budget range must satisfy 0 <= min <= max <= %d", session.BaseInclusiveMax+2))
	}
	if s.ThresholdMin < 0 || s.ThresholdMax > 100 || s.ThresholdMin > s.ThresholdMax {
		errs = append(errs, "threshold range must satisfy 0 <= min <= max <= 100")
	}
	if s.ThresholdStep <= 0 {
		errs = append(errs, "threshold step must be > 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("space validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Points expands the grid in a fixed order (jokers, then budget, then
// threshold ascending).
func (s Space) Points() []Point {
	var pts []Point
	for j := s.JokerMin; j <= s.JokerMax; j++ {
		maxBudget := session.BaseInclusiveMax + j
		for b := s.BudgetMin; b <= s.BudgetMax; b++ {
			if b > maxBudget {
				continue
			}
			for t := s.ThresholdMin; t <= s.ThresholdMax+1e-9; t += s.ThresholdStep {
				pts = append(pts, Point{Jokers: j, Budget: b, Threshold: t})
			}
		}
	}
	return pts
}

// Result pairs one evaluated point with its batch statistics.
type Result struct {
	Point Point
	Stats sim.AggregateStats
}

// Progress reports after each evaluated point: how far the sweep is and
// the best configuration so far. Used for incremental reporting while a
// large grid is still running.
type Progress func(done, total int, best Result)

// Params drives one Search.
type Params struct {
	Space          Space
	TrialsPerPoint int
	Seed           uint64  // 0 picks a random seed
	Workers        int     // per-batch worker pool size
	RecoveryCutoff float64 // policy tunable; <=0 keeps the default
	OnProgress     Progress
}

// Search evaluates every grid point with the simulator and returns the
// results ranked best first: win rate descending, then mean moves
// ascending (faster, equally reliable strategies win ties), then budget
// ascending (simpler configurations win the rest). Cancelling the context
// stops evaluating further points; the points already finished come back
// ranked, never dropped.
func Search(ctx context.Context, p Params) ([]Result, error) {
	if err := p.Space.Validate(); err != nil {
		return nil, err
	}
	if p.TrialsPerPoint <= 0 {
		return nil, fmt.Errorf("%w: %d", sim.ErrNoTrials, p.TrialsPerPoint)
	}
	points := p.Space.Points()
	if len(points) == 0 {
		return nil, ErrEmptySpace
	}

	seed := p.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	master := rand.New(rand.NewPCG(seed, 1))

	var results []Result
	var best Result
	haveBest := false

	for i, pt := range points {
		pointSeed := master.Uint64() // consumed even if cancelled next, keeps seeds stable
		if ctx.Err() != nil {
			break
		}
		pol := sim.NewThresholdPolicy(pt.Threshold)
		if p.RecoveryCutoff > 0 {
			pol.RecoveryCutoff = p.RecoveryCutoff
		}
		stats, err := sim.RunBatch(ctx, sim.BatchParams{
			Config: session.Config{
				Jokers:          pt.Jokers,
				InclusiveBudget: pt.Budget,
				Threshold:       pt.Threshold,
			},
			Trials:  p.TrialsPerPoint,
			Seed:    pointSeed,
			Workers: p.Workers,
		}, pol)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", pt, err)
		}
		if stats.Trials == 0 {
			// Cancelled before any trial of this point finished.
			break
		}
		r := Result{Point: pt, Stats: stats}
		results = append(results, r)
		if !haveBest || less(r, best) {
			best = r
			haveBest = true
		}
		if p.OnProgress != nil {
			p.OnProgress(i+1, len(points), best)
		}
	}

	Rank(results)
	return results, nil
}

// ParameterBests holds, for each distinct value of one swept parameter,
// the best result carrying that value. It answers "how good can jokers=1
// get, regardless of the other knobs" for every axis of the grid.
type ParameterBests struct {
	ByJokers    map[int]Result
	ByBudget    map[int]Result
	ByThreshold map[float64]Result
}

// BestPerParameter folds ranked or unranked results into per-axis bests
// using the same ordering as Rank.
func BestPerParameter(results []Result) ParameterBests {
	pb := ParameterBests{
		ByJokers:    make(map[int]Result),
		ByBudget:    make(map[int]Result),
		ByThreshold: make(map[float64]Result),
	}
	for _, r := range results {
		bestInto(pb.ByJokers, r.Point.Jokers, r)
		bestInto(pb.ByBudget, r.Point.Budget, r)
		bestInto(pb.ByThreshold, r.Point.Threshold, r)
	}
	return pb
}

func bestInto[K comparable](m map[K]Result, k K, r Result) {
	cur, ok := m[k]
	if !ok || less(r, cur) {
		m[k] = r
	}
}

// Rank sorts results in place, best first, with the documented stable
// tie-breaks.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return less(results[i], results[j])
	})
}

func less(a, b Result) bool {
	if a.Stats.WinRate != b.Stats.WinRate {
		return a.Stats.WinRate > b.Stats.WinRate
	}
	if a.Stats.Moves.Mean != b.Stats.Moves.Mean {
		return a.Stats.Moves.Mean < b.Stats.Moves.Mean
	}
	return a.Point.Budget < b.Point.Budget
}
