package sim

import (
	"context"
	cryptoRand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/btb-suite/beatthebox/internal/deck"
	"github.com/btb-suite/beatthebox/internal/session"
)

var ErrNoTrials = errors.New("trial count must be positive")

// BatchParams describes one simulation batch. Seed 0 picks a random seed;
// any fixed seed makes the whole batch reproducible regardless of worker
// scheduling, because every trial's RNG derives from a sequentially
// generated per-trial seed.
type BatchParams struct {
	Config  session.Config
	Trials  int
	Seed    uint64
	Workers int // <=0 means GOMAXPROCS
}

// RunBatch plays Trials independent sessions under the policy and folds
// their outcomes into AggregateStats. Trials share nothing; each owns its
// deck, box and counters. Cancelling the context stops dispatching new
// trials and returns correctly-aggregated partial statistics with a nil
// error. A trial that panics is flagged as an invariant violation and
// excluded, never aborting the batch.
func RunBatch(ctx context.Context, p BatchParams, pol Policy) (AggregateStats, error) {
	if err := p.Config.Validate(); err != nil {
		return AggregateStats{}, err
	}
	if p.Trials <= 0 {
		return AggregateStats{}, fmt.Errorf("%w: %d", ErrNoTrials, p.Trials)
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	seed := p.Seed
	if seed == 0 {
		seed = randomSeed()
	}

	// Per-trial seeds come from the master generator sequentially, so the
	// trial at index i is the same game no matter which worker runs it.
	master := rand.New(rand.NewPCG(seed, 0))
	seeds := make([]uint64, p.Trials)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	results := make([]trialResult, p.Trials)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

dispatch:
	for i := 0; i < p.Trials; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = runTrial(p.Config, seeds[i], pol)
		}(i)
	}
	wg.Wait()

	return aggregate(results), nil
}

// runTrial plays one session to termination. Panics become a flagged
// violation instead of taking the batch down.
func runTrial(cfg session.Config, seed uint64, pol Policy) (tr trialResult) {
	defer func() {
		if r := recover(); r != nil {
			tr = trialResult{violation: true, done: true}
		}
	}()

	s, err := session.Start(cfg, deck.NewSeededRNG(seed))
	if err != nil {
		return trialResult{violation: true, done: true}
	}
	for !s.Phase().Terminal() {
		d, ok := pol.Decide(s)
		if !ok {
			return trialResult{violation: true, done: true}
		}
		if _, err := s.Step(d.Position, d.Prediction, d.Recovery); err != nil {
			// A correct policy never produces a rejected move; treat it
			// as a core defect, not a gameplay loss.
			return trialResult{violation: true, done: true}
		}
	}
	res, err := s.Result()
	if err != nil {
		return trialResult{violation: true, done: true}
	}
	return trialResult{res: res, done: true}
}

func randomSeed() uint64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Uint64()
	}
	return binary.BigEndian.Uint64(buf[:])
}
