package sim

import (
	"context"
	"sync"

	"github.com/san-kum/gridhero/internal/hero"
)

// Ensemble runs independent renderers with consecutive seeds concurrently.
// Observers added to the base simulator are not attached; use WithObservers.
type Ensemble struct {
	base      *Simulator
	numRuns   int
	seedStart int64
	// observers builds per-run observers; runs share no state.
	observers func(run int) []hero.Observer
}

func NewEnsemble(s *Simulator, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{base: s, numRuns: numRuns, seedStart: seedStart}
}

// WithObservers sets a factory for observers attached to each run.
func (e *Ensemble) WithObservers(fn func(run int) []hero.Observer) *Ensemble {
	e.observers = fn
	return e
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			rc := e.base.cfg.Clone()
			rc.Seed = e.seedStart + int64(idx)

			sim := New(rc, e.base.log)
			sim.options = e.base.options
			if e.observers != nil {
				for _, o := range e.observers(idx) {
					sim.AddObserver(o)
				}
			}

			results[idx], errs[idx] = sim.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
