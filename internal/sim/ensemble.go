package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs one configuration across consecutive seeds.
type Ensemble struct {
	base      Config
	numRuns   int
	seedStart int64
	limit     int
}

func NewEnsemble(base Config, numRuns int, seedStart int64, limit int) *Ensemble {
	return &Ensemble{base: base, numRuns: numRuns, seedStart: seedStart, limit: limit}
}

// Run executes every seed, at most limit at a time, and returns results in
// seed order. The first failure cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			cfgCopy := e.base
			cfgCopy.Seed = e.seedStart + int64(idx)

			res, err := Run(ctx, cfgCopy)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
