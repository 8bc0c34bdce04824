package core

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/groundwave/model"
)

// Sweep evaluates base at each distance in distancesKm, fanning the work out
// over at most workers goroutines (GOMAXPROCS when workers <= 0). Results
// are returned in the order of distancesKm. The first failure cancels the
// remaining evaluations and is returned annotated with its distance.
func (e *Engine) Sweep(ctx context.Context, base model.Input, distancesKm []float64, workers int) ([]Prediction, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]Prediction, len(distancesKm))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, d := range distancesKm {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in := base
			in.DistanceKm = d
			p, err := e.Run(in)
			if err != nil {
				return fmt.Errorf("d = %g km: %w", d, err)
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MaxSweepPoints bounds the grid Distances will build.
const MaxSweepPoints = 100_000

// Distances returns n evenly spaced distances from startKm to stopKm
// inclusive. n above MaxSweepPoints fails with ErrTooManyPoints.
func Distances(startKm, stopKm float64, n int) ([]float64, error) {
	if n > MaxSweepPoints {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyPoints, n, MaxSweepPoints)
	}
	if n <= 0 {
		return nil, nil
	}
	if n == 1 {
		return []float64{startKm}, nil
	}
	out := make([]float64, n)
	step := (stopKm - startKm) / float64(n-1)
	for i := range out {
		out[i] = startKm + float64(i)*step
	}
	out[n-1] = stopKm
	return out, nil
}
