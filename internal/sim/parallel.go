package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

// Factory builds a fresh simulator, plant included. Plants are not safe
// for concurrent use, so every parallel run gets its own.
type Factory func() (*Simulator, error)

// RunAll runs each factory's simulator with cfg on up to parallelism
// goroutines (GOMAXPROCS when parallelism < 1). Results keep the order of
// factories. The first error cancels the remaining runs.
func RunAll(ctx context.Context, factories []Factory, cfg dynamo.Config, parallelism int) ([]*dynamo.Result, error) {
	if parallelism < 1 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	results := make([]*dynamo.Result, len(factories))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, build := range factories {
		g.Go(func() error {
			s, err := build()
			if err != nil {
				return err
			}
			res, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
