// Package optim tunes scenario parameters by exhaustive grid search. Every
// combination is simulated on its own plant, in parallel.
package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/rs/zerolog"

	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/sim"
	"github.com/san-kum/hydrosim/internal/vehicle"
)

var ErrNoTrials = errors.New("optim: no trial completed")

// Param is one axis of the grid.
type Param struct {
	Name   string
	Values []float64
}

// Builder makes a fresh simulator for one parameter set.
type Builder func(params map[string]float64) (*sim.Simulator, error)

// Objective scores a finished run. Lower is better.
type Objective func(res *dynamo.Result, plant dynamo.Plant) (float64, error)

type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type Outcome struct {
	Best   Trial
	Trials []Trial
}

type GridSearch struct {
	params      []Param
	parallelism int
	log         zerolog.Logger
}

func NewGridSearch(params []Param) *GridSearch {
	return &GridSearch{params: params, log: zerolog.Nop()}
}

func (g *GridSearch) SetParallelism(n int)         { g.parallelism = n }
func (g *GridSearch) SetLogger(log zerolog.Logger) { g.log = log }

// Combinations enumerates the grid, first parameter outermost.
func (g *GridSearch) Combinations() []map[string]float64 {
	var out []map[string]float64
	g.combine(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) combine(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.params) {
		*out = append(*out, maps.Clone(current))
		return
	}
	p := g.params[depth]
	for _, v := range p.Values {
		current[p.Name] = v
		g.combine(depth+1, current, out)
	}
	delete(current, p.Name)
}

// Search runs every combination with cfg and returns all trials in grid
// order with the lowest scoring one as Best. Combinations that fail to
// build, diverge or cannot be scored are kept with Err set.
func (g *GridSearch) Search(ctx context.Context, cfg dynamo.Config, build Builder, objective Objective) (*Outcome, error) {
	combos := g.Combinations()
	if len(g.params) == 0 || len(combos) == 0 {
		return nil, fmt.Errorf("grid is empty: %w", dynamo.ErrInvalidConfig)
	}

	trials := make([]Trial, len(combos))
	var (
		factories []sim.Factory
		runnable  []int
		sims      []*sim.Simulator
	)
	for i, params := range combos {
		trials[i] = Trial{Params: params, Score: math.Inf(1)}
		s, err := build(params)
		if err != nil {
			trials[i].Err = err
			g.log.Warn().Err(err).Interface("params", params).Msg("skipping combination")
			continue
		}
		sims = append(sims, s)
		runnable = append(runnable, i)
		factories = append(factories, func() (*sim.Simulator, error) { return s, nil })
	}

	g.log.Info().Int("combinations", len(combos)).Int("runnable", len(runnable)).Msg("grid search started")
	results, err := sim.RunAll(ctx, factories, cfg, g.parallelism)
	if err != nil {
		return nil, err
	}

	best := -1
	for k, res := range results {
		i := runnable[k]
		if err := divergence(res); err != nil {
			trials[i].Err = err
			continue
		}
		score, err := objective(res, sims[k].Plant())
		if err != nil {
			trials[i].Err = err
			continue
		}
		trials[i].Score = score
		if best < 0 || score < trials[best].Score {
			best = i
		}
	}

	if best < 0 {
		return &Outcome{Trials: trials}, ErrNoTrials
	}
	g.log.Info().Interface("params", trials[best].Params).Float64("score", trials[best].Score).Msg("grid search done")
	return &Outcome{Best: trials[best], Trials: trials}, nil
}

func divergence(res *dynamo.Result) error {
	for _, err := range res.Errors {
		var se dynamo.SimError
		if errors.As(err, &se) {
			return se
		}
	}
	return nil
}

// ScenarioBuilder applies each parameter set to a copy of base through
// SetParam and builds the vehicle simulator for it.
func ScenarioBuilder(base *config.Config, log zerolog.Logger) Builder {
	return func(params map[string]float64) (*sim.Simulator, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		s, _, err := vehicle.NewSimulator(cfg, log)
		return s, err
	}
}
