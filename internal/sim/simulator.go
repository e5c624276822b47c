package sim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

// Command is a scheduled write to a named plant input.
type Command struct {
	At     float64
	Target string
	Value  float64
}

type Simulator struct {
	plant     dynamo.Plant
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	schedule  []Command
	log       zerolog.Logger
}

func New(plant dynamo.Plant) *Simulator {
	return &Simulator{
		plant:     plant,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		log:       zerolog.Nop(),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(log zerolog.Logger)  { s.log = log }
func (s *Simulator) Plant() dynamo.Plant           { return s.plant }

// SetSchedule replaces the command schedule. Commands are applied in time
// order at the first step whose start time has reached At.
func (s *Simulator) SetSchedule(cmds []Command) {
	s.schedule = append([]Command(nil), cmds...)
	sort.SliceStable(s.schedule, func(i, j int) bool { return s.schedule[i].At < s.schedule[j].At })
}

// Run initializes the plant if it needs it and steps it for the configured
// duration. The returned result holds the initial sample plus one per step.
// A non-finite sample stops the run early and is reported in
// Result.Errors, not as the returned error.
func (s *Simulator) Run(ctx context.Context, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.prepare(cfg); err != nil {
		return nil, err
	}

	steps := stepCount(cfg)
	result := &dynamo.Result{
		States:   make([]dynamo.State, 0, steps+1),
		Controls: make([]dynamo.Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	dt := cfg.Dt
	next := 0

	x := s.plant.Sample()
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		next = s.applySchedule(next, t, result)
		u := s.plant.Commands()

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		s.plant.Tick(dt)
		newX := s.plant.Sample()

		if cfg.ValidateState && !newX.IsValid() {
			err := dynamo.SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
			s.log.Warn().Err(err).Msg("stopping run")
			result.Errors = append(result.Errors, err)
			break
		}

		x = newX
		t += dt
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Debug().
		Int("steps", result.StepsTaken).
		Int("errors", len(result.Errors)).
		Msg("run finished")
	return result, nil
}

// RunWithCallback steps the plant until the duration elapses or callback
// returns false. It keeps no history.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg dynamo.Config, callback func(dynamo.State, dynamo.Control, float64) bool) error {
	if err := s.prepare(cfg); err != nil {
		return err
	}

	t := 0.0
	dt := cfg.Dt
	next := 0
	steps := stepCount(cfg)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		next = s.applySchedule(next, t, nil)
		x, u := s.plant.Sample(), s.plant.Commands()
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}
		if !callback(x, u, t) {
			return nil
		}

		s.plant.Tick(dt)
		t += dt

		if cfg.ValidateState && !s.plant.Sample().IsValid() {
			return dynamo.SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
		}
	}

	return nil
}

func (s *Simulator) prepare(cfg dynamo.Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if len(s.schedule) > 0 {
		if _, ok := s.plant.(dynamo.Commandable); !ok {
			return fmt.Errorf("plant %T takes no commands: %w", s.plant, dynamo.ErrInvalidConfig)
		}
	}
	if in, ok := s.plant.(dynamo.Initializer); ok {
		if err := in.Initialize(); err != nil {
			return err
		}
	}
	return nil
}

// applySchedule sends every command due at t, starting from index next,
// and returns the index of the first command still pending. Failed
// commands are recorded on result when one is given.
func (s *Simulator) applySchedule(next int, t float64, result *dynamo.Result) int {
	cmdr, _ := s.plant.(dynamo.Commandable)
	// t accumulates rounding error
	for next < len(s.schedule) && s.schedule[next].At <= t+1e-9 {
		c := s.schedule[next]
		next++
		if err := cmdr.SetCommand(c.Target, c.Value); err != nil {
			s.log.Warn().Err(err).Float64("t", t).Msg("scheduled command rejected")
			if result != nil {
				result.Errors = append(result.Errors, err)
			}
			continue
		}
		s.log.Debug().Str("target", c.Target).Float64("value", c.Value).Float64("t", t).Msg("command")
	}
	return next
}

func validateConfig(cfg dynamo.Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %f: %w", cfg.Dt, dynamo.ErrInvalidConfig)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f: %w", cfg.Duration, dynamo.ErrInvalidConfig)
	}
	return nil
}

func stepCount(cfg dynamo.Config) int {
	return int(math.Round(cfg.Duration / cfg.Dt))
}
