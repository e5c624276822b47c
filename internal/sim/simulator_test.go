package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

// decayPlant integrates x' = gain - x with forward Euler.
type decayPlant struct {
	x     float64
	gain  float64
	inits int
	ticks int
}

func (p *decayPlant) Tick(dt float64) {
	p.x += dt * (p.gain - p.x)
	p.ticks++
}

func (p *decayPlant) Sample() dynamo.State     { return dynamo.State{p.x} }
func (p *decayPlant) Commands() dynamo.Control { return dynamo.Control{p.gain} }
func (p *decayPlant) Initialize() error        { p.inits++; return nil }

func (p *decayPlant) SetCommand(target string, value float64) error {
	if target != "gain" {
		return dynamo.ErrUnknownTarget
	}
	p.gain = value
	return nil
}

// nanPlant goes invalid after a number of ticks.
type nanPlant struct{ left int }

func (p *nanPlant) Tick(float64) { p.left-- }
func (p *nanPlant) Sample() dynamo.State {
	if p.left <= 0 {
		return dynamo.State{math.NaN()}
	}
	return dynamo.State{0}
}
func (p *nanPlant) Commands() dynamo.Control { return nil }

func TestSimulatorRun(t *testing.T) {
	plant := &decayPlant{x: 1}
	sim := New(plant)

	cfg := dynamo.Config{Dt: 0.1, Duration: 1.0, ValidateState: true}
	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if len(result.Controls) != 10 {
		t.Errorf("expected 10 controls, got %d", len(result.Controls))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if plant.inits != 1 {
		t.Errorf("expected one Initialize, got %d", plant.inits)
	}

	finalState := result.States[len(result.States)-1][0]
	expected := 1.0 * math.Exp(-1.0)
	if math.Abs(finalState-expected) > 0.2 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, finalState)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&decayPlant{x: 1})

	tests := []struct {
		name string
		cfg  dynamo.Config
	}{
		{"zero dt", dynamo.Config{Dt: 0, Duration: 1.0}},
		{"negative dt", dynamo.Config{Dt: -0.1, Duration: 1.0}},
		{"NaN dt", dynamo.Config{Dt: math.NaN(), Duration: 1.0}},
		{"zero duration", dynamo.Config{Dt: 0.1, Duration: 0}},
		{"negative duration", dynamo.Config{Dt: 0.1, Duration: -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorSchedule(t *testing.T) {
	plant := &decayPlant{}
	sim := New(plant)
	sim.SetSchedule([]Command{
		{At: 0.5, Target: "gain", Value: 2},
		{At: 0.2, Target: "gain", Value: 1},
		{At: 0.3, Target: "missing", Value: 1},
	})

	cfg := dynamo.Config{Dt: 0.1, Duration: 1.0, ValidateState: true}
	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{0, 0, 1, 1, 1, 2, 2, 2, 2, 2}
	for i, u := range result.Controls {
		if u[0] != want[i] {
			t.Errorf("step %d: expected gain %f, got %f", i, want[i], u[0])
		}
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], dynamo.ErrUnknownTarget) {
		t.Errorf("expected one ErrUnknownTarget, got %v", result.Errors)
	}
}

func TestSimulatorScheduleNeedsCommandable(t *testing.T) {
	sim := New(&nanPlant{left: 100})
	sim.SetSchedule([]Command{{At: 0, Target: "x", Value: 1}})

	_, err := sim.Run(context.Background(), dynamo.Config{Dt: 0.1, Duration: 1})
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSimulatorStopsOnInvalidState(t *testing.T) {
	sim := New(&nanPlant{left: 3})

	cfg := dynamo.Config{Dt: 0.1, Duration: 1.0, ValidateState: true}
	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 2 {
		t.Errorf("expected 2 steps before NaN, got %d", result.StepsTaken)
	}
	var simErr dynamo.SimError
	if len(result.Errors) != 1 || !errors.As(result.Errors[0], &simErr) {
		t.Fatalf("expected a SimError, got %v", result.Errors)
	}
	if simErr.Step != 2 {
		t.Errorf("expected failure at step 2, got %d", simErr.Step)
	}
}

func TestSimulatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(&decayPlant{}).Run(ctx, dynamo.Config{Dt: 0.1, Duration: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.States) != 1 {
		t.Error("expected partial result with the initial state")
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(x dynamo.State, u dynamo.Control, time float64) {
	t.count++
	t.sum += x[0]
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(&decayPlant{x: 1})

	metric := &testMetric{}
	sim.AddMetric(metric)

	cfg := dynamo.Config{Dt: 0.1, Duration: 1.0}
	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

type countObserver struct{ n int }

func (o *countObserver) OnStep(dynamo.State, dynamo.Control, float64) { o.n++ }

func TestRunWithCallback(t *testing.T) {
	plant := &decayPlant{x: 1}
	sim := New(plant)
	obs := &countObserver{}
	sim.AddObserver(obs)

	calls := 0
	err := sim.RunWithCallback(context.Background(), dynamo.Config{Dt: 0.1, Duration: 1}, func(x dynamo.State, u dynamo.Control, t float64) bool {
		calls++
		return t < 0.45
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 6 {
		t.Errorf("expected 6 callbacks, got %d", calls)
	}
	if plant.ticks != 5 {
		t.Errorf("expected 5 ticks, got %d", plant.ticks)
	}
	if obs.n != 6 {
		t.Errorf("expected observer on every callback, got %d", obs.n)
	}
}

func TestRunAll(t *testing.T) {
	gains := []float64{0, 1, 2, 3}
	factories := make([]Factory, len(gains))
	for i, g := range gains {
		factories[i] = func() (*Simulator, error) {
			return New(&decayPlant{gain: g}), nil
		}
	}

	cfg := dynamo.Config{Dt: 0.01, Duration: 5}
	results, err := RunAll(context.Background(), factories, cfg, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(gains) {
		t.Fatalf("expected %d results, got %d", len(gains), len(results))
	}
	for i, r := range results {
		final := r.States[len(r.States)-1][0]
		if math.Abs(final-gains[i]) > 0.05*gains[i]+1e-9 {
			t.Errorf("run %d: expected ~%f, got %f", i, gains[i], final)
		}
	}
}

func TestRunAllError(t *testing.T) {
	boom := errors.New("boom")
	factories := []Factory{
		func() (*Simulator, error) { return New(&decayPlant{}), nil },
		func() (*Simulator, error) { return nil, boom },
	}
	if _, err := RunAll(context.Background(), factories, dynamo.Config{Dt: 0.1, Duration: 1}, 0); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
