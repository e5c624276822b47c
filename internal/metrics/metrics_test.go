package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

func row(set map[int]float64) dynamo.State {
	x := make(dynamo.State, dynamo.SampleDim)
	for i, v := range set {
		x[i] = v
	}
	return x
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy(2.0, [3]float64{1, 2, 3})

	x := row(map[int]float64{dynamo.VelX: 3, dynamo.VelZ: 4, dynamo.AngY: 1})
	m.Observe(x, nil, 0)

	expected := 0.5*2*25 + 0.5*2*1
	if math.Abs(m.Value()-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, m.Value())
	}

	m.Observe(row(nil), nil, 0.1)
	if math.Abs(m.Value()-expected/2) > 1e-9 {
		t.Errorf("expected mean %f, got %f", expected/2, m.Value())
	}
	if m.Peak() != expected {
		t.Errorf("expected peak %f, got %f", expected, m.Peak())
	}
}

func TestKineticEnergyReset(t *testing.T) {
	m := NewKineticEnergy(1.0, [3]float64{1, 1, 1})

	m.Observe(row(map[int]float64{dynamo.VelY: 1}), nil, 0)
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 || m.Peak() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestKineticEnergyShortRow(t *testing.T) {
	m := NewKineticEnergy(1.0, [3]float64{1, 1, 1})
	m.Observe(dynamo.State{1, 2}, nil, 0)
	if m.Value() != 0 {
		t.Error("short rows should be ignored")
	}
}

func TestStability(t *testing.T) {
	s := NewStability(0.2)

	s.Observe(row(nil), nil, 0)
	s.Observe(row(map[int]float64{dynamo.Roll: 0.1}), nil, 0)
	s.Observe(row(map[int]float64{dynamo.Pitch: -0.3}), nil, 0)
	s.Observe(row(map[int]float64{dynamo.Roll: 0.5, dynamo.Pitch: 0.5}), nil, 0)

	if s.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", s.Value())
	}

	s.Reset()
	if s.Value() != 1.0 {
		t.Errorf("expected 1.0 after reset, got %f", s.Value())
	}
}

func TestMaxSpeed(t *testing.T) {
	m := NewMaxSpeed()
	m.Observe(row(map[int]float64{dynamo.VelX: 1}), nil, 0)
	m.Observe(row(map[int]float64{dynamo.VelX: 3, dynamo.VelY: 4}), nil, 0)
	m.Observe(row(map[int]float64{dynamo.VelZ: 2}), nil, 0)

	if m.Value() != 5 {
		t.Errorf("expected 5, got %f", m.Value())
	}
}

func TestControlEffort(t *testing.T) {
	c := NewControlEffort()
	c.Observe(nil, dynamo.Control{3, -4}, 0)
	c.Observe(nil, dynamo.Control{0, 0}, 0)

	expected := math.Sqrt(25.0 / 4)
	if math.Abs(c.Value()-expected) > 1e-12 {
		t.Errorf("expected %f, got %f", expected, c.Value())
	}
	if c.Peak() != 4 {
		t.Errorf("expected peak 4, got %f", c.Peak())
	}

	c.Reset()
	if c.Value() != 0 || c.Peak() != 0 {
		t.Error("expected zero effort after reset")
	}
}

func TestTilt(t *testing.T) {
	tests := []struct {
		roll, pitch, want float64
	}{
		{0, 0, 0},
		{0.3, 0, 0.3},
		{0, -0.3, 0.3},
		{math.Pi / 2, 0, math.Pi / 2},
		{math.Pi / 3, math.Pi / 3, math.Acos(0.25)},
	}
	for _, tt := range tests {
		if got := Tilt(tt.roll, tt.pitch); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Tilt(%f, %f): expected %f, got %f", tt.roll, tt.pitch, tt.want, got)
		}
	}
}

func TestMaxTilt(t *testing.T) {
	m := NewMaxTilt()
	m.Observe(row(map[int]float64{dynamo.Roll: 0.1}), nil, 0)
	m.Observe(row(map[int]float64{dynamo.Pitch: -0.4}), nil, 0)
	m.Observe(dynamo.State{9}, nil, 0)
	if math.Abs(m.Value()-0.4) > 1e-12 {
		t.Errorf("expected 0.4, got %f", m.Value())
	}
}

func TestStandard(t *testing.T) {
	names := map[string]bool{}
	for _, m := range Standard(60, [3]float64{1, 1, 1}) {
		names[m.Name()] = true
	}
	for _, want := range []string{"kinetic_energy", "stability", "max_tilt", "max_speed", "control_effort"} {
		if !names[want] {
			t.Errorf("missing metric %s", want)
		}
	}
}
