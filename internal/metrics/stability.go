package metrics

import (
	"math"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

// Tilt is the angle between the hull's up axis and the vertical for the
// given roll and pitch.
func Tilt(roll, pitch float64) float64 {
	return math.Acos(math.Max(-1, math.Min(1, math.Cos(roll)*math.Cos(pitch))))
}

// Stability is the fraction of samples with the hull tilted no more than
// limit radians. A run that never samples counts as stable.
type Stability struct {
	limit  float64
	upset  int
	counts int
}

func NewStability(limit float64) *Stability { return &Stability{limit: limit} }

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < dynamo.SampleDim {
		return
	}
	s.counts++
	if Tilt(x[dynamo.Roll], x[dynamo.Pitch]) > s.limit {
		s.upset++
	}
}

func (s *Stability) Value() float64 {
	if s.counts == 0 {
		return 1
	}
	return float64(s.counts-s.upset) / float64(s.counts)
}

func (s *Stability) Reset() { s.upset, s.counts = 0, 0 }

// MaxTilt is the largest tilt seen, in radians.
type MaxTilt struct {
	max float64
}

func NewMaxTilt() *MaxTilt { return &MaxTilt{} }

func (m *MaxTilt) Name() string { return "max_tilt" }

func (m *MaxTilt) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < dynamo.SampleDim {
		return
	}
	m.max = math.Max(m.max, Tilt(x[dynamo.Roll], x[dynamo.Pitch]))
}

func (m *MaxTilt) Value() float64 { return m.max }
func (m *MaxTilt) Reset()         { m.max = 0 }

// MaxSpeed tracks the highest hull speed.
type MaxSpeed struct {
	max float64
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{} }

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(x dynamo.State, u dynamo.Control, t float64) {
	m.max = math.Max(m.max, x.Speed())
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }
