package metrics

import (
	"math"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

// ControlEffort is the RMS over every command of every tick: thruster
// speeds and joint setpoints alike, so it compares runs of the same vehicle.
type ControlEffort struct {
	squares float64
	n       int
	peak    float64
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	for _, v := range u {
		c.squares += v * v
		c.peak = math.Max(c.peak, math.Abs(v))
	}
	c.n += len(u)
}

func (c *ControlEffort) Value() float64 {
	if c.n == 0 {
		return 0
	}
	return math.Sqrt(c.squares / float64(c.n))
}

// Peak is the largest command magnitude since Reset.
func (c *ControlEffort) Peak() float64 { return c.peak }

func (c *ControlEffort) Reset() { *c = ControlEffort{} }

// Standard returns the metrics every run records. A hull tilted past
// 20 degrees counts against stability.
func Standard(mass float64, inertia [3]float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewKineticEnergy(mass, inertia),
		NewStability(20 * math.Pi / 180),
		NewMaxTilt(),
		NewMaxSpeed(),
		NewControlEffort(),
	}
}
