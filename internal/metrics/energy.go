package metrics

import (
	"github.com/san-kum/hydrosim/internal/dynamo"
)

// KineticEnergy averages the hull's translational plus rotational kinetic
// energy. Angular velocity is taken against the principal inertia without
// rotating it into the world frame, which holds for small tilt.
type KineticEnergy struct {
	name    string
	mass    float64
	inertia [3]float64
	samples int
	total   float64
	peak    float64
}

func NewKineticEnergy(mass float64, inertia [3]float64) *KineticEnergy {
	return &KineticEnergy{
		name:    "kinetic_energy",
		mass:    mass,
		inertia: inertia,
	}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < dynamo.SampleDim {
		return
	}
	v := x.Speed()
	ke := 0.5 * e.mass * v * v
	for i := 0; i < 3; i++ {
		w := x[dynamo.AngX+i]
		ke += 0.5 * e.inertia[i] * w * w
	}
	e.total += ke
	e.samples++
	if ke > e.peak {
		e.peak = ke
	}
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Peak is the largest energy seen since Reset.
func (e *KineticEnergy) Peak() float64 { return e.peak }

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
	e.peak = 0
}
