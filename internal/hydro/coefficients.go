// Package hydro computes the hydrodynamic and hydrostatic loads on a
// vehicle hull: Fossen-style damping, Coriolis coupling and added mass,
// buoyancy from the submerged volume, ballast weights, per-face pressure
// drag and skin friction.
package hydro

import (
	"fmt"
	"math"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

const (
	Gravity        = 9.80665 // m/s^2
	WaterDensity   = 997.0   // kg/m^3
	WaterViscosity = 1.0016  // dynamic, mPa*s at 20C
)

// DOF indexes the six-element velocity state.
type DOF int

const (
	Surge DOF = iota
	Sway
	Heave
	Roll
	Pitch
	Yaw
)

var dofNames = [6]string{"surge", "sway", "heave", "roll", "pitch", "yaw"}

func (d DOF) String() string {
	if d < Surge || d > Yaw {
		return fmt.Sprintf("DOF(%d)", int(d))
	}
	return dofNames[d]
}

// Coefficients holds one added-mass, linear and quadratic damping term
// per DOF, in surge, sway, heave, roll, pitch, yaw order.
type Coefficients struct {
	AddedMass        [6]float64 `yaml:"added_mass"`
	LinearDamping    [6]float64 `yaml:"linear_damping"`
	QuadraticDamping [6]float64 `yaml:"quadratic_damping"`
}

// DefaultCoefficients suits a small box ROV of around 60 kg.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		AddedMass:        [6]float64{6, 8, 2, 0.15, 0.25, 0.35},
		LinearDamping:    [6]float64{30, 40, 150, 8, 12, 20},
		QuadraticDamping: [6]float64{25, 35, 40, 3, 6, 30},
	}
}

func (c Coefficients) Validate() error {
	check := func(kind string, v [6]float64) error {
		for i, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
				return fmt.Errorf("%s %s = %v: %w", kind, DOF(i), x, dynamo.ErrInvalidConfig)
			}
		}
		return nil
	}
	if err := check("added mass", c.AddedMass); err != nil {
		return err
	}
	if err := check("linear damping", c.LinearDamping); err != nil {
		return err
	}
	return check("quadratic damping", c.QuadraticDamping)
}

// Features toggles the three Fossen contributions.
type Features struct {
	Damping   bool `yaml:"damping"`
	Coriolis  bool `yaml:"coriolis"`
	AddedMass bool `yaml:"added_mass"`
}

func AllFeatures() Features {
	return Features{Damping: true, Coriolis: true, AddedMass: true}
}
