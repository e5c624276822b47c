package hydro

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/san-kum/hydrosim/internal/body"
	"github.com/san-kum/hydrosim/internal/water"
	"gonum.org/v1/gonum/mat"
)

// Fossen applies the reaction loads of a rigid hull moving through water:
// state-dependent damping, a reduced Coriolis coupling between yaw rate
// and surge/sway, and added mass from the finite-difference acceleration.
//
// The state is body-frame (surge, sway, heave, roll, pitch, yaw) in the
// model frame. Force is applied body-relative and torque in world space.
type Fossen struct {
	name     string
	body     body.Body
	coeffs   Coefficients
	features Features
	surface  water.Surface
	log      zerolog.Logger

	ma *mat.DiagDense
	d  *mat.DiagDense
	c  *mat.Dense

	eta, etaDot, tau, scratch *mat.VecDense

	state, prev   [6]float64
	force, torque mgl64.Vec3
	initialized   bool
}

func NewFossen(name string, coeffs Coefficients, features Features, attach body.Attachment, log zerolog.Logger) (*Fossen, error) {
	b, err := body.Resolve(name, attach)
	if err != nil {
		return nil, err
	}
	if err := coeffs.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Fossen{
		name:     name,
		body:     b,
		coeffs:   coeffs,
		features: features,
		log:      log.With().Str("component", name).Logger(),
		ma:       mat.NewDiagDense(6, append([]float64(nil), coeffs.AddedMass[:]...)),
		d:        mat.NewDiagDense(6, nil),
		c:        mat.NewDense(6, 6, nil),
		eta:      mat.NewVecDense(6, nil),
		etaDot:   mat.NewVecDense(6, nil),
		tau:      mat.NewVecDense(6, nil),
		scratch:  mat.NewVecDense(6, nil),
	}, nil
}

// SetSurface makes the hull see velocity relative to the local current.
func (f *Fossen) SetSurface(s water.Surface) { f.surface = s }

func (f *Fossen) SetFeatures(features Features) { f.features = features }
func (f *Fossen) Features() Features            { return f.features }
func (f *Fossen) Coefficients() Coefficients    { return f.coeffs }

// Initialize primes the previous state with the current one so the first
// tick sees zero acceleration.
func (f *Fossen) Initialize() error {
	f.state = f.readState()
	f.prev = f.state
	f.force, f.torque = mgl64.Vec3{}, mgl64.Vec3{}
	f.initialized = true
	return nil
}

func (f *Fossen) Tick(dt float64) {
	if !f.initialized {
		return
	}
	f.state = f.readState()
	force, torque := f.Compute(f.state, f.prev, dt)

	f.force = forceToEngine(force)
	f.torque = body.TransformDirection(f.body, torqueToEngine(torque))
	f.body.AddRelativeForce(f.force, body.Force)
	f.body.AddTorque(f.torque, body.Force)

	f.prev = f.state
}

func (f *Fossen) readState() [6]float64 {
	v := f.body.LinearVelocity()
	if f.surface != nil {
		v = v.Sub(water.CurrentAt(f.surface, f.body.Position(), f.log))
	}
	lin := body.InverseTransformDirection(f.body, v)
	ang := body.InverseTransformDirection(f.body, f.body.AngularVelocity())
	return toModel(lin, ang)
}

// Compute returns the model-frame force and torque for a state and the
// previous tick's state. A non-positive dt gives zero acceleration.
func (f *Fossen) Compute(state, prev [6]float64, dt float64) (force, torque [3]float64) {
	for i := 0; i < 6; i++ {
		f.eta.SetVec(i, state[i])
		rate := 0.0
		if dt > 0 {
			rate = (state[i] - prev[i]) / dt
		}
		f.etaDot.SetVec(i, rate)
	}
	f.tau.Zero()

	if f.features.Damping {
		f.buildDamping(state)
		f.scratch.MulVec(f.d, f.eta)
		f.tau.SubVec(f.tau, f.scratch)
	}
	if f.features.Coriolis {
		f.buildCoriolis(state)
		f.scratch.MulVec(f.c, f.eta)
		f.tau.AddVec(f.tau, f.scratch)
	}
	if f.features.AddedMass {
		f.scratch.MulVec(f.ma, f.etaDot)
		f.tau.AddVec(f.tau, f.scratch)
	}

	for i := 0; i < 3; i++ {
		force[i] = f.tau.AtVec(i)
		torque[i] = f.tau.AtVec(i + 3)
	}
	return force, torque
}

// buildDamping sets D[k,k] = linear_k + quadratic_k*|state_k|.
func (f *Fossen) buildDamping(state [6]float64) {
	for k := 0; k < 6; k++ {
		f.d.SetDiag(k, f.coeffs.LinearDamping[k]+f.coeffs.QuadraticDamping[k]*math.Abs(state[k]))
	}
}

// buildCoriolis fills the reduced coupling matrix. Only surge/sway couple
// with yaw rate, through the translational added mass.
func (f *Fossen) buildCoriolis(state [6]float64) {
	xu, yv := f.coeffs.AddedMass[Surge], f.coeffs.AddedMass[Sway]
	f.c.Zero()
	f.c.Set(0, 5, yv*state[Sway])
	f.c.Set(1, 5, xu*state[Surge])
	f.c.Set(5, 0, yv*state[Sway])
	f.c.Set(5, 1, yv*state[Surge])
}

// State is the model-frame state read on the last tick.
func (f *Fossen) State() [6]float64 { return f.state }

// Force is the engine-frame body-relative force applied on the last tick.
func (f *Fossen) Force() mgl64.Vec3 { return f.force }

// Torque is the world torque applied on the last tick.
func (f *Fossen) Torque() mgl64.Vec3 { return f.torque }
