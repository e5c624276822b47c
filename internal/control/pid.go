package control

import (
	"fmt"
	"math"
)

type PID struct {
	Kp float64
	Ki float64
	Kd float64
	// Bound clamps the integral to [-Bound, Bound]. Zero or less disables clamping.
	Bound    float64
	integral float64
	prevErr  float64
	first    bool
}

func NewPID(kp, ki, kd, bound float64) *PID {
	return &PID{
		Kp:    kp,
		Ki:    ki,
		Kd:    kd,
		Bound: bound,
		first: true,
	}
}

// Run advances the loop by dt for the given error and returns the output.
// The first call after a reset has no derivative term.
func (p *PID) Run(err, dt float64) float64 {
	if dt <= 0 {
		return p.Kp * err
	}

	derivative := 0.0
	if p.first {
		p.first = false
	} else {
		derivative = (err - p.prevErr) / dt
	}
	p.prevErr = err

	p.integral += err * dt
	if p.Bound > 0 {
		p.integral = math.Max(-p.Bound, math.Min(p.Bound, p.integral))
	}

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// Integral returns the accumulated integral term.
func (p *PID) Integral() float64 { return p.integral }

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// Clone returns a fresh loop with the same gains.
func (p *PID) Clone() *PID {
	return NewPID(p.Kp, p.Ki, p.Kd, p.Bound)
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":    p.Kp,
		"Ki":    p.Ki,
		"Kd":    p.Kd,
		"Bound": p.Bound,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Bound":
		p.Bound = value
	default:
		return fmt.Errorf("unknown PID parameter %q", name)
	}
	return nil
}
