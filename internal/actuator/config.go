package actuator

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/hydrosim/internal/dynamo"
)

// ControlMode selects what a motor command means.
type ControlMode int

const (
	// ModeTorque commands a torque in N*m.
	ModeTorque ControlMode = iota
	// ModeVelocity commands an angular velocity in rad/s.
	ModeVelocity
	// ModePosition commands a joint angle in rad.
	ModePosition
)

func (m ControlMode) String() string {
	switch m {
	case ModeTorque:
		return "torque"
	case ModeVelocity:
		return "velocity"
	case ModePosition:
		return "position"
	}
	return fmt.Sprintf("ControlMode(%d)", int(m))
}

func ParseControlMode(s string) (ControlMode, error) {
	switch strings.ToLower(s) {
	case "torque", "":
		return ModeTorque, nil
	case "velocity":
		return ModeVelocity, nil
	case "position":
		return ModePosition, nil
	}
	return ModeTorque, fmt.Errorf("control mode %q: %w", s, dynamo.ErrInvalidConfig)
}

// Axis is a principal axis of the body frame.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) Unit() mgl64.Vec3 {
	var v mgl64.Vec3
	v[a.index()] = 1
	return v
}

// Component picks this axis out of a body-frame vector.
func (a Axis) Component(v mgl64.Vec3) float64 { return v[a.index()] }

func (a Axis) index() int {
	if a < AxisX || a > AxisZ {
		return int(AxisY)
	}
	return int(a)
}

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a.index()]
}

func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return AxisX, nil
	case "y", "":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return AxisY, fmt.Errorf("axis %q: %w", s, dynamo.ErrInvalidConfig)
}

type PIDGains struct {
	Kp    float64 `yaml:"kp"`
	Ki    float64 `yaml:"ki"`
	Kd    float64 `yaml:"kd"`
	Bound float64 `yaml:"bound"`
}

type MotorConfig struct {
	Mode               ControlMode
	Axis               Axis
	MaxTorque          float64 // N*m
	MaxAngularVelocity float64 // rad/s
	// Responsiveness is the per-1/60s smoothing gain in [0, 1]; 1 applies
	// the target torque immediately.
	Responsiveness float64
	PID            *PIDGains
	MinAngle       float64 // rad, may be -Inf
	MaxAngle       float64 // rad, may be +Inf
}

func DefaultMotorConfig() MotorConfig {
	return MotorConfig{
		Mode:               ModeTorque,
		Axis:               AxisY,
		MaxTorque:          1.3,
		MaxAngularVelocity: 200,
		Responsiveness:     1,
		MinAngle:           math.Inf(-1),
		MaxAngle:           math.Inf(1),
	}
}

// Normalize returns the config with swapped angle limits put back in
// order and the responsiveness clamped to [0, 1]. swapped reports whether
// the limits had to be exchanged.
func (c MotorConfig) Normalize() (out MotorConfig, swapped bool) {
	out = c
	if out.MinAngle > out.MaxAngle {
		out.MinAngle, out.MaxAngle = out.MaxAngle, out.MinAngle
		swapped = true
	}
	out.Responsiveness = math.Max(0, math.Min(1, out.Responsiveness))
	return out, swapped
}

// Validate rejects values no correction can fix.
func (c MotorConfig) Validate() error {
	switch {
	case math.IsNaN(c.MaxTorque) || c.MaxTorque < 0:
		return fmt.Errorf("max torque %v: %w", c.MaxTorque, dynamo.ErrInvalidConfig)
	case math.IsNaN(c.MaxAngularVelocity) || c.MaxAngularVelocity < 0:
		return fmt.Errorf("max angular velocity %v: %w", c.MaxAngularVelocity, dynamo.ErrInvalidConfig)
	case math.IsNaN(c.MinAngle) || math.IsNaN(c.MaxAngle):
		return fmt.Errorf("angle limits: %w", dynamo.ErrInvalidConfig)
	case c.Mode == ModePosition && c.PID == nil:
		return fmt.Errorf("position mode needs PID gains: %w", dynamo.ErrInvalidConfig)
	case c.Mode < ModeTorque || c.Mode > ModePosition:
		return fmt.Errorf("%v: %w", c.Mode, dynamo.ErrInvalidConfig)
	}
	return nil
}

// MaxCommand is the largest meaningful command for the configured mode.
func (c MotorConfig) MaxCommand() float64 {
	switch c.Mode {
	case ModeVelocity:
		return c.MaxAngularVelocity
	case ModePosition:
		return c.MaxAngle
	}
	return c.MaxTorque
}

// MinCommand is the smallest meaningful command for the configured mode.
func (c MotorConfig) MinCommand() float64 {
	switch c.Mode {
	case ModeVelocity:
		return -c.MaxAngularVelocity
	case ModePosition:
		return c.MinAngle
	}
	return -c.MaxTorque
}
