// Package actuator implements the motor control cascade and the thrusters
// built on it.
//
// A [Motor] turns a scalar command into torque on its body along one
// principal axis. In torque mode the command is the torque; velocity mode
// computes the torque needed to reach a target speed in one tick; position
// mode runs a PID on the joint angle to get a target speed.
package actuator

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/san-kum/hydrosim/internal/body"
	"github.com/san-kum/hydrosim/internal/control"
	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/physics"
)

type Motor struct {
	name   string
	cfg    MotorConfig
	body   body.Body
	pid    *control.PID
	source control.CommandSource
	log    zerolog.Logger

	command      float64
	torqueOutput float64
	localAxis    mgl64.Vec3
	worldAxis    mgl64.Vec3
	inertia      float64
	maxAngAccel  float64
	initialized  bool
}

// NewMotor validates cfg and binds the motor to whichever body is
// attached. Swapped angle limits are corrected with a warning.
func NewMotor(name string, cfg MotorConfig, attach body.Attachment, log zerolog.Logger) (*Motor, error) {
	b, err := body.Resolve(name, attach)
	if err != nil {
		return nil, err
	}
	return newMotor(name, cfg, b, log)
}

func newMotor(name string, cfg MotorConfig, b body.Body, log zerolog.Logger) (*Motor, error) {
	log = log.With().Str("actuator", name).Logger()

	cfg, swapped := cfg.Normalize()
	if swapped {
		log.Warn().
			Float64("min", cfg.MinAngle).
			Float64("max", cfg.MaxAngle).
			Msg("min angle was greater than max angle, swapped")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	m := &Motor{
		name:   name,
		cfg:    cfg,
		body:   b,
		source: control.Live(),
		log:    log,
	}
	if cfg.PID != nil {
		m.pid = control.NewPID(cfg.PID.Kp, cfg.PID.Ki, cfg.PID.Kd, cfg.PID.Bound)
	}
	return m, nil
}

// Initialize resolves the rotation axis and the derived inertia values and
// caps the body's angular velocity. It resets smoothing and PID state.
func (m *Motor) Initialize() error {
	m.localAxis = m.cfg.Axis.Unit()
	m.worldAxis = body.TransformDirection(m.body, m.localAxis)

	inertia := m.body.InertiaTensor()
	scaled := mgl64.Vec3{inertia[0] * m.localAxis[0], inertia[1] * m.localAxis[1], inertia[2] * m.localAxis[2]}
	m.inertia = m.localAxis.Dot(m.body.InertiaTensorRotation().Rotate(scaled))
	if !(m.inertia > 0) || math.IsInf(m.inertia, 0) {
		return fmt.Errorf("%s: inertia along %s axis is %v: %w", m.name, m.cfg.Axis, m.inertia, dynamo.ErrInvalidConfig)
	}
	m.maxAngAccel = m.cfg.MaxTorque / m.inertia

	m.body.SetMaxAngularVelocity(m.cfg.MaxAngularVelocity)
	m.torqueOutput = 0
	if m.pid != nil {
		m.pid.Reset()
	}
	m.initialized = true
	return nil
}

// Tick applies this tick's torque. It does nothing before Initialize.
func (m *Motor) Tick(dt float64) {
	if !m.initialized {
		return
	}
	cmd := m.source.Resolve(m.command)
	m.worldAxis = body.TransformDirection(m.body, m.localAxis)

	switch m.cfg.Mode {
	case ModeTorque:
		m.applyTorque(cmd, dt)
	case ModeVelocity:
		m.applyVelocity(cmd, dt)
	case ModePosition:
		m.applyPosition(cmd, dt)
	}
}

func (m *Motor) applyTorque(torque, dt float64) {
	torque = clamp(torque, -m.cfg.MaxTorque, m.cfg.MaxTorque)
	if m.cfg.Mode != ModePosition {
		torque, _ = m.IsAtLimit(torque)
	}

	alpha := 1 - math.Pow(1-m.cfg.Responsiveness, dt*60)
	if dt <= 0 {
		alpha = 0
	}
	out := m.torqueOutput + (torque-m.torqueOutput)*alpha
	m.torqueOutput = clamp(out, -m.cfg.MaxTorque, m.cfg.MaxTorque)

	m.body.AddTorque(m.worldAxis.Mul(m.torqueOutput), body.Force)
}

func (m *Motor) applyVelocity(target, dt float64) {
	target = clamp(target, -m.cfg.MaxAngularVelocity, m.cfg.MaxAngularVelocity)
	if m.cfg.Mode != ModePosition {
		target, _ = m.IsAtLimit(target)
	}

	torque := 0.0
	if dt > 0 {
		torque = m.inertia * (target - m.Velocity()) / dt
	}
	m.applyTorque(torque, dt)
}

func (m *Motor) applyPosition(target, dt float64) {
	if m.pid == nil {
		return
	}
	target = clamp(target, m.cfg.MinAngle, m.cfg.MaxAngle)
	err := physics.WrapAngle(target - m.Angle())

	desired := m.pid.Run(err, dt)
	// slowest of the speed cap and the speed we can still brake from
	limit := math.Min(m.cfg.MaxAngularVelocity, math.Sqrt(2*m.maxAngAccel*math.Abs(err)))
	desired = clamp(desired, -limit, limit)

	m.applyVelocity(desired, dt)
}

// IsAtLimit zeroes a command that would drive the joint past a travel
// limit it already sits on, and stops the joint dead. A jointed body is
// stopped relative to its parent. Commands pointing back into the travel
// range pass through.
func (m *Motor) IsAtLimit(cmd float64) (float64, bool) {
	angle := m.Angle()
	if (angle <= m.cfg.MinAngle && cmd < 0) || (angle >= m.cfg.MaxAngle && cmd > 0) {
		if j, ok := m.body.(body.Jointed); ok {
			j.StopJoint()
		} else {
			m.body.SetAngularVelocity(mgl64.Vec3{})
		}
		return 0, true
	}
	return cmd, false
}

// Velocity is the angular velocity about the motor axis in rad/s, taken
// relative to the parent for a jointed body like Angle.
func (m *Motor) Velocity() float64 {
	w := m.body.AngularVelocity()
	if j, ok := m.body.(body.Jointed); ok {
		w = j.RelativeAngularVelocity()
	}
	local := body.InverseTransformDirection(m.body, w)
	return m.cfg.Axis.Component(local)
}

// Angle is the joint angle about the motor axis in (-pi, pi].
func (m *Motor) Angle() float64 {
	q := m.body.LocalRotation()
	axis := m.cfg.Axis.Unit()
	return physics.WrapAngle(2 * math.Atan2(q.V.Dot(axis), q.W))
}

func (m *Motor) SetCommand(v float64)              { m.command = v }
func (m *Motor) Command() float64                  { return m.command }
func (m *Motor) SetSource(s control.CommandSource) { m.source = s }
func (m *Motor) Source() control.CommandSource     { return m.source }
func (m *Motor) Name() string                      { return m.name }
func (m *Motor) Config() MotorConfig               { return m.cfg }
func (m *Motor) Body() body.Body                   { return m.body }
func (m *Motor) TorqueOutput() float64             { return m.torqueOutput }
func (m *Motor) WorldAxis() mgl64.Vec3             { return m.worldAxis }
func (m *Motor) InertiaAlongAxis() float64         { return m.inertia }
func (m *Motor) MaxAngularAcceleration() float64   { return m.maxAngAccel }
func (m *Motor) Initialized() bool                 { return m.initialized }
func (m *Motor) MaxCommand() float64               { return m.cfg.MaxCommand() }
func (m *Motor) MinCommand() float64               { return m.cfg.MinCommand() }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
