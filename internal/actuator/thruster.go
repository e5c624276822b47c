package actuator

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/san-kum/hydrosim/internal/body"
	"github.com/san-kum/hydrosim/internal/water"
)

type ThrusterConfig struct {
	Motor   MotorConfig
	ThrustK float64 // N per (rad/s)^2
	BackK   float64 // reverse thrust efficiency
	Height  float64 // m, depth over which the thruster goes from dry to fully wet
}

func DefaultThrusterConfig() ThrusterConfig {
	return ThrusterConfig{
		Motor:   DefaultMotorConfig(),
		ThrustK: 4,
		BackK:   0.8,
		Height:  0.08,
	}
}

// Thruster is a motor whose spin pushes the vehicle. Thrust goes along
// the motor axis, grows with the square of spin rate and fades out as the
// thruster leaves the water.
type Thruster struct {
	*Motor
	cfg     ThrusterConfig
	root    body.Body
	surface water.Surface

	thrust     mgl64.Vec3
	submersion float64
}

// NewThruster binds the thruster to its own body and to the vehicle root
// that receives the thrust. With no root attached the thruster pushes its
// own body.
func NewThruster(name string, cfg ThrusterConfig, attach, root body.Attachment, surface water.Surface, log zerolog.Logger) (*Thruster, error) {
	m, err := NewMotor(name, cfg.Motor, attach, log)
	if err != nil {
		return nil, err
	}
	rb := m.body
	if !root.IsZero() {
		if rb, err = body.Resolve(name, root); err != nil {
			return nil, err
		}
	}
	return &Thruster{Motor: m, cfg: cfg, root: rb, surface: surface}, nil
}

func (t *Thruster) Tick(dt float64) {
	if !t.initialized {
		return
	}
	t.Motor.Tick(dt)

	pos := t.body.Position()
	t.submersion = SubmersionFraction(water.HeightAt(t.surface, pos, t.log), pos.Y(), t.cfg.Height)

	mag := ThrustMagnitude(t.Velocity(), t.cfg.ThrustK, t.cfg.BackK) * t.submersion
	t.thrust = t.worldAxis.Mul(mag)
	if mag == 0 {
		return
	}
	t.root.AddForceAtPosition(t.thrust, pos, body.Force)
}

// Thrust is the force applied on the last tick.
func (t *Thruster) Thrust() mgl64.Vec3 { return t.thrust }

// Submersion is the wet fraction used on the last tick.
func (t *Thruster) Submersion() float64 { return t.submersion }

func (t *Thruster) ThrusterConfig() ThrusterConfig { return t.cfg }

// ThrustMagnitude maps spin rate to signed thrust. Reverse spin is
// scaled by backK.
func ThrustMagnitude(v, thrustK, backK float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return 0
	}
	mag := math.Copysign(v*v, v) * thrustK
	if v < 0 {
		mag *= backK
	}
	return mag
}

// SubmersionFraction is clamp01((waterHeight - y) / height). A zero height
// thruster is either fully wet or dry.
func SubmersionFraction(waterHeight, y, height float64) float64 {
	depth := waterHeight - y
	if height <= 0 {
		if depth > 0 {
			return 1
		}
		return 0
	}
	return math.Max(0, math.Min(1, depth/height))
}
