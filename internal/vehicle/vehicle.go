// Package vehicle assembles a hull, its thrusters and joints, the water
// and the hydrodynamic contributors into one steppable plant.
package vehicle

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/san-kum/hydrosim/internal/actuator"
	"github.com/san-kum/hydrosim/internal/body"
	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/hydro"
	"github.com/san-kum/hydrosim/internal/physics"
	"github.com/san-kum/hydrosim/internal/water"
)

// Motion targets accepted by SetCommand when the vehicle has an OmniX mixer.
const (
	MotionForward = "motion.forward"
	MotionStrafe  = "motion.strafe"
	MotionYaw     = "motion.yaw"
)

type Vehicle struct {
	Name  string
	World *physics.World
	Hull  *physics.RigidBody

	Surface    water.Surface
	Submersion *water.VoxelHull
	Fossen     *hydro.Fossen
	Buoyancy   *hydro.Buoyancy
	Drag       *hydro.PressureDrag
	Friction   *hydro.ViscousResistance
	Ballast    []*hydro.Ballast
	Thrusters  []*actuator.Thruster
	Joints     []*actuator.Motor
	Mixer      *actuator.OmniX

	hull         body.Body
	log          zerolog.Logger
	contributors []dynamo.Contributor
	motors       map[string]*actuator.Motor
	motion       [3]float64
	initialized  bool
}

// Step advances the water, refreshes the submerged volume, lets every
// contributor add its forces and then steps the world. Contributors all
// read the state left by the previous step. Before Initialize the vehicle
// is left untouched and ErrNotInitialized is returned.
func (v *Vehicle) Step(dt float64) error {
	if !v.initialized {
		return fmt.Errorf("vehicle %s: %w", v.Name, dynamo.ErrNotInitialized)
	}
	if a, ok := v.Surface.(water.Advancer); ok {
		a.Advance(dt)
	}
	v.Submersion.Update()
	for _, c := range v.contributors {
		c.Tick(dt)
	}
	v.World.Step(dt)
	return nil
}

// Tick is Step for the runner, which initializes plants before stepping.
// A refused step is logged.
func (v *Vehicle) Tick(dt float64) {
	if err := v.Step(dt); err != nil {
		v.log.Error().Err(err).Msg("tick skipped")
	}
}

// Initialize resolves every actuator and primes the hydrodynamic state.
// Calling it again resets controller state without moving the vehicle.
func (v *Vehicle) Initialize() error {
	v.Submersion.Update()
	for _, c := range v.contributors {
		in, ok := c.(dynamo.Initializer)
		if !ok {
			continue
		}
		if err := in.Initialize(); err != nil {
			return fmt.Errorf("vehicle %s: %w", v.Name, err)
		}
	}
	v.initialized = true
	v.log.Debug().
		Int("thrusters", len(v.Thrusters)).
		Int("joints", len(v.Joints)).
		Float64("volume", v.Submersion.FullVolume()).
		Msg("vehicle initialized")
	return nil
}

func (v *Vehicle) Initialized() bool { return v.initialized }

// SetCommand routes value to the named actuator, or to the mixer for the
// motion.* targets. Motion requests are clamped to [-1, 1].
func (v *Vehicle) SetCommand(target string, value float64) error {
	if strings.HasPrefix(target, "motion.") {
		if v.Mixer == nil {
			return fmt.Errorf("%s: vehicle has no thruster mixer: %w", target, dynamo.ErrUnknownTarget)
		}
		value = math.Max(-1, math.Min(1, value))
		switch target {
		case MotionForward:
			v.motion[0] = value
		case MotionStrafe:
			v.motion[1] = value
		case MotionYaw:
			v.motion[2] = value
		default:
			return fmt.Errorf("%s: %w", target, dynamo.ErrUnknownTarget)
		}
		v.Mixer.SetMotion(v.motion[0], v.motion[1], v.motion[2])
		return nil
	}
	m, ok := v.motors[target]
	if !ok {
		return fmt.Errorf("%s: %w", target, dynamo.ErrUnknownTarget)
	}
	m.SetCommand(value)
	return nil
}

// Motion returns the last forward, strafe and yaw request.
func (v *Vehicle) Motion() [3]float64 { return v.motion }

func (v *Vehicle) Motor(name string) (*actuator.Motor, bool) {
	m, ok := v.motors[name]
	return m, ok
}

// Sample returns the fixed dynamo columns followed by thrust and shaft
// speed for each thruster and the angle of each joint.
func (v *Vehicle) Sample() dynamo.State {
	s := make(dynamo.State, dynamo.SampleDim, v.SampleWidth())
	p, lin, ang := v.Hull.Position, v.Hull.LinearVelocity, v.Hull.AngularVelocity
	copy(s[dynamo.PosX:], p[:])
	copy(s[dynamo.VelX:], lin[:])
	copy(s[dynamo.AngX:], ang[:])
	s[dynamo.Roll], s[dynamo.Pitch], s[dynamo.Yaw] = Attitude(v.Hull.Rotation)
	if res, ok := v.Submersion.Submerged(); ok {
		s[dynamo.Volume] = res.Volume
	}
	for _, t := range v.Thrusters {
		s = append(s, t.Thrust().Dot(t.WorldAxis()), t.Velocity())
	}
	for _, j := range v.Joints {
		s = append(s, j.Angle())
	}
	return s
}

func (v *Vehicle) SampleWidth() int {
	return dynamo.SampleDim + 2*len(v.Thrusters) + len(v.Joints)
}

// Labels names each column of Sample.
func (v *Vehicle) Labels() []string {
	labels := make([]string, 0, v.SampleWidth())
	labels = append(labels, dynamo.SampleLabels...)
	for _, t := range v.Thrusters {
		labels = append(labels, t.Name()+".thrust", t.Name()+".speed")
	}
	for _, j := range v.Joints {
		labels = append(labels, j.Name()+".angle")
	}
	return labels
}

// Commands returns the live command of every actuator, thrusters first.
func (v *Vehicle) Commands() dynamo.Control {
	u := make(dynamo.Control, 0, len(v.Thrusters)+len(v.Joints))
	for _, t := range v.Thrusters {
		u = append(u, t.Command())
	}
	for _, j := range v.Joints {
		u = append(u, j.Command())
	}
	return u
}

func (v *Vehicle) CommandLabels() []string {
	labels := make([]string, 0, len(v.Thrusters)+len(v.Joints))
	for _, t := range v.Thrusters {
		labels = append(labels, t.Name())
	}
	for _, j := range v.Joints {
		labels = append(labels, j.Name())
	}
	return labels
}

// Attitude returns roll, pitch and yaw in radians for a rotation in the
// engine frame (x right, y up, z forward). Roll is positive with the
// right side down, pitch with the nose up, yaw turning right.
func Attitude(q mgl64.Quat) (roll, pitch, yaw float64) {
	fwd := q.Rotate(mgl64.Vec3{0, 0, 1})
	right := q.Rotate(mgl64.Vec3{1, 0, 0})
	up := q.Rotate(mgl64.Vec3{0, 1, 0})
	yaw = math.Atan2(fwd.X(), fwd.Z())
	pitch = math.Atan2(fwd.Y(), math.Hypot(fwd.X(), fwd.Z()))
	roll = math.Atan2(-right.Y(), up.Y())
	return roll, pitch, yaw
}
