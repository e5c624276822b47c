package config

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/hydrosim/internal/actuator"
	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/hydro"
)

const (
	DefaultDt         = 0.02
	DefaultDuration   = 20.0
	DefaultMass       = 60.0
	DefaultResolution = 6
)

// Vec3 is written as a flow sequence, e.g. [0, -0.1, 0.4].
type Vec3 [3]float64

func (v Vec3) Vec() mgl64.Vec3 { return mgl64.Vec3(v) }

// Quat reads v as XYZ Euler angles in degrees.
func (v Vec3) Quat() mgl64.Quat {
	return mgl64.AnglesToQuat(mgl64.DegToRad(v[0]), mgl64.DegToRad(v[1]), mgl64.DegToRad(v[2]), mgl64.XYZ)
}

type Config struct {
	Name     string        `yaml:"name"`
	Dt       float64       `yaml:"dt"`
	Duration float64       `yaml:"duration"`
	Water    WaterConfig   `yaml:"water"`
	Vehicle  VehicleConfig `yaml:"vehicle"`
	Schedule []CommandStep `yaml:"schedule,omitempty"`
}

type WaterConfig struct {
	Level   float64      `yaml:"level"`
	Current Vec3         `yaml:"current"`
	Extent  float64      `yaml:"extent,omitempty"`
	Waves   []WaveConfig `yaml:"waves,omitempty"`
}

type WaveConfig struct {
	Amplitude float64 `yaml:"amplitude"`
	Length    float64 `yaml:"length"`
	Direction float64 `yaml:"direction_deg"`
	Phase     float64 `yaml:"phase"`
}

type HullConfig struct {
	Size       Vec3 `yaml:"size"`
	Offset     Vec3 `yaml:"offset"`
	Resolution int  `yaml:"resolution"`
}

type BallastConfig struct {
	Mass   float64 `yaml:"mass"`
	Offset Vec3    `yaml:"offset"`
}

type VehicleConfig struct {
	Mass            float64            `yaml:"mass"`
	Inertia         Vec3               `yaml:"inertia"`
	Position        Vec3               `yaml:"position"`
	Rotation        Vec3               `yaml:"rotation_deg"`
	Velocity        Vec3               `yaml:"velocity"`
	AngularVelocity Vec3               `yaml:"angular_velocity"`
	Hull            HullConfig         `yaml:"hull"`
	Buoyancy        bool               `yaml:"buoyancy"`
	Hydro           hydro.Coefficients `yaml:"hydro"`
	Features        hydro.Features     `yaml:"features"`
	PressureDrag    float64            `yaml:"pressure_drag,omitempty"`
	DragLaws        *hydro.DragConfig  `yaml:"drag_laws,omitempty"`
	Viscous         float64            `yaml:"viscous_resistance,omitempty"`
	Ballast         []BallastConfig    `yaml:"ballast,omitempty"`
	Thrusters       []ThrusterConfig   `yaml:"thrusters,omitempty"`
	Joints          []ActuatorConfig   `yaml:"joints,omitempty"`
}

// ActuatorConfig describes a motor on its own revolute link.
type ActuatorConfig struct {
	Name               string             `yaml:"name"`
	Anchor             Vec3               `yaml:"anchor"`
	Rotation           Vec3               `yaml:"rotation_deg"`
	Axis               string             `yaml:"axis"`
	Mode               string             `yaml:"mode"`
	MaxTorque          float64            `yaml:"max_torque"`
	MaxAngularVelocity float64            `yaml:"max_angular_velocity"`
	Responsiveness     float64            `yaml:"responsiveness"`
	PID                *actuator.PIDGains `yaml:"pid,omitempty"`
	MinAngle           *float64           `yaml:"min_angle,omitempty"`
	MaxAngle           *float64           `yaml:"max_angle,omitempty"`
	Inertia            Vec3               `yaml:"inertia"`
	JointDamping       float64            `yaml:"joint_damping,omitempty"`
	Command            float64            `yaml:"command,omitempty"`
	Override           *float64           `yaml:"override,omitempty"`
}

type ThrusterConfig struct {
	ActuatorConfig `yaml:",inline"`
	ThrustK        float64 `yaml:"thrust_k"`
	BackK          float64 `yaml:"back_k"`
	Height         float64 `yaml:"height"`
}

// CommandStep sets a command at a point in simulated time. Targets are
// actuator names or motion.forward, motion.strafe and motion.yaw.
type CommandStep struct {
	At     float64 `yaml:"at"`
	Target string  `yaml:"target"`
	Value  float64 `yaml:"value"`
}

// Drag picks the pressure drag to build: explicit laws win over a plain
// drag coefficient. False means no drag.
func (v VehicleConfig) Drag() (hydro.DragConfig, bool) {
	if v.DragLaws != nil {
		return *v.DragLaws, true
	}
	if v.PressureDrag > 0 {
		return hydro.QuadraticDrag(v.PressureDrag), true
	}
	return hydro.DragConfig{}, false
}

// MotorConfig converts the actuator entry. Missing angle limits are open.
func (a ActuatorConfig) MotorConfig() (actuator.MotorConfig, error) {
	mode, err := actuator.ParseControlMode(a.Mode)
	if err != nil {
		return actuator.MotorConfig{}, fmt.Errorf("%s: %w", a.Name, err)
	}
	axis, err := actuator.ParseAxis(a.Axis)
	if err != nil {
		return actuator.MotorConfig{}, fmt.Errorf("%s: %w", a.Name, err)
	}
	cfg := actuator.MotorConfig{
		Mode:               mode,
		Axis:               axis,
		MaxTorque:          a.MaxTorque,
		MaxAngularVelocity: a.MaxAngularVelocity,
		Responsiveness:     a.Responsiveness,
		PID:                a.PID,
		MinAngle:           math.Inf(-1),
		MaxAngle:           math.Inf(1),
	}
	if a.MinAngle != nil {
		cfg.MinAngle = *a.MinAngle
	}
	if a.MaxAngle != nil {
		cfg.MaxAngle = *a.MaxAngle
	}
	return cfg, nil
}

func (t ThrusterConfig) ThrusterConfig() (actuator.ThrusterConfig, error) {
	motor, err := t.MotorConfig()
	if err != nil {
		return actuator.ThrusterConfig{}, err
	}
	return actuator.ThrusterConfig{
		Motor:   motor,
		ThrustK: t.ThrustK,
		BackK:   t.BackK,
		Height:  t.Height,
	}, nil
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "default",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Vehicle:  DefaultVehicle(),
	}
}

// DefaultVehicle is a small box ROV with four vectored thrusters in an X
// and a pan joint for a camera.
func DefaultVehicle() VehicleConfig {
	pan := 1.5
	return VehicleConfig{
		Mass:    DefaultMass,
		Inertia: Vec3{3.65, 5, 2.25},
		Hull: HullConfig{
			Size:       Vec3{0.6, 0.3, 0.8},
			Resolution: DefaultResolution,
		},
		Buoyancy: true,
		Hydro:    hydro.DefaultCoefficients(),
		Features: hydro.AllFeatures(),
		Ballast:  []BallastConfig{{Mass: 5, Offset: Vec3{0, -0.2, 0}}},
		Thrusters: []ThrusterConfig{
			defaultThruster("fl", Vec3{-0.3, -0.12, 0.4}, 135),
			defaultThruster("fr", Vec3{0.3, -0.12, 0.4}, -135),
			defaultThruster("rl", Vec3{-0.3, -0.12, -0.4}, -45),
			defaultThruster("rr", Vec3{0.3, -0.12, -0.4}, 45),
		},
		Joints: []ActuatorConfig{{
			Name:               "camera",
			Anchor:             Vec3{0, 0.1, 0.35},
			Axis:               "y",
			Mode:               "position",
			MaxTorque:          0.5,
			MaxAngularVelocity: 2,
			Responsiveness:     1,
			PID:                &actuator.PIDGains{Kp: 4, Ki: 0.2, Kd: 0.1, Bound: 0.5},
			MinAngle:           ptr(-pan),
			MaxAngle:           ptr(pan),
			Inertia:            Vec3{0.01, 0.01, 0.01},
		}},
	}
}

func defaultThruster(name string, anchor Vec3, yawDeg float64) ThrusterConfig {
	return ThrusterConfig{
		ActuatorConfig: ActuatorConfig{
			Name:               name,
			Anchor:             anchor,
			Rotation:           Vec3{0, yawDeg, 0},
			Axis:               "z",
			Mode:               "velocity",
			MaxTorque:          0.5,
			MaxAngularVelocity: 30,
			Responsiveness:     1,
			Inertia:            Vec3{0.002, 0.002, 0.002},
		},
		ThrustK: 0.02,
		BackK:   0.8,
		Height:  0.08,
	}
}

func ptr(v float64) *float64 { return &v }

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything a vehicle build would otherwise fail on
// halfway through.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", c.Dt, dynamo.ErrInvalidConfig)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f: %w", c.Duration, dynamo.ErrInvalidConfig)
	}
	v := c.Vehicle
	if v.Mass <= 0 {
		return fmt.Errorf("vehicle mass must be positive, got %f: %w", v.Mass, dynamo.ErrInvalidConfig)
	}
	for i, s := range v.Hull.Size {
		if s <= 0 {
			return fmt.Errorf("hull size[%d] must be positive, got %f: %w", i, s, dynamo.ErrInvalidConfig)
		}
	}
	if err := v.Hydro.Validate(); err != nil {
		return err
	}
	if laws, ok := v.Drag(); ok {
		if err := laws.Validate(); err != nil {
			return err
		}
	}
	if v.Viscous < 0 {
		return fmt.Errorf("viscous resistance scale must not be negative, got %f: %w", v.Viscous, dynamo.ErrInvalidConfig)
	}

	names := make(map[string]bool)
	check := func(a ActuatorConfig) error {
		if a.Name == "" {
			return fmt.Errorf("actuator without a name: %w", dynamo.ErrInvalidConfig)
		}
		if names[a.Name] {
			return fmt.Errorf("duplicate actuator %q: %w", a.Name, dynamo.ErrInvalidConfig)
		}
		names[a.Name] = true
		m, err := a.MotorConfig()
		if err != nil {
			return err
		}
		m, _ = m.Normalize()
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%s: %w", a.Name, err)
		}
		return nil
	}
	for _, t := range v.Thrusters {
		if err := check(t.ActuatorConfig); err != nil {
			return err
		}
	}
	for _, j := range v.Joints {
		if err := check(j); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		ValidateState: true,
	}
}
