package config

import (
	"fmt"
	"strings"

	"github.com/san-kum/hydrosim/internal/actuator"
	"github.com/san-kum/hydrosim/internal/dynamo"
)

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Water.Waves = append([]WaveConfig(nil), c.Water.Waves...)
	out.Schedule = append([]CommandStep(nil), c.Schedule...)
	out.Vehicle.Ballast = append([]BallastConfig(nil), c.Vehicle.Ballast...)
	if c.Vehicle.DragLaws != nil {
		laws := *c.Vehicle.DragLaws
		out.Vehicle.DragLaws = &laws
	}

	out.Vehicle.Thrusters = make([]ThrusterConfig, len(c.Vehicle.Thrusters))
	for i, t := range c.Vehicle.Thrusters {
		t.ActuatorConfig = t.ActuatorConfig.clone()
		out.Vehicle.Thrusters[i] = t
	}
	out.Vehicle.Joints = make([]ActuatorConfig, len(c.Vehicle.Joints))
	for i, j := range c.Vehicle.Joints {
		out.Vehicle.Joints[i] = j.clone()
	}
	return &out
}

func (a ActuatorConfig) clone() ActuatorConfig {
	if a.PID != nil {
		pid := *a.PID
		a.PID = &pid
	}
	a.MinAngle = clonePtr(a.MinAngle)
	a.MaxAngle = clonePtr(a.MaxAngle)
	a.Override = clonePtr(a.Override)
	return a
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// GetParams lists every tunable scalar of the scenario. Actuator values are
// keyed "<name>.<field>".
func (c *Config) GetParams() map[string]float64 {
	p := map[string]float64{
		"dt":              c.Dt,
		"duration":        c.Duration,
		"mass":            c.Vehicle.Mass,
		"pressure_drag":   c.Vehicle.PressureDrag,
		"viscous":         c.Vehicle.Viscous,
		"water.level":     c.Water.Level,
		"water.current.x": c.Water.Current[0],
		"water.current.y": c.Water.Current[1],
		"water.current.z": c.Water.Current[2],
	}
	if len(c.Vehicle.Ballast) > 0 {
		p["ballast.mass"] = c.Vehicle.Ballast[0].Mass
	}
	for _, t := range c.Vehicle.Thrusters {
		actuatorParams(p, t.ActuatorConfig)
		p[t.Name+".thrust_k"] = t.ThrustK
		p[t.Name+".back_k"] = t.BackK
	}
	for _, j := range c.Vehicle.Joints {
		actuatorParams(p, j)
	}
	return p
}

func actuatorParams(p map[string]float64, a ActuatorConfig) {
	p[a.Name+".max_torque"] = a.MaxTorque
	p[a.Name+".max_angular_velocity"] = a.MaxAngularVelocity
	p[a.Name+".responsiveness"] = a.Responsiveness
	p[a.Name+".command"] = a.Command
	if a.PID != nil {
		p[a.Name+".kp"] = a.PID.Kp
		p[a.Name+".ki"] = a.PID.Ki
		p[a.Name+".kd"] = a.PID.Kd
		p[a.Name+".bound"] = a.PID.Bound
	}
}

// SetParam sets one value named as in GetParams. Gains may be set on an
// actuator without a PID block; one is created with zero gains.
func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "dt":
		c.Dt = value
	case "duration":
		c.Duration = value
	case "mass":
		c.Vehicle.Mass = value
	case "pressure_drag":
		c.Vehicle.PressureDrag = value
	case "viscous":
		c.Vehicle.Viscous = value
	case "water.level":
		c.Water.Level = value
	case "water.current.x":
		c.Water.Current[0] = value
	case "water.current.y":
		c.Water.Current[1] = value
	case "water.current.z":
		c.Water.Current[2] = value
	case "ballast.mass":
		if len(c.Vehicle.Ballast) == 0 {
			c.Vehicle.Ballast = append(c.Vehicle.Ballast, BallastConfig{})
		}
		c.Vehicle.Ballast[0].Mass = value
	default:
		return c.setActuatorParam(name, value)
	}
	return nil
}

func (c *Config) setActuatorParam(name string, value float64) error {
	owner, field, ok := strings.Cut(name, ".")
	if !ok {
		return fmt.Errorf("param %s: %w", name, dynamo.ErrUnknownTarget)
	}
	for i := range c.Vehicle.Thrusters {
		t := &c.Vehicle.Thrusters[i]
		if t.Name != owner {
			continue
		}
		switch field {
		case "thrust_k":
			t.ThrustK = value
			return nil
		case "back_k":
			t.BackK = value
			return nil
		}
		return setActuatorField(&t.ActuatorConfig, name, field, value)
	}
	for i := range c.Vehicle.Joints {
		if c.Vehicle.Joints[i].Name == owner {
			return setActuatorField(&c.Vehicle.Joints[i], name, field, value)
		}
	}
	return fmt.Errorf("param %s: %w", name, dynamo.ErrUnknownTarget)
}

func setActuatorField(a *ActuatorConfig, name, field string, value float64) error {
	gains := func() *actuator.PIDGains {
		if a.PID == nil {
			a.PID = &actuator.PIDGains{}
		}
		return a.PID
	}
	switch field {
	case "max_torque":
		a.MaxTorque = value
	case "max_angular_velocity":
		a.MaxAngularVelocity = value
	case "responsiveness":
		a.Responsiveness = value
	case "command":
		a.Command = value
	case "kp":
		gains().Kp = value
	case "ki":
		gains().Ki = value
	case "kd":
		gains().Kd = value
	case "bound":
		gains().Bound = value
	default:
		return fmt.Errorf("param %s: %w", name, dynamo.ErrUnknownTarget)
	}
	return nil
}

var _ dynamo.Configurable = (*Config)(nil)
