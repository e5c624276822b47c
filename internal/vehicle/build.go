package vehicle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/san-kum/hydrosim/internal/actuator"
	"github.com/san-kum/hydrosim/internal/body"
	"github.com/san-kum/hydrosim/internal/config"
	"github.com/san-kum/hydrosim/internal/control"
	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/hydro"
	"github.com/san-kum/hydrosim/internal/logging"
	"github.com/san-kum/hydrosim/internal/physics"
	"github.com/san-kum/hydrosim/internal/sim"
	"github.com/san-kum/hydrosim/internal/water"
)

// Build creates an uninitialized vehicle from a scenario. Thrusters named
// fl, fr, rl and rr are wired to an OmniX mixer.
func Build(cfg *config.Config, log zerolog.Logger) (*Vehicle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	vc := cfg.Vehicle
	log = log.With().Str("vehicle", cfg.Name).Logger()
	tickLog := logging.Sampled(log, 100)

	world := physics.NewWorld(physics.DefaultGravity())
	hull := world.AddBody(physics.NewRigidBody("hull", vc.Mass, vc.Inertia.Vec()))
	hull.Position = vc.Position.Vec()
	hull.Rotation = vc.Rotation.Quat()
	hull.LinearVelocity = vc.Velocity.Vec()
	hull.AngularVelocity = vc.AngularVelocity.Vec()

	v := &Vehicle{
		Name:    cfg.Name,
		World:   world,
		Hull:    hull,
		Surface: NewSurface(cfg.Water),
		hull:    body.FromRigidBody(hull),
		log:     log,
		motors:  make(map[string]*actuator.Motor),
	}
	root := body.Attachment{Rigid: hull}

	v.Submersion = water.NewVoxelHull(v.hull, v.Surface, vc.Hull.Size.Vec(), vc.Hull.Offset.Vec(), vc.Hull.Resolution, tickLog)

	for _, tc := range vc.Thrusters {
		link, err := newLink(world, hull, tc.ActuatorConfig)
		if err != nil {
			return nil, err
		}
		thrusterCfg, err := tc.ThrusterConfig()
		if err != nil {
			return nil, err
		}
		t, err := actuator.NewThruster(tc.Name, thrusterCfg, body.Attachment{Articulation: link}, root, v.Surface, tickLog)
		if err != nil {
			return nil, err
		}
		t.SetCommand(tc.Command)
		if tc.Override != nil {
			t.SetSource(control.DebugOverride(*tc.Override))
		}
		v.Thrusters = append(v.Thrusters, t)
		v.motors[tc.Name] = t.Motor
		v.contributors = append(v.contributors, t)
	}

	for _, jc := range vc.Joints {
		link, err := newLink(world, hull, jc)
		if err != nil {
			return nil, err
		}
		motorCfg, err := jc.MotorConfig()
		if err != nil {
			return nil, err
		}
		m, err := actuator.NewMotor(jc.Name, motorCfg, body.Attachment{Articulation: link}, tickLog)
		if err != nil {
			return nil, err
		}
		m.SetCommand(jc.Command)
		if jc.Override != nil {
			m.SetSource(control.DebugOverride(*jc.Override))
		}
		v.Joints = append(v.Joints, m)
		v.motors[jc.Name] = m
		v.contributors = append(v.contributors, m)
	}

	fossen, err := hydro.NewFossen("fossen", vc.Hydro, vc.Features, root, tickLog)
	if err != nil {
		return nil, err
	}
	fossen.SetSurface(v.Surface)
	v.Fossen = fossen
	v.contributors = append(v.contributors, fossen)

	if vc.Buoyancy {
		b, err := hydro.NewBuoyancy("buoyancy", root, v.Submersion, tickLog)
		if err != nil {
			return nil, err
		}
		v.Buoyancy = b
		v.contributors = append(v.contributors, b)
	}

	if laws, ok := vc.Drag(); ok {
		d, err := hydro.NewPressureDrag("drag", laws, root, v.Submersion)
		if err != nil {
			return nil, err
		}
		v.Drag = d
		v.contributors = append(v.contributors, d)
	}

	if vc.Viscous > 0 {
		f, err := hydro.NewViscousResistance("friction", vc.Hull.Size[2], root, v.Submersion)
		if err != nil {
			return nil, err
		}
		f.Scale = vc.Viscous
		v.Friction = f
		v.contributors = append(v.contributors, f)
	}

	for i, bc := range vc.Ballast {
		b, err := hydro.NewBallast(fmt.Sprintf("ballast%d", i), bc.Mass, bc.Offset.Vec(), root)
		if err != nil {
			return nil, err
		}
		v.Ballast = append(v.Ballast, b)
		v.contributors = append(v.contributors, b)
	}

	v.Mixer = omnix(v.Thrusters)
	return v, nil
}

// NewSimulator builds the vehicle for a scenario and a simulator that
// drives it with the scenario's command schedule.
func NewSimulator(cfg *config.Config, log zerolog.Logger) (*sim.Simulator, *Vehicle, error) {
	v, err := Build(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	s := sim.New(v)
	s.SetLogger(log)
	cmds := make([]sim.Command, len(cfg.Schedule))
	for i, c := range cfg.Schedule {
		cmds[i] = sim.Command{At: c.At, Target: c.Target, Value: c.Value}
	}
	s.SetSchedule(cmds)
	return s, v, nil
}

// NewSurface returns flat water unless wave components are configured.
func NewSurface(wc config.WaterConfig) water.Surface {
	if len(wc.Waves) == 0 {
		return water.Flat{Level: wc.Level, Current: wc.Current.Vec()}
	}
	comps := make([]water.WaveComponent, len(wc.Waves))
	for i, w := range wc.Waves {
		comps[i] = water.WaveComponent{
			Amplitude: w.Amplitude,
			Length:    w.Length,
			Direction: mgl64.DegToRad(w.Direction),
			Phase:     w.Phase,
		}
	}
	waves := water.NewWaves(wc.Level, comps...)
	waves.Current = wc.Current.Vec()
	waves.Extent = wc.Extent
	return waves
}

func newLink(world *physics.World, hull *physics.RigidBody, ac config.ActuatorConfig) (*physics.Articulation, error) {
	axis, err := actuator.ParseAxis(ac.Axis)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ac.Name, err)
	}
	link := physics.NewArticulation(ac.Name, hull, ac.Anchor.Vec(), axis.Unit())
	link.BaseRotation = ac.Rotation.Quat()
	if ac.Inertia != (config.Vec3{}) {
		link.Inertia = ac.Inertia.Vec()
	}
	link.JointDamping = ac.JointDamping
	if link.Inertia.Dot(axis.Unit()) <= 0 {
		return nil, fmt.Errorf("%s: link inertia %v: %w", ac.Name, link.Inertia, dynamo.ErrInvalidConfig)
	}
	return world.AddArticulation(link), nil
}

func omnix(thrusters []*actuator.Thruster) *actuator.OmniX {
	byName := make(map[string]*actuator.Thruster, len(thrusters))
	for _, t := range thrusters {
		byName[t.Name()] = t
	}
	o := &actuator.OmniX{
		FrontLeft:  byName["fl"],
		FrontRight: byName["fr"],
		RearLeft:   byName["rl"],
		RearRight:  byName["rr"],
	}
	for _, t := range o.Thrusters() {
		if t == nil {
			return nil
		}
	}
	return o
}
