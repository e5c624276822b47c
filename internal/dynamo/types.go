package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Speed returns the magnitude of the linear velocity block of a sample row.
func (s State) Speed() float64 {
	if len(s) < SampleDim {
		return 0
	}
	return math.Sqrt(s[VelX]*s[VelX] + s[VelY]*s[VelY] + s[VelZ]*s[VelZ])
}

// Layout of the fixed part of a vehicle sample row. Per-actuator values
// follow from SampleDim onwards.
const (
	PosX = iota
	PosY
	PosZ
	VelX
	VelY
	VelZ
	AngX
	AngY
	AngZ
	Roll
	Pitch
	Yaw
	Volume
	SampleDim
)

// SampleLabels names the fixed columns of a sample row.
var SampleLabels = []string{
	"x", "y", "z",
	"vx", "vy", "vz",
	"wx", "wy", "wz",
	"roll", "pitch", "yaw",
	"volume",
}

type Control []float64

// Contributor adds its force or torque to a body once per fixed tick.
// Contributors read body state as of the start of the tick and must not
// depend on each other's output within the same tick.
type Contributor interface {
	Tick(dt float64)
}

type Initializer interface {
	Initialize() error
}

// Plant is a steppable system that can be sampled for telemetry.
type Plant interface {
	Tick(dt float64)
	Sample() State
	Commands() Control
}

// Commandable routes a named scalar command to an actuator.
type Commandable interface {
	SetCommand(target string, value float64) error
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.02,
		Duration:      10.0,
		ValidateState: true,
	}
}

type Result struct {
	States     []State
	Controls   []Control
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
