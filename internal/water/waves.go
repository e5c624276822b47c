package water

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const gravity = 9.80665

// WaveComponent is one deep-water sinusoid.
type WaveComponent struct {
	Amplitude float64 // m
	Length    float64 // m
	Direction float64 // rad, heading in the x/z plane, 0 = +z
	Phase     float64 // rad
}

func (w WaveComponent) wavenumber() float64 {
	if w.Length <= 0 {
		return 0
	}
	return 2 * math.Pi / w.Length
}

// Frequency returns the angular frequency from the deep-water dispersion
// relation omega^2 = g*k.
func (w WaveComponent) Frequency() float64 {
	return math.Sqrt(gravity * w.wavenumber())
}

// Waves sums sinusoidal components on top of a mean level. Queries
// outside Extent (when positive) fail.
type Waves struct {
	Level      float64
	Current    mgl64.Vec3
	Components []WaveComponent
	Extent     float64
	time       float64
}

func NewWaves(level float64, components ...WaveComponent) *Waves {
	return &Waves{Level: level, Components: components}
}

func (w *Waves) Advance(dt float64) { w.time += dt }

func (w *Waves) Time() float64 { return w.time }

func (w *Waves) Project(p mgl64.Vec3) (Sample, bool) {
	if w.Extent > 0 && (math.Abs(p.X()) > w.Extent || math.Abs(p.Z()) > w.Extent) {
		return Sample{}, false
	}
	h := w.Level
	for _, c := range w.Components {
		k := c.wavenumber()
		if k == 0 {
			continue
		}
		along := p.X()*math.Sin(c.Direction) + p.Z()*math.Cos(c.Direction)
		h += c.Amplitude * math.Sin(k*along-c.Frequency()*w.time+c.Phase)
	}
	return Sample{Height: h, Current: w.Current}, true
}
