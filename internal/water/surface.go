// Package water provides water surface queries and hull submersion.
//
// A [Surface] answers "where is the water at this point" and may fail;
// [HeightAt] and [CurrentAt] apply the fallbacks every caller uses. A
// [Submersion] source publishes one [SubmersionResult] per tick that all
// force contributors read.
package water

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// Sample is the water state projected onto a world point.
type Sample struct {
	Height  float64
	Current mgl64.Vec3
}

// Surface is the water height and current service. ok is false when the
// point cannot be projected onto the surface.
type Surface interface {
	Project(p mgl64.Vec3) (s Sample, ok bool)
}

// Advancer is implemented by surfaces that move over time.
type Advancer interface {
	Advance(dt float64)
}

// HeightAt returns the water height above p, or p's own height when the
// query fails, which reads as "at the surface".
func HeightAt(s Surface, p mgl64.Vec3, log zerolog.Logger) float64 {
	if s == nil {
		return p.Y()
	}
	sample, ok := s.Project(p)
	if !ok || math.IsNaN(sample.Height) || math.IsInf(sample.Height, 0) {
		log.Warn().Floats64("point", p[:]).Msg("water height query failed, using point height")
		return p.Y()
	}
	return sample.Height
}

// CurrentAt returns the unit current direction scaled by its speed at p,
// or zero when the query fails.
func CurrentAt(s Surface, p mgl64.Vec3, log zerolog.Logger) mgl64.Vec3 {
	if s == nil {
		return mgl64.Vec3{}
	}
	sample, ok := s.Project(p)
	if !ok {
		log.Warn().Floats64("point", p[:]).Msg("water current query failed, assuming still water")
		return mgl64.Vec3{}
	}
	for _, c := range sample.Current {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return mgl64.Vec3{}
		}
	}
	return sample.Current
}

// Flat is calm water at a fixed level with a uniform current.
type Flat struct {
	Level   float64
	Current mgl64.Vec3
}

func (f Flat) Project(_ mgl64.Vec3) (Sample, bool) {
	return Sample{Height: f.Level, Current: f.Current}, true
}
