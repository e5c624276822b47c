package hydro

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/san-kum/hydrosim/internal/body"
	"github.com/san-kum/hydrosim/internal/water"
)

// BuoyantForce is the hydrostatic lift for a displaced volume.
func BuoyantForce(density, gravity, volume float64) float64 {
	if volume <= 0 {
		return 0
	}
	return density * gravity * volume
}

// Buoyancy pushes the body straight up by the weight of displaced water,
// at the centroid of the submerged volume. It keeps no state between
// ticks.
type Buoyancy struct {
	Enabled bool
	Density float64
	Gravity float64

	name   string
	body   body.Body
	source water.Submersion
	log    zerolog.Logger

	force mgl64.Vec3
	point mgl64.Vec3
}

func NewBuoyancy(name string, attach body.Attachment, source water.Submersion, log zerolog.Logger) (*Buoyancy, error) {
	b, err := body.Resolve(name, attach)
	if err != nil {
		return nil, err
	}
	return &Buoyancy{
		Enabled: true,
		Density: WaterDensity,
		Gravity: Gravity,
		name:    name,
		body:    b,
		source:  source,
		log:     log.With().Str("component", name).Logger(),
	}, nil
}

func (b *Buoyancy) Tick(_ float64) {
	b.force, b.point = mgl64.Vec3{}, mgl64.Vec3{}
	if !b.Enabled || b.source == nil {
		return
	}
	res, ok := b.source.Submerged()
	if !ok {
		return
	}
	lift := BuoyantForce(b.Density, b.Gravity, res.Volume)
	if lift == 0 {
		return
	}
	b.force = mgl64.Vec3{0, lift, 0}
	b.point = res.Centroid
	b.body.AddForceAtPosition(b.force, b.point, body.Force)
}

// Force is the lift applied on the last tick.
func (b *Buoyancy) Force() mgl64.Vec3 { return b.force }

// Point is where the last lift was applied, zero if there was none.
func (b *Buoyancy) Point() mgl64.Vec3 { return b.point }
