package hydro

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/hydrosim/internal/body"
	"github.com/san-kum/hydrosim/internal/water"
)

// Below this the ITTC line blows up at Re=100; friction is held at its
// value here instead.
const minReynolds = 1e4

// ReynoldsNumber for a hull of the given length. Viscosity is dynamic, in
// Pa*s.
func ReynoldsNumber(density, speed, length, viscosity float64) float64 {
	if viscosity <= 0 || length <= 0 {
		return 0
	}
	return density * math.Abs(speed) * length / viscosity
}

// FrictionCoefficient is the ITTC 1957 correlation line
// 0.075 / (log10(Re) - 2)^2.
func FrictionCoefficient(re float64) float64 {
	if re <= 0 {
		return 0
	}
	d := math.Log10(math.Max(re, minReynolds)) - 2
	return 0.075 / (d * d)
}

// ViscousResistance is skin friction on the wetted faces. Each face is
// dragged against its tangential flow by 0.5*rho*Cf*A*|v|^2, with Cf from
// the hull Reynolds number.
type ViscousResistance struct {
	Scale     float64
	Length    float64
	Density   float64
	Viscosity float64

	body   body.Body
	source water.Submersion
	force  mgl64.Vec3
	cf     float64
}

func NewViscousResistance(name string, length float64, attach body.Attachment, source water.Submersion) (*ViscousResistance, error) {
	b, err := body.Resolve(name, attach)
	if err != nil {
		return nil, err
	}
	return &ViscousResistance{
		Scale:     1,
		Length:    length,
		Density:   WaterDensity,
		Viscosity: WaterViscosity * 1e-3,
		body:      b,
		source:    source,
	}, nil
}

func (r *ViscousResistance) Tick(_ float64) {
	r.force = mgl64.Vec3{}
	r.cf = 0
	if r.source == nil || r.Scale == 0 {
		return
	}
	res, ok := r.source.Submerged()
	if !ok {
		return
	}

	centre := r.body.Position()
	v, w := r.body.LinearVelocity(), r.body.AngularVelocity()
	r.cf = FrictionCoefficient(ReynoldsNumber(r.Density, v.Len(), r.Length, r.Viscosity))
	if r.cf == 0 {
		return
	}
	for i, area := range res.FaceAreas {
		if area <= 0 {
			continue
		}
		n := res.FaceNormals[i]
		p := res.FaceCenters[i]
		pointVel := v.Add(w.Cross(p.Sub(centre)))
		tan := pointVel.Sub(n.Mul(pointVel.Dot(n)))
		tl := tan.Len()
		if tl < 1e-12 {
			continue
		}
		speed := pointVel.Len()
		f := tan.Mul(-0.5 * r.Density * r.cf * area * speed * speed * r.Scale / tl)
		r.force = r.force.Add(f)
		r.body.AddForceAtPosition(f, p, body.Force)
	}
}

// Force is the total friction applied on the last tick.
func (r *ViscousResistance) Force() mgl64.Vec3 { return r.force }

// Coefficient is the friction coefficient used on the last tick.
func (r *ViscousResistance) Coefficient() float64 { return r.cf }
