package hydro

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/hydrosim/internal/body"
	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/water"
)

// DragLaw gives the drag per unit area on one side of a face as
// (Linear*s + Quadratic*s^2) * |cos|^Falloff, with s the face speed over
// the reference speed and cos the angle between the flow and the normal.
type DragLaw struct {
	Linear    float64 `yaml:"linear"`
	Quadratic float64 `yaml:"quadratic"`
	Falloff   float64 `yaml:"falloff"`
}

func (l DragLaw) magnitude(speed, vRef, cos, area float64) float64 {
	s := speed / vRef
	return (l.Linear*s + l.Quadratic*s*s) * area * math.Pow(math.Abs(cos), l.Falloff)
}

func (l DragLaw) validate(side string) error {
	for _, x := range []float64{l.Linear, l.Quadratic, l.Falloff} {
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			return fmt.Errorf("%s drag law %+v: %w", side, l, dynamo.ErrInvalidConfig)
		}
	}
	return nil
}

// DragConfig sets the pressure side (faces moving into the water) and the
// suction side (faces moving away from it) separately.
type DragConfig struct {
	VRef     float64 `yaml:"v_ref"`
	Pressure DragLaw `yaml:"pressure"`
	Suction  DragLaw `yaml:"suction"`
}

// QuadraticDrag is the classic 0.5*rho*Cd*A*(v.n)^2 on the pressure side
// only.
func QuadraticDrag(cd float64) DragConfig {
	return DragConfig{
		VRef:     1,
		Pressure: DragLaw{Quadratic: 0.5 * WaterDensity * cd, Falloff: 2},
	}
}

// DefaultDragLaws is linear-dominated drag with equal suction, cos falloff.
func DefaultDragLaws() DragConfig {
	return DragConfig{
		VRef:     1,
		Pressure: DragLaw{Linear: 100, Quadratic: 30, Falloff: 1},
		Suction:  DragLaw{Linear: 100, Quadratic: 30, Falloff: 1},
	}
}

func (c DragConfig) Validate() error {
	if !(c.VRef > 0) || math.IsInf(c.VRef, 0) {
		return fmt.Errorf("drag reference speed %v: %w", c.VRef, dynamo.ErrInvalidConfig)
	}
	if err := c.Pressure.validate("pressure"); err != nil {
		return err
	}
	return c.Suction.validate("suction")
}

// PressureDrag resists motion face by face. A wetted face moving into the
// water is pushed back along its normal by the pressure law, one moving
// away is pulled back by the suction law.
type PressureDrag struct {
	DragConfig

	body   body.Body
	source water.Submersion
	force  mgl64.Vec3
}

func NewPressureDrag(name string, cfg DragConfig, attach body.Attachment, source water.Submersion) (*PressureDrag, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	b, err := body.Resolve(name, attach)
	if err != nil {
		return nil, err
	}
	return &PressureDrag{DragConfig: cfg, body: b, source: source}, nil
}

func (d *PressureDrag) Tick(_ float64) {
	d.force = mgl64.Vec3{}
	if d.source == nil {
		return
	}
	res, ok := d.source.Submerged()
	if !ok {
		return
	}

	centre := d.body.Position()
	v, w := d.body.LinearVelocity(), d.body.AngularVelocity()
	for i, area := range res.FaceAreas {
		if area <= 0 {
			continue
		}
		n := res.FaceNormals[i]
		p := res.FaceCenters[i]
		pointVel := v.Add(w.Cross(p.Sub(centre)))
		speed := pointVel.Len()
		if speed == 0 {
			continue
		}
		cos := pointVel.Dot(n) / speed
		var f mgl64.Vec3
		switch {
		case cos > 0:
			f = n.Mul(-d.Pressure.magnitude(speed, d.VRef, cos, area))
		case cos < 0:
			f = n.Mul(d.Suction.magnitude(speed, d.VRef, cos, area))
		default:
			continue
		}
		d.force = d.force.Add(f)
		d.body.AddForceAtPosition(f, p, body.Force)
	}
}

// Force is the total drag applied on the last tick.
func (d *PressureDrag) Force() mgl64.Vec3 { return d.force }
