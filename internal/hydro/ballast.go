package hydro

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/hydrosim/internal/body"
)

// Ballast is a point weight fixed to the body, used to trim the centre of
// gravity below the centre of buoyancy.
type Ballast struct {
	Mass    float64    // kg
	Offset  mgl64.Vec3 // body frame
	Gravity float64

	body body.Body
}

func NewBallast(name string, mass float64, offset mgl64.Vec3, attach body.Attachment) (*Ballast, error) {
	b, err := body.Resolve(name, attach)
	if err != nil {
		return nil, err
	}
	return &Ballast{Mass: mass, Offset: offset, Gravity: Gravity, body: b}, nil
}

func (b *Ballast) Tick(_ float64) {
	if b.Mass == 0 {
		return
	}
	p := body.TransformPoint(b.body, b.Offset)
	b.body.AddForceAtPosition(mgl64.Vec3{0, -b.Mass * b.Gravity, 0}, p, body.Force)
}
