package body

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/hydrosim/internal/physics"
)

type articulationAdapter struct {
	ab *physics.Articulation
}

// FromArticulation adapts a jointed link. Pose setters teleport the root.
func FromArticulation(ab *physics.Articulation) Body {
	return &articulationAdapter{ab: ab}
}

func (a *articulationAdapter) Name() string                { return a.ab.Name }
func (a *articulationAdapter) Position() mgl64.Vec3        { return a.ab.Position() }
func (a *articulationAdapter) SetPosition(p mgl64.Vec3)    { a.ab.TeleportTo(p) }
func (a *articulationAdapter) Rotation() mgl64.Quat        { return a.ab.Rotation() }
func (a *articulationAdapter) SetRotation(q mgl64.Quat)    { a.ab.TeleportRotation(q) }
func (a *articulationAdapter) LocalRotation() mgl64.Quat   { return a.ab.LocalRotation() }
func (a *articulationAdapter) LinearVelocity() mgl64.Vec3  { return a.ab.LinearVelocity() }
func (a *articulationAdapter) AngularVelocity() mgl64.Vec3 { return a.ab.AngularVelocity() }

func (a *articulationAdapter) RelativeAngularVelocity() mgl64.Vec3 {
	return a.ab.RelativeAngularVelocity()
}
func (a *articulationAdapter) StopJoint() { a.ab.StopJoint() }

func (a *articulationAdapter) SetLinearVelocity(v mgl64.Vec3)  { a.ab.SetLinearVelocity(v) }
func (a *articulationAdapter) SetAngularVelocity(w mgl64.Vec3) { a.ab.SetAngularVelocity(w) }

func (a *articulationAdapter) InertiaTensor() mgl64.Vec3             { return a.ab.Inertia }
func (a *articulationAdapter) SetInertiaTensor(i mgl64.Vec3)         { a.ab.Inertia = i }
func (a *articulationAdapter) InertiaTensorRotation() mgl64.Quat     { return a.ab.InertiaRotation }
func (a *articulationAdapter) SetInertiaTensorRotation(q mgl64.Quat) { a.ab.InertiaRotation = q }
func (a *articulationAdapter) AccumulatedTorque() mgl64.Vec3         { return a.ab.AccumulatedTorque() }

// Links have no linear velocity of their own to cap.
func (a *articulationAdapter) MaxLinearVelocity() float64      { return a.ab.Parent.MaxLinearVelocity }
func (a *articulationAdapter) SetMaxLinearVelocity(v float64)  { a.ab.Parent.MaxLinearVelocity = v }
func (a *articulationAdapter) MaxAngularVelocity() float64     { return a.ab.MaxAngularVelocity }
func (a *articulationAdapter) SetMaxAngularVelocity(w float64) { a.ab.MaxAngularVelocity = w }

func (a *articulationAdapter) linkMass() float64 {
	if a.ab.Mass > 0 {
		return a.ab.Mass
	}
	return a.ab.Parent.Mass
}

func (a *articulationAdapter) AddForce(f mgl64.Vec3, mode ForceMode) {
	a.AddForceAtPosition(f, a.ab.Position(), mode)
}

func (a *articulationAdapter) AddRelativeForce(f mgl64.Vec3, mode ForceMode) {
	a.AddForce(a.ab.Rotation().Rotate(f), mode)
}

func (a *articulationAdapter) AddForceAtPosition(f, p mgl64.Vec3, mode ForceMode) {
	switch mode {
	case Acceleration:
		a.ab.AddForceAtPoint(f.Mul(a.linkMass()), p)
	case Impulse:
		a.ab.Parent.AddImpulseAtPoint(f, p)
	case VelocityChange:
		a.ab.Parent.AddImpulseAtPoint(f.Mul(a.linkMass()), p)
	default:
		a.ab.AddForceAtPoint(f, p)
	}
}

func (a *articulationAdapter) AddTorque(t mgl64.Vec3, mode ForceMode) {
	inertia := a.ab.InertiaAlongAxis()
	switch mode {
	case Acceleration:
		a.ab.AddTorque(t.Mul(inertia))
	case Impulse:
		a.ab.AddAngularImpulse(t)
	case VelocityChange:
		a.ab.AddAngularImpulse(t.Mul(inertia))
	default:
		a.ab.AddTorque(t)
	}
}

func (a *articulationAdapter) AddRelativeTorque(t mgl64.Vec3, mode ForceMode) {
	a.AddTorque(a.ab.Rotation().Rotate(t), mode)
}
