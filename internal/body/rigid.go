package body

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/hydrosim/internal/physics"
)

type rigidAdapter struct {
	rb *physics.RigidBody
}

// FromRigidBody adapts a free rigid body.
func FromRigidBody(rb *physics.RigidBody) Body {
	return &rigidAdapter{rb: rb}
}

func (r *rigidAdapter) Name() string                { return r.rb.Name }
func (r *rigidAdapter) Position() mgl64.Vec3        { return r.rb.Position }
func (r *rigidAdapter) SetPosition(p mgl64.Vec3)    { r.rb.Position = p }
func (r *rigidAdapter) Rotation() mgl64.Quat        { return r.rb.Rotation }
func (r *rigidAdapter) SetRotation(q mgl64.Quat)    { r.rb.Rotation = q.Normalize() }
func (r *rigidAdapter) LocalRotation() mgl64.Quat   { return r.rb.Rotation }
func (r *rigidAdapter) LinearVelocity() mgl64.Vec3  { return r.rb.LinearVelocity }
func (r *rigidAdapter) AngularVelocity() mgl64.Vec3 { return r.rb.AngularVelocity }

func (r *rigidAdapter) SetLinearVelocity(v mgl64.Vec3)  { r.rb.LinearVelocity = v }
func (r *rigidAdapter) SetAngularVelocity(w mgl64.Vec3) { r.rb.AngularVelocity = w }

func (r *rigidAdapter) InertiaTensor() mgl64.Vec3             { return r.rb.Inertia }
func (r *rigidAdapter) SetInertiaTensor(i mgl64.Vec3)         { r.rb.Inertia = i }
func (r *rigidAdapter) InertiaTensorRotation() mgl64.Quat     { return r.rb.InertiaRotation }
func (r *rigidAdapter) SetInertiaTensorRotation(q mgl64.Quat) { r.rb.InertiaRotation = q }
func (r *rigidAdapter) AccumulatedTorque() mgl64.Vec3         { return r.rb.AccumulatedTorque() }

func (r *rigidAdapter) MaxLinearVelocity() float64      { return r.rb.MaxLinearVelocity }
func (r *rigidAdapter) SetMaxLinearVelocity(v float64)  { r.rb.MaxLinearVelocity = v }
func (r *rigidAdapter) MaxAngularVelocity() float64     { return r.rb.MaxAngularVelocity }
func (r *rigidAdapter) SetMaxAngularVelocity(w float64) { r.rb.MaxAngularVelocity = w }

func (r *rigidAdapter) AddForce(f mgl64.Vec3, mode ForceMode) {
	switch mode {
	case Acceleration:
		r.rb.AddForce(f.Mul(r.rb.Mass))
	case Impulse:
		r.rb.AddImpulse(f)
	case VelocityChange:
		r.rb.AddImpulse(f.Mul(r.rb.Mass))
	default:
		r.rb.AddForce(f)
	}
}

func (r *rigidAdapter) AddRelativeForce(f mgl64.Vec3, mode ForceMode) {
	r.AddForce(r.rb.Rotation.Rotate(f), mode)
}

func (r *rigidAdapter) AddForceAtPosition(f, p mgl64.Vec3, mode ForceMode) {
	switch mode {
	case Acceleration:
		r.rb.AddForceAtPoint(f.Mul(r.rb.Mass), p)
	case Impulse:
		r.rb.AddImpulseAtPoint(f, p)
	case VelocityChange:
		r.rb.AddImpulseAtPoint(f.Mul(r.rb.Mass), p)
	default:
		r.rb.AddForceAtPoint(f, p)
	}
}

func (r *rigidAdapter) AddTorque(t mgl64.Vec3, mode ForceMode) {
	switch mode {
	case Acceleration:
		r.rb.AddTorque(r.rb.WorldInertia().Mul3x1(t))
	case Impulse:
		r.rb.AddAngularImpulse(t)
	case VelocityChange:
		r.rb.AddAngularImpulse(r.rb.WorldInertia().Mul3x1(t))
	default:
		r.rb.AddTorque(t)
	}
}

func (r *rigidAdapter) AddRelativeTorque(t mgl64.Vec3, mode ForceMode) {
	r.AddTorque(r.rb.Rotation.Rotate(t), mode)
}
