package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Articulation is a link attached to a parent body by a single revolute
// joint. The link only rotates about Axis (link frame); linear motion
// and off-axis torques are carried by the parent.
type Articulation struct {
	Name            string
	Parent          *RigidBody
	Anchor          mgl64.Vec3 // joint position in the parent frame
	BaseRotation    mgl64.Quat // link rotation relative to the parent at zero angle
	Axis            mgl64.Vec3 // joint axis in the link frame
	Mass            float64
	Inertia         mgl64.Vec3
	InertiaRotation mgl64.Quat

	Angle              float64
	AngularSpeed       float64
	MaxAngularVelocity float64
	JointDamping       float64

	jointTorque  float64
	jointImpulse float64
}

func NewArticulation(name string, parent *RigidBody, anchor, axis mgl64.Vec3) *Articulation {
	if axis.Len() == 0 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	return &Articulation{
		Name:               name,
		Parent:             parent,
		Anchor:             anchor,
		BaseRotation:       mgl64.QuatIdent(),
		Axis:               axis.Normalize(),
		Inertia:            mgl64.Vec3{1e-3, 1e-3, 1e-3},
		InertiaRotation:    mgl64.QuatIdent(),
		MaxAngularVelocity: DefaultMaxAngularVelocity,
	}
}

// LocalRotation is the link rotation relative to its parent.
func (a *Articulation) LocalRotation() mgl64.Quat {
	return a.BaseRotation.Mul(mgl64.QuatRotate(a.Angle, a.Axis)).Normalize()
}

func (a *Articulation) Position() mgl64.Vec3 {
	return a.Parent.Position.Add(a.Parent.Rotation.Rotate(a.Anchor))
}

func (a *Articulation) Rotation() mgl64.Quat {
	return a.Parent.Rotation.Mul(a.LocalRotation()).Normalize()
}

// WorldAxis is the joint axis in world space.
func (a *Articulation) WorldAxis() mgl64.Vec3 {
	return a.Rotation().Rotate(a.Axis)
}

func (a *Articulation) LinearVelocity() mgl64.Vec3 {
	r := a.Position().Sub(a.Parent.Position)
	return a.Parent.LinearVelocity.Add(a.Parent.AngularVelocity.Cross(r))
}

func (a *Articulation) AngularVelocity() mgl64.Vec3 {
	return a.Parent.AngularVelocity.Add(a.WorldAxis().Mul(a.AngularSpeed))
}

// RelativeAngularVelocity is the link's angular velocity relative to its
// parent, in world space.
func (a *Articulation) RelativeAngularVelocity() mgl64.Vec3 {
	return a.WorldAxis().Mul(a.AngularSpeed)
}

// StopJoint zeroes the joint speed, leaving the link turning with its
// parent.
func (a *Articulation) StopJoint() { a.AngularSpeed = 0 }

// SetAngularVelocity sets the joint speed from a world angular velocity.
// Only the component along the joint axis, relative to the parent, is kept.
func (a *Articulation) SetAngularVelocity(w mgl64.Vec3) {
	a.AngularSpeed = w.Sub(a.Parent.AngularVelocity).Dot(a.WorldAxis())
}

// SetLinearVelocity moves the parent so that the link point has velocity v.
func (a *Articulation) SetLinearVelocity(v mgl64.Vec3) {
	r := a.Position().Sub(a.Parent.Position)
	a.Parent.LinearVelocity = v.Sub(a.Parent.AngularVelocity.Cross(r))
}

// TeleportTo moves the parent so the link ends up at p.
func (a *Articulation) TeleportTo(p mgl64.Vec3) {
	a.Parent.Position = p.Sub(a.Parent.Rotation.Rotate(a.Anchor))
}

// TeleportRotation rotates the parent so the link ends up at q.
func (a *Articulation) TeleportRotation(q mgl64.Quat) {
	a.Parent.Rotation = q.Mul(a.LocalRotation().Conjugate()).Normalize()
}

// InertiaAlongAxis is the moment of inertia about the joint axis.
func (a *Articulation) InertiaAlongAxis() float64 {
	ax := a.Axis
	scaled := mgl64.Vec3{a.Inertia[0] * ax[0], a.Inertia[1] * ax[1], a.Inertia[2] * ax[2]}
	return ax.Dot(a.InertiaRotation.Rotate(scaled))
}

// AddForceAtPoint passes the force to the parent and drives the joint with
// the axial part of its moment about the link origin.
func (a *Articulation) AddForceAtPoint(f, p mgl64.Vec3) {
	a.Parent.AddForceAtPoint(f, p)
	a.jointTorque += p.Sub(a.Position()).Cross(f).Dot(a.WorldAxis())
}

func (a *Articulation) AddForce(f mgl64.Vec3) {
	a.Parent.AddForceAtPoint(f, a.Position())
}

// AddTorque drives the joint with the axial component and hands the rest
// to the parent.
func (a *Articulation) AddTorque(t mgl64.Vec3) {
	axis := a.WorldAxis()
	axial := t.Dot(axis)
	a.jointTorque += axial
	a.Parent.AddTorque(t.Sub(axis.Mul(axial)))
}

func (a *Articulation) AddImpulse(j mgl64.Vec3) {
	a.Parent.AddImpulseAtPoint(j, a.Position())
}

func (a *Articulation) AddAngularImpulse(j mgl64.Vec3) {
	axis := a.WorldAxis()
	axial := j.Dot(axis)
	a.jointImpulse += axial
	a.Parent.AddAngularImpulse(j.Sub(axis.Mul(axial)))
}

// AccumulatedTorque is the joint torque gathered since the last step,
// expressed along the world joint axis.
func (a *Articulation) AccumulatedTorque() mgl64.Vec3 {
	return a.WorldAxis().Mul(a.jointTorque)
}

// Integrate advances the joint. The parent is integrated separately.
func (a *Articulation) Integrate(dt float64) {
	if dt <= 0 {
		a.jointTorque, a.jointImpulse = 0, 0
		return
	}
	inertia := a.InertiaAlongAxis()
	if inertia > 0 {
		a.AngularSpeed += dt*a.jointTorque/inertia + a.jointImpulse/inertia
	}
	a.AngularSpeed /= 1 + dt*a.JointDamping
	if max := a.MaxAngularVelocity; max >= 0 && !math.IsInf(max, 1) {
		a.AngularSpeed = math.Max(-max, math.Min(max, a.AngularSpeed))
	}
	a.Angle = WrapAngle(a.Angle + dt*a.AngularSpeed)
	a.jointTorque, a.jointImpulse = 0, 0
}

// WrapAngle maps an angle in radians to (-pi, pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
