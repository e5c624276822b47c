package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RigidBody is a free 6-DOF body. Forces and torques are accumulated in
// world space between steps and cleared by Integrate.
type RigidBody struct {
	Name            string
	Mass            float64
	Inertia         mgl64.Vec3 // principal moments, body frame
	InertiaRotation mgl64.Quat

	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3

	MaxLinearVelocity  float64
	MaxAngularVelocity float64
	LinearDamping      float64
	AngularDamping     float64
	GravityScale       float64

	force          mgl64.Vec3
	torque         mgl64.Vec3
	impulse        mgl64.Vec3
	angularImpulse mgl64.Vec3
}

func NewRigidBody(name string, mass float64, inertia mgl64.Vec3) *RigidBody {
	return &RigidBody{
		Name:               name,
		Mass:               mass,
		Inertia:            inertia,
		InertiaRotation:    mgl64.QuatIdent(),
		Rotation:           mgl64.QuatIdent(),
		MaxLinearVelocity:  math.Inf(1),
		MaxAngularVelocity: DefaultMaxAngularVelocity,
		GravityScale:       1,
	}
}

func (b *RigidBody) AddForce(f mgl64.Vec3) { b.force = b.force.Add(f) }

func (b *RigidBody) AddTorque(t mgl64.Vec3) { b.torque = b.torque.Add(t) }

// AddForceAtPoint adds a force at a world point, producing a torque about
// the centre of mass.
func (b *RigidBody) AddForceAtPoint(f, p mgl64.Vec3) {
	b.force = b.force.Add(f)
	b.torque = b.torque.Add(p.Sub(b.Position).Cross(f))
}

func (b *RigidBody) AddImpulse(j mgl64.Vec3) { b.impulse = b.impulse.Add(j) }

func (b *RigidBody) AddAngularImpulse(j mgl64.Vec3) {
	b.angularImpulse = b.angularImpulse.Add(j)
}

func (b *RigidBody) AddImpulseAtPoint(j, p mgl64.Vec3) {
	b.impulse = b.impulse.Add(j)
	b.angularImpulse = b.angularImpulse.Add(p.Sub(b.Position).Cross(j))
}

// AccumulatedForce returns the continuous force added since the last step.
func (b *RigidBody) AccumulatedForce() mgl64.Vec3 { return b.force }

// AccumulatedTorque returns the continuous torque added since the last step.
func (b *RigidBody) AccumulatedTorque() mgl64.Vec3 { return b.torque }

// WorldInertia returns the inertia tensor in world space.
func (b *RigidBody) WorldInertia() mgl64.Mat3 {
	r := b.Rotation.Mul(b.InertiaRotation).Normalize().Mat4().Mat3()
	return r.Mul3(mgl64.Diag3(b.Inertia)).Mul3(r.Transpose())
}

// WorldInverseInertia returns the inverse inertia tensor in world space.
// Zero principal moments lock rotation about that axis.
func (b *RigidBody) WorldInverseInertia() mgl64.Mat3 {
	var inv mgl64.Vec3
	for i := 0; i < 3; i++ {
		if b.Inertia[i] > 0 {
			inv[i] = 1 / b.Inertia[i]
		}
	}
	r := b.Rotation.Mul(b.InertiaRotation).Normalize().Mat4().Mat3()
	return r.Mul3(mgl64.Diag3(inv)).Mul3(r.Transpose())
}

func (b *RigidBody) invMass() float64 {
	if b.Mass <= 0 {
		return 0
	}
	return 1 / b.Mass
}

// Integrate advances the body by one semi-implicit Euler step: velocities
// first, then pose from the new velocities.
func (b *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if dt <= 0 {
		b.ClearForces()
		return
	}
	im := b.invMass()
	invI := b.WorldInverseInertia()

	v := b.LinearVelocity
	if im > 0 {
		v = v.Add(gravity.Mul(b.GravityScale).Add(b.force.Mul(im)).Mul(dt))
		v = v.Add(b.impulse.Mul(im))
	}
	w := b.AngularVelocity.Add(invI.Mul3x1(b.torque).Mul(dt)).Add(invI.Mul3x1(b.angularImpulse))

	// Pade approximation of exp(-c*dt)
	v = v.Mul(1 / (1 + dt*b.LinearDamping))
	w = w.Mul(1 / (1 + dt*b.AngularDamping))

	b.LinearVelocity = clampLength(v, b.MaxLinearVelocity)
	b.AngularVelocity = clampLength(w, b.MaxAngularVelocity)

	b.Position = b.Position.Add(b.LinearVelocity.Mul(dt))
	b.Rotation = integrateRotation(b.Rotation, b.AngularVelocity, dt)

	b.ClearForces()
}

func (b *RigidBody) ClearForces() {
	b.force, b.torque = mgl64.Vec3{}, mgl64.Vec3{}
	b.impulse, b.angularImpulse = mgl64.Vec3{}, mgl64.Vec3{}
}

func integrateRotation(q mgl64.Quat, w mgl64.Vec3, dt float64) mgl64.Quat {
	dq := mgl64.Quat{W: 0, V: w}.Mul(q).Scale(0.5 * dt)
	next := q.Add(dq)
	if next.Len() == 0 {
		return q
	}
	return next.Normalize()
}

func clampLength(v mgl64.Vec3, max float64) mgl64.Vec3 {
	if max < 0 || math.IsInf(max, 1) || math.IsNaN(max) {
		return v
	}
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Mul(max / l)
}
