// Package body defines the physics-body capability set used by every
// vehicle component, with adapters for free rigid bodies and articulation
// links.
package body

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/physics"
)

// ForceMode selects how a force or torque is applied.
type ForceMode int

const (
	// Force is continuous, scaled by the step duration and mass.
	Force ForceMode = iota
	// Acceleration is continuous and ignores mass.
	Acceleration
	// Impulse is instantaneous and scaled by mass.
	Impulse
	// VelocityChange is instantaneous and ignores mass.
	VelocityChange
)

func (m ForceMode) String() string {
	switch m {
	case Force:
		return "force"
	case Acceleration:
		return "acceleration"
	case Impulse:
		return "impulse"
	case VelocityChange:
		return "velocity_change"
	}
	return fmt.Sprintf("ForceMode(%d)", int(m))
}

// Body is everything a component may read from or do to a physics body.
// Vectors are world space unless the method says otherwise.
type Body interface {
	Name() string

	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
	Rotation() mgl64.Quat
	SetRotation(q mgl64.Quat)
	// LocalRotation is the rotation relative to the parent link, or the
	// world rotation for a free body.
	LocalRotation() mgl64.Quat

	LinearVelocity() mgl64.Vec3
	SetLinearVelocity(v mgl64.Vec3)
	AngularVelocity() mgl64.Vec3
	SetAngularVelocity(w mgl64.Vec3)

	// InertiaTensor holds the principal moments in the body frame.
	InertiaTensor() mgl64.Vec3
	SetInertiaTensor(i mgl64.Vec3)
	InertiaTensorRotation() mgl64.Quat
	SetInertiaTensorRotation(q mgl64.Quat)

	AccumulatedTorque() mgl64.Vec3

	MaxLinearVelocity() float64
	SetMaxLinearVelocity(v float64)
	MaxAngularVelocity() float64
	SetMaxAngularVelocity(w float64)

	AddForce(f mgl64.Vec3, mode ForceMode)
	AddRelativeForce(f mgl64.Vec3, mode ForceMode)
	AddForceAtPosition(f, p mgl64.Vec3, mode ForceMode)
	AddTorque(t mgl64.Vec3, mode ForceMode)
	AddRelativeTorque(t mgl64.Vec3, mode ForceMode)
}

// Jointed is implemented by bodies that turn on a joint relative to a
// parent. Joint angles and speeds are measured against the parent, so
// limits and speed control must be too.
type Jointed interface {
	RelativeAngularVelocity() mgl64.Vec3
	StopJoint()
}

// Attachment names the concrete bodies a component was wired to. At most
// one is expected; the free body wins when both are set.
type Attachment struct {
	Rigid        *physics.RigidBody
	Articulation *physics.Articulation
}

// Resolve picks the adapter for whichever body is attached. A component
// with neither cannot operate.
func Resolve(component string, a Attachment) (Body, error) {
	switch {
	case a.Rigid != nil:
		return FromRigidBody(a.Rigid), nil
	case a.Articulation != nil:
		return FromArticulation(a.Articulation), nil
	}
	return nil, fmt.Errorf("%s: %w", component, dynamo.ErrMissingBody)
}

// IsZero reports whether nothing is attached.
func (a Attachment) IsZero() bool {
	return a.Rigid == nil && a.Articulation == nil
}

func TransformDirection(b Body, v mgl64.Vec3) mgl64.Vec3 {
	return b.Rotation().Rotate(v)
}

func InverseTransformDirection(b Body, v mgl64.Vec3) mgl64.Vec3 {
	return b.Rotation().Conjugate().Rotate(v)
}

func TransformPoint(b Body, p mgl64.Vec3) mgl64.Vec3 {
	return b.Position().Add(b.Rotation().Rotate(p))
}
