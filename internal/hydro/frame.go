package hydro

import "github.com/go-gl/mathgl/mgl64"

// The model works in a right-handed forward-left-up frame. The engine is
// left-handed with x right, y up and z forward.

// toModel builds the six-element state from engine-frame body velocities.
// Angular velocity is a pseudovector, so the handedness change negates it.
func toModel(lin, ang mgl64.Vec3) [6]float64 {
	return [6]float64{
		lin.Z(), -lin.X(), lin.Y(),
		-ang.Z(), ang.X(), -ang.Y(),
	}
}

// forceToEngine maps a model-frame force back to the engine frame.
func forceToEngine(f [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{-f[1], f[2], f[0]}
}

// torqueToEngine maps a model-frame torque back to the engine frame.
func torqueToEngine(t [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{t[1], -t[2], -t[0]}
}
