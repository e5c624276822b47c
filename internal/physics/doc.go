// Package physics is a small fixed-step rigid-body engine: free bodies,
// revolute articulation links and a world that integrates them.
//
// Contributors add forces and torques during a tick; [World.Step] then
// integrates every body with semi-implicit Euler and clears the
// accumulators. There is no collision detection.
package physics

// Shared engine constants.
const (
	Gravity                   = 9.80665
	DefaultMaxAngularVelocity = 7.0 // rad/s, matches common engine defaults
)
