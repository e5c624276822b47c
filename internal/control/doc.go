// Package control provides the feedback and command-routing pieces used
// by actuators:
//
//   - [PID]: proportional-integral-derivative loop with integral clamping
//   - [CommandSource]: where an actuator takes its command from each tick
//
// # Usage
//
//	pid := control.NewPID(8, 0.5, 0.2, 1)  // Kp, Ki, Kd, integral bound
//	v := pid.Run(target-angle, dt)
//
// [PID] implements [dynamo.Configurable] for live tuning.
package control
