// Package viz is the terminal live view, built on Bubble Tea.
//
// [App] lists the built-in scenarios; [Model] runs one in real time and
// shows a top-down track drawn on a braille [Canvas], a heave graph and
// the pose, velocity and actuator panel.
//
// # Key Bindings
//
//	w/s   - forward / back through the thruster mixer
//	a/d   - strafe
//	←/→   - yaw
//	x     - stop all motion requests
//	tab   - select an actuator
//	↑/↓   - step the selected actuator's command
//	space - pause
//	r     - rebuild the scenario
//	t     - cycle themes
package viz
