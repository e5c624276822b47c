package dynamo

import "errors"

// Domain errors for vehicle components and runs.
var (
	// ErrInvalidState indicates a sample with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrMissingBody indicates a component was built without a rigid body
	// or articulation to act on.
	ErrMissingBody = errors.New("dynamo: no rigid body or articulation attached")

	// ErrInvalidConfig indicates a configuration value that cannot be corrected.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrNotInitialized indicates a component was used before Initialize.
	ErrNotInitialized = errors.New("dynamo: component not initialized")

	// ErrUnknownTarget indicates a command addressed to an actuator that does not exist.
	ErrUnknownTarget = errors.New("dynamo: unknown command target")
)
