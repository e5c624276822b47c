// Package dynamo provides the core primitives shared by the vehicle
// simulation: telemetry rows, force contributors, plants and run results.
//
//   - [State]: one telemetry row sampled from a plant
//   - [Contributor]: a component that adds forces to a body once per tick
//   - [Plant]: something the simulator can step and sample
//   - [Config]: fixed-step run configuration
//
// # Example
//
//	v, err := vehicle.Build(cfg, log)
//	if err != nil {
//		return err
//	}
//	// Run initializes the vehicle and fails if that does
//	result, err := sim.New(v).Run(ctx, dynamo.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
// # Thread Safety
//
// Plants are NOT thread-safe. For parallel runs build one plant per
// goroutine, as sim.RunAll does.
package dynamo
