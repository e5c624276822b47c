// Package analysis works on recorded runs rather than live plants.
//
//   - [PowerSpectrum] and [DominantFrequency]: heave and roll oscillation
//   - [NewPhasePortrait]: two recorded columns against each other
//   - [StepResponse]: rise, overshoot and settling of a tracked value
//
// # Example
//
//	heave := analysis.Column(result.States, dynamo.PosY)
//	f, _ := analysis.DominantFrequency(heave, cfg.Dt)
package analysis
