package analysis

import "math"

// StepMetrics summarizes how a value moved from its first sample toward
// target.
type StepMetrics struct {
	RiseTime     float64 // s from 10% to 90% of the step, NaN if never reached
	Overshoot    float64 // fraction of the step beyond target
	SettlingTime float64 // s after which the value stays inside band, NaN if never
	FinalError   float64
}

// StepResponse measures the response in values against target. band is
// the settling tolerance as a fraction of the step size.
func StepResponse(times, values []float64, target, band float64) StepMetrics {
	m := StepMetrics{RiseTime: math.NaN(), SettlingTime: math.NaN()}
	n := min(len(times), len(values))
	if n == 0 {
		return m
	}

	start := values[0]
	step := target - start
	m.FinalError = target - values[n-1]
	if step == 0 {
		m.RiseTime, m.SettlingTime = 0, 0
		return m
	}

	// progress is the fraction of the step covered, sign-normalized
	progress := func(v float64) float64 { return (v - start) / step }

	t10, t90 := math.NaN(), math.NaN()
	peak := 0.0
	for i := 0; i < n; i++ {
		p := progress(values[i])
		if math.IsNaN(t10) && p >= 0.1 {
			t10 = times[i]
		}
		if math.IsNaN(t90) && p >= 0.9 {
			t90 = times[i]
		}
		peak = math.Max(peak, p)
	}
	if !math.IsNaN(t90) {
		m.RiseTime = t90 - t10
	}
	m.Overshoot = math.Max(0, peak-1)

	tol := math.Abs(band * step)
	for i := n - 1; i >= 0; i-- {
		if math.Abs(values[i]-target) > tol {
			if i < n-1 {
				m.SettlingTime = times[i+1] - times[0]
			}
			return m
		}
	}
	m.SettlingTime = 0
	return m
}
