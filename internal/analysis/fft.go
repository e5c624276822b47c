package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum is a one-sided amplitude spectrum.
type Spectrum struct {
	Freqs []float64 // Hz
	Power []float64
}

// Column extracts one column from recorded rows. Short rows give 0.
func Column[S ~[]float64](rows []S, idx int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		if idx < len(r) {
			out[i] = r[idx]
		}
	}
	return out
}

// PowerSpectrum removes the mean, applies a Hann window and returns the
// magnitude of each bin up to Nyquist. dt is the sample spacing in
// seconds.
func PowerSpectrum(data []float64, dt float64) Spectrum {
	n := len(data)
	if n < 2 || dt <= 0 {
		return Spectrum{}
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range data {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	bins := n/2 + 1
	s := Spectrum{
		Freqs: make([]float64, bins),
		Power: make([]float64, bins),
	}
	for i := 0; i < bins; i++ {
		s.Freqs[i] = float64(i) / (float64(n) * dt)
		s.Power[i] = cmplx.Abs(spectrum[i])
	}
	return s
}

// DominantFrequency returns the strongest non-DC frequency in Hz and its
// power. A flat signal gives 0, 0.
func DominantFrequency(data []float64, dt float64) (float64, float64) {
	s := PowerSpectrum(data, dt)
	best, power := 0, 0.0
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > power {
			best, power = i, s.Power[i]
		}
	}
	if best == 0 {
		return 0, 0
	}
	return s.Freqs[best], power
}
