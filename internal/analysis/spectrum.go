package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the one-sided amplitude spectrum of series after
// removing its mean. Bin k holds frequency k/(len(series)*interval).
func PowerSpectrum(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}

	mean := stat.Mean(series, nil)
	centered := make([]float64, len(series))
	for i, v := range series {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, len(coeffs)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the frequency and amplitude of the strongest
// non-constant bin of series sampled every interval time units. A flat
// series yields zero for both.
func DominantFrequency(series []float64, interval float64) (freq, amplitude float64) {
	ps := PowerSpectrum(series)
	best := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > amplitude {
			amplitude = ps[k]
			best = k
		}
	}
	if best == 0 || interval <= 0 {
		return 0, amplitude
	}
	return float64(best) / (float64(len(series)) * interval), amplitude
}
