package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a recorded series.
type Summary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize returns the summary of series. An empty series yields NaN fields.
func Summarize(series []float64) Summary {
	if len(series) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, StdDev: nan, Min: nan, Max: nan}
	}
	mean, std := stat.MeanStdDev(series, nil)
	if len(series) == 1 {
		std = 0
	}
	return Summary{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(series),
		Max:    floats.Max(series),
	}
}

// RelativeSpread is (max-min)/|mean|, or 0 when the mean is zero.
func (s Summary) RelativeSpread() float64 {
	if s.Mean == 0 || math.IsNaN(s.Mean) {
		return 0
	}
	return (s.Max - s.Min) / math.Abs(s.Mean)
}
