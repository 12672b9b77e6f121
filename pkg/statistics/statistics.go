// Package statistics wraps the summary statistics the analysis tools
// need. Empty samples yield zero rather than an error: an experiment
// with no usable iterations reports zeros and the surrounding tooling
// flags it through the failure count, not through NaNs in a CSV.
package statistics

import (
	"sort"

	"github.com/montanaflynn/stats"
)

func Mean(xs []float64) float64 {
	v, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return v
}

func Max(xs []float64) float64 {
	v, err := stats.Max(xs)
	if err != nil {
		return 0
	}
	return v
}

func Min(xs []float64) float64 {
	v, err := stats.Min(xs)
	if err != nil {
		return 0
	}
	return v
}

func StdDev(xs []float64) float64 {
	v, err := stats.StandardDeviation(xs)
	if err != nil {
		return 0
	}
	return v
}

func Variance(xs []float64) float64 {
	v, err := stats.Variance(xs)
	if err != nil {
		return 0
	}
	return v
}

// CDF returns the empirical distribution of the sample: the sorted
// values paired with cumulative probabilities i/n for i in 1..n.
func CDF(xs []float64) (sorted []float64, cum []float64) {
	sorted = make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	cum = make([]float64, len(sorted))
	n := float64(len(sorted))
	for i := range sorted {
		cum[i] = float64(i+1) / n
	}
	return sorted, cum
}
