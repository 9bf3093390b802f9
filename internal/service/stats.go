package service

import "math"

// Cohort statistics over raw score slices. All helpers treat an empty
// cohort as zero rather than NaN.

func average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// stdDev is the population standard deviation.
func stdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := average(xs)
	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// tScore normalizes x against its cohort: 50 + 10·(x−mean)/stddev.
// A zero or undefined deviation (single-member cohort, identical scores)
// falls back to 50.
func tScore(x float64, cohort []float64) float64 {
	sd := stdDev(cohort)
	if sd == 0 {
		return 50
	}
	return 50 + 10*(x-average(cohort))/sd
}

func toFloats(xs []int) []float64 {
	fs := make([]float64, len(xs))
	for i, x := range xs {
		fs[i] = float64(x)
	}
	return fs
}
