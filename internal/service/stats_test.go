package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTScore_PreservesOrdering(t *testing.T) {
	cohort := []float64{100, 80, 60}

	high := tScore(100, cohort)
	mid := tScore(80, cohort)
	low := tScore(60, cohort)

	assert.Greater(t, high, mid)
	assert.Greater(t, mid, low)
	// The cohort mean always lands on 50.
	assert.InDelta(t, 50, mid, 1e-9)
	// Symmetric cohort, symmetric T-scores.
	assert.InDelta(t, high-50, 50-low, 1e-9)
}

func TestTScore_DegenerateCohortsFallBackTo50(t *testing.T) {
	assert.Equal(t, 50.0, tScore(73, []float64{73}))
	assert.Equal(t, 50.0, tScore(80, []float64{80, 80, 80}))
	assert.Equal(t, 50.0, tScore(0, nil))
}

func TestStdDev_Population(t *testing.T) {
	// Population (not sample) deviation: for {2, 4, 4, 4, 5, 5, 7, 9} it
	// is exactly 2.
	assert.InDelta(t, 2, stdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
	assert.Zero(t, stdDev(nil))
}

func TestCohortHelpers_EmptyCohortIsZero(t *testing.T) {
	assert.Zero(t, average(nil))
	assert.Zero(t, maxOf(nil))
	assert.Zero(t, minOf(nil))
}

func TestCohortHelpers(t *testing.T) {
	xs := []float64{60, 80, 100}
	assert.InDelta(t, 80, average(xs), 1e-9)
	assert.Equal(t, 100.0, maxOf(xs))
	assert.Equal(t, 60.0, minOf(xs))
}
