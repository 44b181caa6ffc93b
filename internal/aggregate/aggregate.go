// Package aggregate computes descriptive statistics over cleaned TVL series.
package aggregate

import (
	"math"

	"github.com/yourorg/defi-tvl-analyzer/internal/model"
)

// Summarize computes the StatSummary of a cleaned series.
// The series must already be sorted ascending by date (see validation.Clean).
// An empty series fails with a *NoValidDataError naming subject.
func Summarize(subject Subject, series model.Series) (model.StatSummary, error) {
	if len(series) == 0 {
		return model.StatSummary{}, &NoValidDataError{Scope: subject.Scope, Name: subject.Name}
	}

	values := series.Values()
	start := values[0]
	current := values[len(values)-1]
	minTVL, maxTVL := MinMax(values)
	avg := Mean(values)

	return model.StatSummary{
		StartTVL:           start,
		CurrentTVL:         current,
		MinTVL:             minTVL,
		MaxTVL:             maxTVL,
		AvgTVL:             avg,
		Volatility:         CoefficientOfVariation(values),
		TotalChangePercent: ChangePercent(start, current),
	}, nil
}

// Mean computes the arithmetic mean of values, 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopulationStdDev computes the standard deviation dividing by N, not N-1.
// The series is the complete observed history, not a sample.
func PopulationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := Mean(values)
	var variance float64
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}

// CoefficientOfVariation returns population stddev divided by the mean,
// or 0 when the mean is 0.
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return PopulationStdDev(values) / mean
}

// ChangePercent returns the percent change from start to current,
// or 0 when start is 0.
func ChangePercent(start, current float64) float64 {
	if start == 0 {
		return 0
	}
	return (current - start) / start * 100
}

// MinMax returns the smallest and largest of values, both 0 for no values.
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV, maxV
}
