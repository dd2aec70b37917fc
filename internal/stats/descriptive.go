// Package stats provides the descriptive statistics used by the repurchase
// cycle calculator. Semantics follow the conventional definitions: Median of
// an even-length sample interpolates, MedianLow/MedianHigh pick the lower or
// higher middle element, and Mode requires a unique most-common value.
package stats

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"
)

var (
	// ErrEmptyInput is returned when a statistic is requested over no data
	ErrEmptyInput = errors.New("stats: empty input")

	// ErrInsufficientData is returned when a statistic needs more points
	// than the sample provides
	ErrInsufficientData = errors.New("stats: insufficient data")

	// ErrNoUniqueMode is returned when no single value is strictly the most
	// common one
	ErrNoUniqueMode = errors.New("stats: no unique mode")
)

func Mean(data []float64) (float64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyInput
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data)), nil
}

func Median(data []float64) (float64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyInput
	}
	s := sortedCopy(data)
	n := len(s)
	if n%2 == 1 {
		return s[n/2], nil
	}
	return (s[n/2-1] + s[n/2]) / 2, nil
}

// MedianLow returns the lower of the two middle elements for even-length
// samples, and the middle element otherwise
func MedianLow(data []float64) (float64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyInput
	}
	s := sortedCopy(data)
	n := len(s)
	if n%2 == 1 {
		return s[n/2], nil
	}
	return s[n/2-1], nil
}

// MedianHigh returns the higher of the two middle elements for even-length
// samples, and the middle element otherwise
func MedianHigh(data []float64) (float64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyInput
	}
	s := sortedCopy(data)
	return s[len(s)/2], nil
}

// Mode returns the single most common value. When several values tie for the
// highest multiplicity the mode is ambiguous and ErrNoUniqueMode is returned.
func Mode(data []float64) (float64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyInput
	}
	counts := make(map[float64]int, len(data))
	for _, v := range data {
		counts[v]++
	}

	var mode float64
	best := 0
	unique := false
	for v, c := range counts {
		switch {
		case c > best:
			best = c
			mode = v
			unique = true
		case c == best:
			unique = false
		}
	}
	if !unique {
		return 0, ErrNoUniqueMode
	}
	return mode, nil
}

// PopulationVariance is the variance with divisor n
func PopulationVariance(data []float64) (float64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyInput
	}
	return variance(data, float64(len(data))), nil
}

// PopulationStdDev is the square root of the population variance
func PopulationStdDev(data []float64) (float64, error) {
	v, err := PopulationVariance(data)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// SampleVariance is the variance with Bessel's correction (divisor n-1) and
// needs at least two data points
func SampleVariance(data []float64) (float64, error) {
	if len(data) < 2 {
		return 0, ErrInsufficientData
	}
	return variance(data, float64(len(data)-1)), nil
}

// SampleStdDev is the square root of the sample variance
func SampleStdDev(data []float64) (float64, error) {
	v, err := SampleVariance(data)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

func variance(data []float64, divisor float64) float64 {
	mean, _ := Mean(data)
	var ss float64
	for _, v := range data {
		d := v - mean
		ss += d * d
	}
	return ss / divisor
}

func sortedCopy(data []float64) []float64 {
	s := make([]float64, len(data))
	copy(s, data)
	sort.Float64s(s)
	return s
}
