package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	v, err := Mean([]float64{1, 2, 3, 4})
	assert.NoError(t, err)
	assert.Equal(t, 2.5, v)

	_, err = Mean(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestMedianVariants(t *testing.T) {
	odd := []float64{5, 1, 3}
	even := []float64{4, 1, 3, 2}

	v, err := Median(odd)
	assert.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = Median(even)
	assert.NoError(t, err)
	assert.Equal(t, 2.5, v)

	v, err = MedianLow(even)
	assert.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = MedianHigh(even)
	assert.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = MedianLow(odd)
	assert.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = MedianHigh(odd)
	assert.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestMode(t *testing.T) {
	v, err := Mode([]float64{1, 2, 2, 3})
	assert.NoError(t, err)
	assert.Equal(t, 2.0, v)

	// two values tie for the highest multiplicity
	_, err = Mode([]float64{1, 1, 2, 2, 3})
	assert.ErrorIs(t, err, ErrNoUniqueMode)

	// every value unique: no mode either
	_, err = Mode([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrNoUniqueMode)

	v, err = Mode([]float64{7})
	assert.NoError(t, err)
	assert.Equal(t, 7.0, v)
}

func TestVarianceAndStdDev(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	v, err := PopulationVariance(data)
	assert.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-9)

	v, err = PopulationStdDev(data)
	assert.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-9)

	v, err = SampleVariance(data)
	assert.NoError(t, err)
	assert.InDelta(t, 32.0/7.0, v, 1e-9)

	v, err = SampleStdDev(data)
	assert.NoError(t, err)
	assert.InDelta(t, 2.13809, v, 1e-4)

	_, err = SampleVariance([]float64{1})
	assert.ErrorIs(t, err, ErrInsufficientData)

	v, err = PopulationVariance([]float64{1})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestInputNotMutated(t *testing.T) {
	data := []float64{3, 1, 2}
	_, err := Median(data)
	assert.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, data)
}
