package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptiveStats(t *testing.T) {
	mean, median, p25, p75 := descriptiveStats([]float64{40, 50, 60, 70})
	require.NotNil(t, mean)
	assert.Equal(t, 55.0, *mean)
	assert.Equal(t, 55.0, *median)
	assert.Equal(t, 47.5, *p25)
	assert.Equal(t, 62.5, *p75)
}

func TestDescriptiveStats_SingleValue(t *testing.T) {
	mean, median, p25, p75 := descriptiveStats([]float64{42})
	assert.Equal(t, 42.0, *mean)
	assert.Equal(t, 42.0, *median)
	assert.Equal(t, 42.0, *p25)
	assert.Equal(t, 42.0, *p75)
}

func TestDescriptiveStats_Empty(t *testing.T) {
	mean, median, p25, p75 := descriptiveStats(nil)
	assert.Nil(t, mean)
	assert.Nil(t, median)
	assert.Nil(t, p25)
	assert.Nil(t, p75)
}

func TestDescriptiveStats_UnsortedInput(t *testing.T) {
	_, median, _, _ := descriptiveStats([]float64{70, 40, 60, 50})
	assert.Equal(t, 55.0, *median)
}

func TestQuantile_Interpolates(t *testing.T) {
	sorted := []float64{10, 20, 30}
	assert.Equal(t, 10.0, quantile(sorted, 0))
	assert.Equal(t, 15.0, quantile(sorted, 0.25))
	assert.Equal(t, 20.0, quantile(sorted, 0.5))
	assert.Equal(t, 30.0, quantile(sorted, 1))
}
