package feature_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/myo/feature"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		window   []float64
		expected feature.Vector
	}{
		{
			name:     "constant",
			window:   []float64{2, 2, 2, 2, 2},
			expected: feature.Vector{MAV: 2, STD: 0, SSC: 0, ZC: 0},
		},
		{
			name:     "alternating",
			window:   []float64{1, -1, 1, -1, 1, -1},
			expected: feature.Vector{MAV: 1, STD: 1, SSC: 4, ZC: 5},
		},
		{
			name:     "ramp",
			window:   []float64{1, 2, 3, 4},
			expected: feature.Vector{MAV: 2.5, STD: math.Sqrt(1.25), SSC: 0, ZC: 0},
		},
		{
			name:     "single peak",
			window:   []float64{0, 1, 0},
			expected: feature.Vector{MAV: 1.0 / 3, STD: math.Sqrt(2.0 / 9), SSC: 1, ZC: 0},
		},
		{
			name:     "zero boundary",
			window:   []float64{-1, 0, -1},
			expected: feature.Vector{MAV: 2.0 / 3, STD: math.Sqrt(2.0 / 9), SSC: 1, ZC: 2},
		},
		{
			name:     "empty",
			window:   nil,
			expected: feature.Vector{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v := feature.Extract(test.window)
			assert.InDelta(t, test.expected.MAV, v.MAV, 1e-12)
			assert.InDelta(t, test.expected.STD, v.STD, 1e-12)
			assert.Equal(t, test.expected.SSC, v.SSC)
			assert.Equal(t, test.expected.ZC, v.ZC)
		})
	}
}

func TestExtractAlternatingZC(t *testing.T) {
	// a full-swing alternating window crosses zero between every pair of
	// consecutive samples.
	window := make([]float64, 250)
	for i := range window {
		if i%2 == 0 {
			window[i] = 1
		} else {
			window[i] = -1
		}
	}
	v := feature.Extract(window)
	assert.Equal(t, float64(len(window)-1), v.ZC)
}

func TestVectorSlice(t *testing.T) {
	v := feature.Vector{MAV: 1, STD: 2, SSC: 3, ZC: 4}
	assert.Equal(t, []float64{1, 2, 3, 4}, v.Slice())
	assert.Equal(t, feature.Len, len(v.Slice()))
}
