// Package feature extracts time-domain descriptors from a filtered signal
// window.
package feature

import "math"

// Vector holds the four scalar descriptors of one window.
type Vector struct {
	MAV float64 `json:"mav"` // mean absolute value
	STD float64 `json:"std"` // population standard deviation
	SSC float64 `json:"ssc"` // slope sign changes
	ZC  float64 `json:"zc"`  // zero crossings
}

// Len is the number of scalars in a Vector.
const Len = 4

// Slice returns the vector as a flat slice in MAV, STD, SSC, ZC order.
func (v Vector) Slice() []float64 {
	return []float64{v.MAV, v.STD, v.SSC, v.ZC}
}

// Extract computes the feature vector of a window. It is pure and
// deterministic. Windows shorter than 3 samples yield zero slope sign
// changes, every other descriptor is defined for any non-empty window.
func Extract(window []float64) Vector {
	if len(window) == 0 {
		return Vector{}
	}

	var sum, abs float64
	for _, x := range window {
		sum += x
		abs += math.Abs(x)
	}
	n := float64(len(window))
	mean := sum / n

	var variance float64
	for _, x := range window {
		d := x - mean
		variance += d * d
	}

	var ssc int
	for i := 1; i < len(window)-1; i++ {
		if (window[i]-window[i-1])*(window[i+1]-window[i]) < 0 {
			ssc++
		}
	}

	var zc int
	for i := 1; i < len(window); i++ {
		if math.Signbit(window[i]) != math.Signbit(window[i-1]) {
			zc++
		}
	}

	return Vector{
		MAV: abs / n,
		STD: math.Sqrt(variance / n),
		SSC: float64(ssc),
		ZC:  float64(zc),
	}
}
