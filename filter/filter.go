// Package filter implements causal band-pass IIR filtering for streaming
// signals. Filters are realized as cascades of second-order sections in
// Direct Form II Transposed, with the internal state held in an explicit
// vector so it can be carried across consecutive windows of one stream.
package filter

import "fmt"

// Coefficients holds the transfer function coefficients of a single
// second-order section. a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Chain is a cascade of second-order sections. It carries no state and may
// be shared between streams.
type Chain []Coefficients

// State is the filter memory of one stream: two values per section.
// It is mutated in place by Apply.
type State []float64

// NewState returns zeroed state for the chain.
func (c Chain) NewState() State {
	return make(State, 2*len(c))
}

// StepState returns state primed with the steady-state response to a unit
// step, so that filtering which starts from silence behaves as if the
// input had been constant forever. The step amplitude is propagated
// through the cascade section by section via each section's DC gain.
func (c Chain) StepState() State {
	s := make(State, 2*len(c))
	u := 1.0
	for i, sec := range c {
		var v float64
		if den := 1 + sec.A1 + sec.A2; den != 0 {
			v = u * (sec.B0 + sec.B1 + sec.B2) / den
		}
		s[2*i] = v - sec.B0*u
		s[2*i+1] = sec.B2*u - sec.A2*v
		u = v
	}
	return s
}

// Apply filters the window through the cascade and returns the filtered
// window. State is updated in place: applying the chain to consecutive
// chunks of a stream, carrying the same state, is equivalent to filtering
// the concatenated stream at once. Apply panics if the state does not
// belong to this chain.
func (c Chain) Apply(s State, in []float64) []float64 {
	if len(s) != 2*len(c) {
		panic(fmt.Sprintf("filter: state length %d, chain needs %d", len(s), 2*len(c)))
	}
	out := make([]float64, len(in))
	copy(out, in)
	for i, sec := range c {
		d0, d1 := s[2*i], s[2*i+1]
		for j, x := range out {
			y := sec.B0*x + d0
			d0 = sec.B1*x - sec.A1*y + d1
			d1 = sec.B2*x - sec.A2*y
			out[j] = y
		}
		s[2*i], s[2*i+1] = d0, d1
	}
	return out
}
