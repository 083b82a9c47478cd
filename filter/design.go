package filter

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
)

// BandPass designs a Butterworth band-pass cascade of the given prototype
// order with cutoffs in Hz. The resulting digital filter has 2*order poles
// arranged into order second-order sections and unit gain at the geometric
// center of the band. Design is pure: it depends only on the arguments.
func BandPass(order int, low, high, sampleRate float64) (Chain, error) {
	if order < 1 {
		return nil, fmt.Errorf("filter order %d: must be at least 1", order)
	}
	nyquist := sampleRate / 2
	if low <= 0 || high <= low {
		return nil, fmt.Errorf("cutoffs [%v, %v]: must satisfy 0 < low < high", low, high)
	}
	if high >= nyquist {
		return nil, fmt.Errorf("high cutoff %v: must be below nyquist %v", high, nyquist)
	}

	// pre-warp the cutoffs so the bilinear transform lands the band edges
	// on the requested digital frequencies
	fs2 := 2 * sampleRate
	w1 := fs2 * math.Tan(math.Pi*low/sampleRate)
	w2 := fs2 * math.Tan(math.Pi*high/sampleRate)
	bw := w2 - w1
	w0 := math.Sqrt(w1 * w2)

	// analog Butterworth prototype poles pushed through the low-pass to
	// band-pass transform: every prototype pole yields two poles
	poles := make([]complex128, 0, 2*order)
	for k := 0; k < order; k++ {
		phi := math.Pi * float64(2*k+1) / float64(2*order)
		p := complex(-bw*math.Sin(phi)/2, bw*math.Cos(phi)/2)
		d := cmplx.Sqrt(p*p - complex(w0*w0, 0))
		poles = append(poles, p+d, p-d)
	}

	// bilinear transform into the z-domain
	for i, s := range poles {
		poles[i] = (complex(fs2, 0) + s) / (complex(fs2, 0) - s)
	}

	sections, err := pairSections(poles)
	if err != nil {
		return nil, err
	}
	if len(sections) != order {
		return nil, fmt.Errorf("pole pairing produced %d sections, want %d", len(sections), order)
	}

	// normalize to unit gain at the band center, spread evenly over the
	// sections to keep intermediate magnitudes balanced
	wc := 2 * math.Atan(w0/fs2)
	g := gainAt(sections, wc)
	if g == 0 || math.IsNaN(g) || math.IsInf(g, 0) {
		return nil, fmt.Errorf("degenerate design: gain %v at center frequency", g)
	}
	scale := math.Pow(1/g, 1/float64(len(sections)))
	for i := range sections {
		sections[i].B0 *= scale
		sections[i].B2 *= scale
	}
	return sections, nil
}

// pairSections groups conjugate z-plane poles into real second-order
// sections. Every section receives one zero at z=1 and one at z=-1, the
// band-pass zeros of the bilinear transform.
func pairSections(poles []complex128) (Chain, error) {
	const eps = 1e-10

	var reals []float64
	sections := make(Chain, 0, len(poles)/2)
	for _, p := range poles {
		switch {
		case imag(p) > eps:
			sections = append(sections, Coefficients{
				B0: 1, B2: -1,
				A1: -2 * real(p),
				A2: real(p)*real(p) + imag(p)*imag(p),
			})
		case imag(p) < -eps:
			// conjugate of a pole already paired
		default:
			reals = append(reals, real(p))
		}
	}
	if len(reals)%2 != 0 {
		return nil, fmt.Errorf("unpaired real pole among %d poles", len(poles))
	}
	sort.Float64s(reals)
	for i := 0; i < len(reals); i += 2 {
		sections = append(sections, Coefficients{
			B0: 1, B2: -1,
			A1: -(reals[i] + reals[i+1]),
			A2: reals[i] * reals[i+1],
		})
	}
	return sections, nil
}

// gainAt evaluates the cascade magnitude response at the normalized
// frequency w in radians per sample.
func gainAt(c Chain, w float64) float64 {
	z := cmplx.Exp(complex(0, w))
	z2 := z * z
	h := complex(1, 0)
	for _, sec := range c {
		num := complex(sec.B0, 0)*z2 + complex(sec.B1, 0)*z + complex(sec.B2, 0)
		den := z2 + complex(sec.A1, 0)*z + complex(sec.A2, 0)
		h *= num / den
	}
	return cmplx.Abs(h)
}
