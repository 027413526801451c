package signal

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Band-pass defaults used by the "bnd" operation.
const (
	BandPassSampleRate = 100.0
	BandPassOrder      = 5
	BandPassMinLow     = 1.0
	BandPassMaxHigh    = 49.0
)

// DesignBandPass returns the transfer function coefficients (b, a) of a
// digital Butterworth band-pass filter with -3 dB edges at lowHz and highHz.
// Both slices have 2*order+1 entries and a[0] == 1.
func DesignBandPass(lowHz, highHz, sampleRate float64, order int) ([]float64, []float64, error) {
	if order < 1 {
		return nil, nil, fmt.Errorf("%w: filter order %d must be positive", ErrInvalidParameter, order)
	}
	nyquist := sampleRate / 2
	if !(lowHz > 0 && lowHz < highHz && highHz < nyquist) {
		return nil, nil, fmt.Errorf("%w: band %g/%g outside (0, %g)", ErrInvalidParameter, lowHz, highHz, nyquist)
	}

	// Frequencies are handled normalized to Nyquist with a bilinear sample
	// rate of 2, so the transform constant is 2*fs = 4.
	const fs2 = 4.0
	warpedLow := fs2 * math.Tan(math.Pi*(lowHz/nyquist)/2)
	warpedHigh := fs2 * math.Tan(math.Pi*(highHz/nyquist)/2)
	bw := warpedHigh - warpedLow
	wo := math.Sqrt(warpedLow * warpedHigh)

	// Analog low-pass prototype poles on the left half of the unit circle.
	proto := make([]complex128, 0, order)
	for m := -order + 1; m < order; m += 2 {
		proto = append(proto, -cmplx.Exp(complex(0, math.Pi*float64(m)/float64(2*order))))
	}

	// Low-pass to band-pass: every prototype pole splits in two, and order
	// zeros land on the origin.
	analogPoles := make([]complex128, 0, 2*order)
	for _, p := range proto {
		scaled := p * complex(bw/2, 0)
		root := cmplx.Sqrt(scaled*scaled - complex(wo*wo, 0))
		analogPoles = append(analogPoles, scaled+root)
	}
	for _, p := range proto {
		scaled := p * complex(bw/2, 0)
		root := cmplx.Sqrt(scaled*scaled - complex(wo*wo, 0))
		analogPoles = append(analogPoles, scaled-root)
	}
	gain := math.Pow(bw, float64(order))

	// Bilinear transform. Origin zeros map to z=1, the missing zeros at
	// infinity map to z=-1.
	digitalZeros := make([]complex128, 0, 2*order)
	for i := 0; i < order; i++ {
		digitalZeros = append(digitalZeros, 1)
	}
	for i := 0; i < order; i++ {
		digitalZeros = append(digitalZeros, -1)
	}
	digitalPoles := make([]complex128, len(analogPoles))
	den := complex(1, 0)
	for i, p := range analogPoles {
		digitalPoles[i] = (fs2 + p) / (fs2 - p)
		den *= fs2 - p
	}
	gain *= real(complex(math.Pow(fs2, float64(order)), 0) / den)

	bc := polyFromRoots(digitalZeros)
	ac := polyFromRoots(digitalPoles)
	b := make([]float64, len(bc))
	a := make([]float64, len(ac))
	for i := range bc {
		b[i] = gain * real(bc[i])
	}
	for i := range ac {
		a[i] = real(ac[i])
	}
	return b, a, nil
}

// polyFromRoots expands prod(x - r) into coefficients, highest power first.
func polyFromRoots(roots []complex128) []complex128 {
	c := make([]complex128, 1, len(roots)+1)
	c[0] = 1
	for _, r := range roots {
		next := make([]complex128, len(c)+1)
		copy(next, c)
		for i := 1; i < len(next); i++ {
			next[i] -= r * c[i-1]
		}
		c = next
	}
	return c
}

// LFilter applies the IIR filter (b, a) to x in direct form II transposed.
// The output has the same length as x; x is not modified.
func LFilter(b, a, x []float64) []float64 {
	y := make([]float64, len(x))
	if len(b) == 0 || len(a) == 0 || a[0] == 0 {
		return y
	}
	n := len(b)
	if len(a) > n {
		n = len(a)
	}
	bn := make([]float64, n)
	an := make([]float64, n)
	for i, v := range b {
		bn[i] = v / a[0]
	}
	for i, v := range a {
		an[i] = v / a[0]
	}
	if n == 1 {
		for i, v := range x {
			y[i] = bn[0] * v
		}
		return y
	}

	state := make([]float64, n-1)
	for i, xi := range x {
		yi := bn[0]*xi + state[0]
		for j := 1; j < n-1; j++ {
			state[j-1] = bn[j]*xi + state[j] - an[j]*yi
		}
		state[n-2] = bn[n-1]*xi - an[n-1]*yi
		y[i] = yi
	}
	return y
}
