package signal

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gainAt(b, a []float64, omega float64) float64 {
	var num, den complex128
	for k, v := range b {
		num += complex(v, 0) * cmplx.Exp(complex(0, -omega*float64(k)))
	}
	for k, v := range a {
		den += complex(v, 0) * cmplx.Exp(complex(0, -omega*float64(k)))
	}
	return cmplx.Abs(num / den)
}

func TestDesignBandPassShape(t *testing.T) {
	b, a, err := DesignBandPass(10, 40, 100, 5)
	require.NoError(t, err)
	assert.Len(t, b, 11)
	assert.Len(t, a, 11)
	assert.InDelta(t, 1.0, a[0], 1e-12)
	// Band-pass blocks DC: (z-1)^order divides the numerator.
	assert.InDelta(t, 0.0, sum(b), 1e-12)
}

func TestDesignBandPassResponse(t *testing.T) {
	cases := []struct{ low, high float64 }{
		{10, 40},
		{20, 30},
		{1, 25},
	}
	for _, tc := range cases {
		b, a, err := DesignBandPass(tc.low, tc.high, 100, 5)
		require.NoError(t, err)

		nyquist := 50.0
		wl := 4 * math.Tan(math.Pi*(tc.low/nyquist)/2)
		wh := 4 * math.Tan(math.Pi*(tc.high/nyquist)/2)
		center := 2 * math.Atan(math.Sqrt(wl*wh)/4)

		assert.InDelta(t, 1.0, gainAt(b, a, center), 1e-6, "center gain %v", tc)
		assert.InDelta(t, 1/math.Sqrt2, gainAt(b, a, math.Pi*tc.low/nyquist), 1e-6, "low edge %v", tc)
		assert.InDelta(t, 1/math.Sqrt2, gainAt(b, a, math.Pi*tc.high/nyquist), 1e-6, "high edge %v", tc)
	}
}

func TestDesignBandPassRejectsBadBands(t *testing.T) {
	for _, tc := range [][2]float64{{0, 10}, {20, 10}, {10, 50}, {10, 60}} {
		_, _, err := DesignBandPass(tc[0], tc[1], 100, 5)
		assert.ErrorIs(t, err, ErrInvalidParameter, "%v", tc)
	}
	_, _, err := DesignBandPass(10, 20, 100, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestLFilterFirstOrderRecursion(t *testing.T) {
	y := LFilter([]float64{1}, []float64{1, -0.5}, []float64{1, 0, 0, 0})
	assert.Equal(t, []float64{1, 0.5, 0.25, 0.125}, y)

	y = LFilter([]float64{2, 2}, []float64{2}, []float64{1, 2, 3})
	assert.Equal(t, []float64{1, 3, 5}, y)
}

func TestBandPassRemovesConstantOffset(t *testing.T) {
	s := make(Signal, 600)
	for i := range s {
		s[i] = 9.81
	}
	y := MustParseOperation("bnd-10/40").Apply(s)
	assert.Less(t, math.Abs(y[len(y)-1]), 1e-3)
}
