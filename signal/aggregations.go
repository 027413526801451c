package signal

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Aggregation reduces a trace to one scalar.
type Aggregation int

const (
	RMS Aggregation = iota + 1
	STD
	P10
	P90
	MOM
	MFFT
	MAX
)

var aggregationNames = map[Aggregation]string{
	RMS:  "RMS",
	STD:  "STD",
	P10:  "P10",
	P90:  "P90",
	MOM:  "MOM",
	MFFT: "MFFT",
	MAX:  "MAX",
}

// Aggregations lists the catalogue in declaration order.
func Aggregations() []Aggregation {
	return []Aggregation{RMS, STD, P10, P90, MOM, MFFT, MAX}
}

func (a Aggregation) String() string {
	if name, ok := aggregationNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAggregation resolves an aggregation name. Names are case sensitive.
func ParseAggregation(name string) (Aggregation, error) {
	for agg, n := range aggregationNames {
		if n == name {
			return agg, nil
		}
	}
	return 0, fmt.Errorf("%w: aggregation %q", ErrUnknownIdentifier, name)
}

// Apply reduces s. Empty traces reduce to NaN.
func (a Aggregation) Apply(s Signal) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	switch a {
	case RMS:
		return RootMeanSquare(s)
	case STD:
		_, std := stat.PopMeanStdDev(s, nil)
		return std
	case P10:
		return Percentile(s, 10)
	case P90:
		return Percentile(s, 90)
	case MOM:
		mags := FFTMagnitudes(s)
		return floats.Sum(mags) / float64(len(mags))
	case MFFT:
		return floats.Max(FFTMagnitudes(s))
	case MAX:
		return floats.Max(s)
	default:
		panic(fmt.Sprintf("signal: apply on zero Aggregation (%d)", int(a)))
	}
}

// RootMeanSquare returns sqrt(mean(x^2)).
func RootMeanSquare(s Signal) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return math.Sqrt(floats.Dot(s, s) / float64(len(s)))
}

// Percentile returns the p-th percentile with linear interpolation between
// closest ranks, index = p/100 * (n-1).
func Percentile(s Signal, p float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), s...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	index := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// FFTMagnitudes returns |X[k]| for the full, unnormalized DFT of s.
func FFTMagnitudes(s Signal) []float64 {
	if len(s) == 0 {
		return nil
	}
	seq := make([]complex128, len(s))
	for i, v := range s {
		seq[i] = complex(v, 0)
	}
	coeffs := fourier.NewCmplxFFT(len(seq)).Coefficients(nil, seq)
	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}
