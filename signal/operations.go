package signal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OperationKind enumerates the single-trace transforms of the catalogue.
type OperationKind int

const (
	MovingAverage OperationKind = iota + 1
	RampSmoothing
	BandPass
)

var operationKindNames = map[OperationKind]string{
	MovingAverage: "avg",
	RampSmoothing: "rmp",
	BandPass:      "bnd",
}

func (k OperationKind) String() string {
	if name, ok := operationKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseOperationKind resolves a short kind id ("avg", "rmp", "bnd").
func ParseOperationKind(name string) (OperationKind, error) {
	for kind, n := range operationKindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: operation kind %q", ErrUnknownIdentifier, name)
}

// Operation is one parsed, parametrized transform.
type Operation struct {
	kind   OperationKind
	param  string
	kernel []float64
	low    float64
	high   float64
	b, a   []float64
}

// ParseOperation parses an identifier of the form "kind-parameter", for
// example "avg-5", "rmp-7" or "bnd-10/40".
func ParseOperation(id string) (Operation, error) {
	name, param, ok := strings.Cut(id, "-")
	if !ok {
		return Operation{}, fmt.Errorf("%w: operation %q is not of the form kind-parameter", ErrInvalidParameter, id)
	}
	kind, err := ParseOperationKind(name)
	if err != nil {
		return Operation{}, err
	}
	if strings.Contains(param, "-") {
		return Operation{}, fmt.Errorf("%w: operation %q has more than one separator", ErrInvalidParameter, id)
	}

	op := Operation{kind: kind, param: param}
	switch kind {
	case MovingAverage:
		size, err := parseKernelSize(param, 1)
		if err != nil {
			return Operation{}, fmt.Errorf("operation %q: %w", id, err)
		}
		op.kernel = AverageKernel(size)
	case RampSmoothing:
		size, err := parseKernelSize(param, 2)
		if err != nil {
			return Operation{}, fmt.Errorf("operation %q: %w", id, err)
		}
		op.kernel = RampKernel(size)
	case BandPass:
		low, high, err := ParseBand(param)
		if err != nil {
			return Operation{}, fmt.Errorf("operation %q: %w", id, err)
		}
		b, a, err := DesignBandPass(low, high, BandPassSampleRate, BandPassOrder)
		if err != nil {
			return Operation{}, fmt.Errorf("operation %q: %w", id, err)
		}
		op.low, op.high, op.b, op.a = low, high, b, a
	}
	return op, nil
}

// MustParseOperation is ParseOperation for identifiers known at compile time.
func MustParseOperation(id string) Operation {
	op, err := ParseOperation(id)
	if err != nil {
		panic(err)
	}
	return op
}

func parseKernelSize(param string, min int) (int, error) {
	size, err := strconv.Atoi(strings.TrimSpace(param))
	if err != nil {
		return 0, fmt.Errorf("%w: kernel size %q is not an integer", ErrInvalidParameter, param)
	}
	if size < min {
		return 0, fmt.Errorf("%w: kernel size %d must be at least %d", ErrInvalidParameter, size, min)
	}
	return size, nil
}

// ParseBand parses a "low/high" cutoff pair and applies the Nyquist-safety
// clamp for the 100 Hz sample rate.
func ParseBand(param string) (float64, float64, error) {
	parts := strings.Split(param, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: band %q must be low/high", ErrInvalidParameter, param)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: low cutoff %q", ErrInvalidParameter, parts[0])
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: high cutoff %q", ErrInvalidParameter, parts[1])
	}
	if math.IsNaN(low) || math.IsNaN(high) {
		return 0, 0, fmt.Errorf("%w: band %q", ErrInvalidParameter, param)
	}
	low = math.Max(low, BandPassMinLow)
	high = math.Min(high, BandPassMaxHigh)
	if low >= high {
		return 0, 0, fmt.Errorf("%w: band %q is empty after clamping to %g/%g", ErrInvalidParameter, param, low, high)
	}
	return low, high, nil
}

// Kind returns the operation kind.
func (o Operation) Kind() OperationKind { return o.kind }

// Param returns the parameter text as written in the identifier.
func (o Operation) Param() string { return o.param }

// Kernel returns a copy of the convolution kernel, nil for the band-pass.
func (o Operation) Kernel() []float64 {
	if o.kernel == nil {
		return nil
	}
	return append([]float64(nil), o.kernel...)
}

// Band returns the effective cutoffs of a band-pass after clamping.
func (o Operation) Band() (low, high float64) { return o.low, o.high }

// ID returns the "kind-parameter" identifier.
func (o Operation) ID() string { return o.kind.String() + "-" + o.param }

// String returns kind+parameter, the fragment used in pipeline ids.
func (o Operation) String() string { return o.kind.String() + o.param }

// Apply transforms a trace. The input is left untouched.
func (o Operation) Apply(s Signal) Signal {
	switch o.kind {
	case MovingAverage, RampSmoothing:
		return Convolve(s, o.kernel)
	case BandPass:
		return LFilter(o.b, o.a, s)
	default:
		panic(fmt.Sprintf("signal: apply on zero Operation (kind %d)", o.kind))
	}
}

// AverageKernel returns a uniform kernel of width size.
func AverageKernel(size int) []float64 {
	kernel := make([]float64, size)
	for i := range kernel {
		kernel[i] = 1 / float64(size)
	}
	return kernel
}

// RampKernel returns the triangular kernel 1..size-1, size-1..1 normalized
// to sum to one. Its length is 2*(size-1).
func RampKernel(size int) []float64 {
	if size < 2 {
		return nil
	}
	kernel := make([]float64, 0, 2*(size-1))
	for i := 1; i < size; i++ {
		kernel = append(kernel, float64(i))
	}
	for i := size - 1; i >= 1; i-- {
		kernel = append(kernel, float64(i))
	}
	total := float64(size-1) * float64(size)
	for i := range kernel {
		kernel[i] /= total
	}
	return kernel
}

// Convolve returns the full discrete convolution of x and kernel, of length
// len(x)+len(kernel)-1.
func Convolve(x, kernel []float64) Signal {
	if len(x) == 0 || len(kernel) == 0 {
		return Signal{}
	}
	out := make(Signal, len(x)+len(kernel)-1)
	for i, xv := range x {
		if xv == 0 {
			continue
		}
		for j, kv := range kernel {
			out[i+j] += xv * kv
		}
	}
	return out
}
