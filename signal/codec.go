package signal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FallbackLength is the number of zero samples used when a row has no trace.
const FallbackLength = 6

var (
	// ErrMalformedSignal reports trace text that is not a comma separated list of numbers.
	ErrMalformedSignal = errors.New("malformed signal")
	// ErrInvalidParameter reports an operation parameter that does not fit its kind.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnknownIdentifier reports an operation kind or aggregation name outside the catalogue.
	ErrUnknownIdentifier = errors.New("unknown identifier")
)

// Signal is an ordered sequence of accelerometer samples.
type Signal []float64

// Fallback returns the degenerate all-zero trace used for rows without a recording.
func Fallback() Signal {
	return make(Signal, FallbackLength)
}

// Encode serializes a trace as comma joined decimal text.
func Encode(s Signal) string {
	var b strings.Builder
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

// Decode parses comma separated text into a trace with float32 precision.
func Decode(text string) (Signal, error) {
	parts := strings.Split(text, ",")
	out := make(Signal, 0, len(parts))
	for i, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			return nil, fmt.Errorf("%w: empty value at position %d", ErrMalformedSignal, i)
		}
		v, err := strconv.ParseFloat(token, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: value %q at position %d", ErrMalformedSignal, token, i)
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeOptional decodes a nullable dataset cell. Missing cells decode to Fallback.
func DecodeOptional(raw *string) (Signal, error) {
	if raw == nil || IsMissing(*raw) {
		return Fallback(), nil
	}
	return Decode(*raw)
}

// IsMissing reports whether a cell holds one of the null markers written by
// spreadsheet and dataframe tools.
func IsMissing(text string) bool {
	switch strings.TrimSpace(text) {
	case "", "nan", "NaN", "NAN", "null", "NULL", "None", "<NA>":
		return true
	}
	return false
}
