package aspp

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/unevenness-grade/signal"
)

func strPtr(s string) *string { return &s }

func TestRawRMSOverRowsUsesFallbackForMissing(t *testing.T) {
	p, err := New(nil, "RMS")
	require.NoError(t, err)
	assert.Equal(t, "raw-RMS", p.CanonicalID())

	got, err := p.EvaluateRows([]*string{strPtr("1,2,3"), strPtr("4,5,6"), nil})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, math.Sqrt(14.0/3), got[0], 1e-9)
	assert.InDelta(t, math.Sqrt(77.0/3), got[1], 1e-9)
	assert.Equal(t, 0.0, got[2])
}

func TestCanonicalIDs(t *testing.T) {
	cases := []struct {
		ops  []string
		agg  string
		want string
	}{
		{nil, "STD", "raw-STD"},
		{[]string{"avg-3"}, "RMS", "avg3-RMS"},
		{[]string{"avg-3", "bnd-10/40"}, "MOM", "avg3bnd10/40-MOM"},
		{[]string{"rmp-11", "rmp-11"}, "MFFT", "rmp11rmp11-MFFT"},
		{[]string{"bnd-00/25"}, "MAX", "bnd00/25-MAX"},
	}
	for _, tc := range cases {
		p, err := New(tc.ops, tc.agg)
		require.NoError(t, err)
		assert.Equal(t, tc.want, p.CanonicalID())
		assert.Equal(t, tc.want, p.String())
		assert.Equal(t, len(tc.ops), p.Complexity())
	}
}

func TestCanonicalIDIsDeterministicAndOrderSensitive(t *testing.T) {
	a := MustNew([]string{"avg-3", "avg-5"}, "RMS")
	b := MustNew([]string{"avg-3", "avg-5"}, "RMS")
	c := MustNew([]string{"avg-5", "avg-3"}, "RMS")
	assert.Equal(t, a.CanonicalID(), b.CanonicalID())
	assert.NotEqual(t, a.CanonicalID(), c.CanonicalID())
}

func TestNewRejectsBadIdentifiers(t *testing.T) {
	_, err := New([]string{"foo-3"}, "RMS")
	assert.True(t, errors.Is(err, signal.ErrUnknownIdentifier), "got %v", err)

	_, err = New([]string{"avg-3"}, "MEAN")
	assert.True(t, errors.Is(err, signal.ErrUnknownIdentifier), "got %v", err)

	_, err = New([]string{"bnd-40/10"}, "RMS")
	assert.True(t, errors.Is(err, signal.ErrInvalidParameter), "got %v", err)

	_, err = New([]string{"avg-x"}, "RMS")
	assert.True(t, errors.Is(err, signal.ErrInvalidParameter), "got %v", err)
}

func TestEvaluateRowsAbortsOnMalformedRow(t *testing.T) {
	p := MustNew([]string{"avg-3"}, "RMS")
	_, err := p.EvaluateRows([]*string{strPtr("1,2"), strPtr("1,x,3")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, signal.ErrMalformedSignal))
	assert.Contains(t, err.Error(), "row 1")
}

func TestEvaluateChainsOperationsInOrder(t *testing.T) {
	s := signal.Signal{3, 6, 9}
	p := MustNew([]string{"avg-3", "avg-1"}, "MAX")
	ops := p.Operations()
	require.Len(t, ops, 2)
	want := signal.MustParseOperation("avg-1").Apply(signal.MustParseOperation("avg-3").Apply(s))
	assert.InDelta(t, signal.MAX.Apply(want), p.Evaluate(s), 1e-12)
	assert.Equal(t, signal.Signal{3, 6, 9}, s)
	assert.Equal(t, []string{"avg-3", "avg-1"}, p.OperationIDs())
	assert.Equal(t, signal.MAX, p.Aggregation())
}
