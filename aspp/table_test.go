package aspp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureTableAddNeverOverwrites(t *testing.T) {
	table := NewFeatureTable(2)
	require.NoError(t, table.Add("raw-RMS", []float64{1, 2}))

	err := table.Add("raw-RMS", []float64{3, 4})
	assert.True(t, errors.Is(err, ErrDuplicateFeatureID))
	got, ok := table.Column("raw-RMS")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, got)

	err = table.Add("raw-STD", []float64{1})
	assert.True(t, errors.Is(err, ErrRowMismatch))
	assert.Equal(t, 1, table.Len())
}

func TestFeatureTableMergeKeepsOrder(t *testing.T) {
	a := NewFeatureTable(1)
	require.NoError(t, a.Add("raw-RMS", []float64{1}))
	b := NewFeatureTable(1)
	require.NoError(t, b.Add("avg3-RMS", []float64{2}))
	require.NoError(t, b.Add("avg5-RMS", []float64{3}))

	merged := NewFeatureTable(1)
	require.NoError(t, merged.Merge(a, nil, b))
	assert.Equal(t, []string{"raw-RMS", "avg3-RMS", "avg5-RMS"}, merged.IDs())

	v, ok := merged.Value("avg5-RMS", 0)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
	_, ok = merged.Value("avg5-RMS", 1)
	assert.False(t, ok)
	_, ok = merged.Value("missing", 0)
	assert.False(t, ok)

	assert.True(t, errors.Is(merged.Merge(a), ErrDuplicateFeatureID))
}
