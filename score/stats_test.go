package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, Pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.True(t, math.IsNaN(Pearson([]float64{1}, []float64{1})))
	assert.True(t, math.IsNaN(Pearson([]float64{1, 2}, []float64{1, 2, 3})))
}

func TestCommonSegmentIDsIncludesLargestID(t *testing.T) {
	got := CommonSegmentIDs(map[GroupKey][]int{
		{"van", "p1"}: {4, 1, 2, 7, 7},
		{"car", "p2"}: {7, 2, 4, 5},
		{"suv", "p3"}: {2, 7, 4, 0},
	})
	assert.Equal(t, []int{2, 4, 7}, got)
	assert.Nil(t, CommonSegmentIDs(nil))
}

func TestPairwiseConsistencyBounds(t *testing.T) {
	groups := [][]float64{{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 1, 2, 2}}
	got := PairwiseConsistency(groups, true)
	assert.LessOrEqual(t, got, 1.0)
	assert.GreaterOrEqual(t, got, 0.0)

	same := [][]float64{{0.5, 2, 7}, {0.5, 2, 7}}
	assert.Equal(t, 1.0, PairwiseConsistency(same, true))
	assert.Equal(t, 1.0, PairwiseConsistency(same, false))

	assert.True(t, math.IsNaN(PairwiseConsistency([][]float64{{1, 2}}, true)))
	assert.True(t, math.IsNaN(PairwiseConsistency([][]float64{{1, 2}, {1, 2, 3}}, true)), "unequal lengths cannot be aligned")
	assert.InDelta(t, 0.5, PairwiseConsistency([][]float64{{0, 2}, {2, 4}}, false), 1e-12)
}

func TestGradeBucketsSkipsFlatFeature(t *testing.T) {
	got := GradeBuckets(
		[][]float64{{1, 1, 1}, {1, 2, 3}},
		[][]float64{{1, 2, 3}, {1, 2, 4}},
	)
	assert.InDelta(t, Pearson([]float64{1, 2, 3}, []float64{1, 2, 4}), got, 1e-12)
}

func TestOverall(t *testing.T) {
	assert.Equal(t, 0.75, Overall(0.5, 1))
	assert.True(t, math.IsNaN(Overall(math.NaN(), 1)))
	assert.True(t, math.IsNaN(Overall(1, math.NaN())))
}
