package score

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Pearson is the sample correlation of x and y; NaN when either side has no
// variance or the lengths differ.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// distinctAtLeast reports whether values holds at least n distinct values.
func distinctAtLeast(values []float64, n int) bool {
	seen := make(map[float64]struct{}, n)
	for _, v := range values {
		seen[v] = struct{}{}
		if len(seen) >= n {
			return true
		}
	}
	return false
}

// GradeBuckets averages |Pearson(feature, target)| over the buckets that hold
// at least two distinct targets and two distinct feature values. NaN when no
// bucket qualifies.
func GradeBuckets(features, targets [][]float64) float64 {
	var scores []float64
	for i := range features {
		f, g := features[i], targets[i]
		if len(f) != len(g) || !distinctAtLeast(g, 2) || !distinctAtLeast(f, 2) {
			continue
		}
		r := Pearson(f, g)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		scores = append(scores, math.Abs(r))
	}
	return mean(scores)
}

// CommonSegmentIDs returns, ascending, the segment ids observed in every group.
func CommonSegmentIDs(groups map[GroupKey][]int) []int {
	if len(groups) == 0 {
		return nil
	}
	counts := make(map[int]int)
	for _, ids := range groups {
		seen := make(map[int]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			counts[id]++
		}
	}
	var out []int
	for id, n := range counts {
		if n == len(groups) {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// PairwiseConsistency is 1 - mean deviation over every ordered pair of
// distinct groups. Each pair is min-max normalized jointly. With pointwise
// set the deviation is the mean absolute difference of aligned values,
// otherwise the absolute difference of the normalized group means. Pairs
// without joint range, or with unequal lengths in pointwise mode, are
// skipped. NaN when no pair remains.
func PairwiseConsistency(groups [][]float64, pointwise bool) float64 {
	var diffs []float64
	for i := range groups {
		for j := range groups {
			if i == j {
				continue
			}
			d, ok := pairDeviation(groups[i], groups[j], pointwise)
			if ok {
				diffs = append(diffs, d)
			}
		}
	}
	if len(diffs) == 0 {
		return math.NaN()
	}
	return 1 - mean(diffs)
}

func pairDeviation(a, b []float64, pointwise bool) (float64, bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	if pointwise && len(a) != len(b) {
		return 0, false
	}
	if hasNonFinite(a) || hasNonFinite(b) {
		return 0, false
	}
	lo := math.Min(floats.Min(a), floats.Min(b))
	hi := math.Max(floats.Max(a), floats.Max(b))
	span := hi - lo
	if span == 0 {
		return 0, false
	}
	if !pointwise {
		return math.Abs((mean(b)-lo)/span - (mean(a)-lo)/span), true
	}
	var sum float64
	for k := range a {
		sum += math.Abs((b[k]-lo)/span - (a[k]-lo)/span)
	}
	return sum / float64(len(a)), true
}

// Overall is the mean of the grading and consistency scores; NaN if either is.
func Overall(grading, consistency float64) float64 {
	if math.IsNaN(grading) || math.IsNaN(consistency) {
		return math.NaN()
	}
	return (grading + consistency) / 2
}

func hasNonFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}
