package unevenness

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/lucasjlepore/unevenness-grade/aspp"
	"github.com/lucasjlepore/unevenness-grade/score"
)

// ReportOptions shapes the text report.
type ReportOptions struct {
	// TopK bounds the ranking table; zero means 10.
	TopK int
	// SweepKinds are the convolution operation kinds swept over kernel size.
	SweepKinds []string
	// SweepSizes are the kernel sizes of a sweep.
	SweepSizes []int
	// SweepAggregations are the aggregations a sweep is drawn for.
	SweepAggregations []string
}

// DefaultReportOptions matches the kernel sizes of the default operation set.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		TopK:              10,
		SweepKinds:        []string{"avg", "rmp"},
		SweepSizes:        []int{3, 5, 7, 9, 11},
		SweepAggregations: []string{"RMS", "STD", "MOM"},
	}
}

// Report is everything the summary renders.
type Report struct {
	Ranked       []score.ScoredFeature
	Top          []score.ScoredFeature
	Baseline     []score.ScoredFeature
	Sweeps       []Sweep
	Distribution Distribution
}

// Sweep follows one aggregation over the kernel size of a single operation.
type Sweep struct {
	Kind        string
	Aggregation string
	Points      []SweepPoint
}

// SweepPoint is one kernel size of a sweep.
type SweepPoint struct {
	Size   int
	Scored score.ScoredFeature
}

// Distribution summarizes the defined overall scores.
type Distribution struct {
	Features  int
	Defined   int
	Undefined int
	Min       float64
	Median    float64
	Mean      float64
	Max       float64
}

// Rank orders scored features by overall score, best first. Undefined
// scores sort last; ties fall back to the feature id.
func Rank(scored []score.ScoredFeature) []score.ScoredFeature {
	out := append([]score.ScoredFeature(nil), scored...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Overall, out[j].Overall
		aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
		switch {
		case aNaN && bNaN:
			return out[i].Feature < out[j].Feature
		case aNaN:
			return false
		case bNaN:
			return true
		case a != b:
			return a > b
		default:
			return out[i].Feature < out[j].Feature
		}
	})
	return out
}

// BuildReport ranks scored and derives the baseline, sweep and distribution
// views.
func BuildReport(scored []score.ScoredFeature, opts ReportOptions) Report {
	if opts.TopK <= 0 {
		opts.TopK = 10
	}
	ranked := Rank(scored)
	byID := make(map[string]score.ScoredFeature, len(scored))
	for _, sf := range scored {
		byID[sf.Feature] = sf
	}

	r := Report{Ranked: ranked}
	r.Top = ranked[:min(opts.TopK, len(ranked))]
	for _, sf := range ranked {
		if strings.HasPrefix(sf.Feature, aspp.RawLabel+"-") {
			r.Baseline = append(r.Baseline, sf)
		}
	}

	for _, kind := range opts.SweepKinds {
		for _, agg := range opts.SweepAggregations {
			sw := Sweep{Kind: kind, Aggregation: agg}
			for _, size := range opts.SweepSizes {
				id := fmt.Sprintf("%s%d-%s", kind, size, agg)
				if sf, ok := byID[id]; ok {
					sw.Points = append(sw.Points, SweepPoint{Size: size, Scored: sf})
				}
			}
			if len(sw.Points) > 0 {
				r.Sweeps = append(r.Sweeps, sw)
			}
		}
	}

	r.Distribution = distribution(scored)
	return r
}

func distribution(scored []score.ScoredFeature) Distribution {
	d := Distribution{Features: len(scored)}
	values := make([]float64, 0, len(scored))
	for _, sf := range scored {
		if math.IsNaN(sf.Overall) {
			d.Undefined++
			continue
		}
		values = append(values, sf.Overall)
	}
	d.Defined = len(values)
	if len(values) == 0 {
		d.Min, d.Median, d.Mean, d.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return d
	}
	sort.Float64s(values)
	d.Min = values[0]
	d.Max = values[len(values)-1]
	d.Mean = stat.Mean(values, nil)
	d.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
	return d
}
