package unevenness

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/unevenness-grade/score"
)

func scored(id string, grading, consistency float64) score.ScoredFeature {
	return score.ScoredFeature{
		Feature:     id,
		Grading:     grading,
		Consistency: consistency,
		Overall:     score.Overall(grading, consistency),
	}
}

func fixtureScores() []score.ScoredFeature {
	return []score.ScoredFeature{
		scored("raw-RMS", 0.4, 0.8),
		scored("raw-STD", math.NaN(), 0.9),
		scored("avg3-RMS", 0.6, 0.9),
		scored("avg5-RMS", 0.7, 0.9),
		scored("avg7-RMS", 0.5, 0.9),
		scored("bnd10/40-MOM", 0.7, 0.9),
		scored("rmp3-STD", 0.2, 0.2),
	}
}

func TestRankPutsUndefinedLast(t *testing.T) {
	ranked := Rank(fixtureScores())
	ids := make([]string, len(ranked))
	for i, sf := range ranked {
		ids[i] = sf.Feature
	}
	assert.Equal(t, []string{"avg5-RMS", "bnd10/40-MOM", "avg3-RMS", "avg7-RMS", "raw-RMS", "rmp3-STD", "raw-STD"}, ids)
}

func TestBuildReport(t *testing.T) {
	r := BuildReport(fixtureScores(), ReportOptions{
		TopK:              3,
		SweepKinds:        []string{"avg", "rmp"},
		SweepSizes:        []int{3, 5, 7, 9, 11},
		SweepAggregations: []string{"RMS", "STD"},
	})
	require.Len(t, r.Top, 3)
	assert.Equal(t, "avg5-RMS", r.Top[0].Feature)
	require.Len(t, r.Baseline, 2)
	assert.Equal(t, "raw-RMS", r.Baseline[0].Feature)

	require.Len(t, r.Sweeps, 2)
	assert.Equal(t, "avg", r.Sweeps[0].Kind)
	assert.Equal(t, "RMS", r.Sweeps[0].Aggregation)
	require.Len(t, r.Sweeps[0].Points, 3)
	assert.Equal(t, []int{3, 5, 7}, []int{r.Sweeps[0].Points[0].Size, r.Sweeps[0].Points[1].Size, r.Sweeps[0].Points[2].Size})
	assert.Equal(t, "rmp", r.Sweeps[1].Kind)

	d := r.Distribution
	assert.Equal(t, 7, d.Features)
	assert.Equal(t, 6, d.Defined)
	assert.Equal(t, 1, d.Undefined)
	assert.InDelta(t, 0.2, d.Min, 1e-12)
	assert.InDelta(t, 0.8, d.Max, 1e-12)
}

func TestBuildReportDefaultsTopK(t *testing.T) {
	r := BuildReport(fixtureScores(), ReportOptions{})
	assert.Len(t, r.Top, 7)
	assert.Empty(t, r.Sweeps)

	empty := BuildReport(nil, DefaultReportOptions())
	assert.Empty(t, empty.Top)
	assert.True(t, math.IsNaN(empty.Distribution.Mean))
}

func TestBuildRankingNotes(t *testing.T) {
	r := BuildReport(fixtureScores(), DefaultReportOptions())
	notes := BuildRankingNotes(r, RunInfo{
		RunID:        "run-1",
		Dataset:      "zeb_data_set.csv",
		Rows:         12345,
		Pipelines:    1445,
		Complexities: []int{0, 1, 2},
		Workers:      8,
		Elapsed:      90 * time.Second,
		GeneratedAt:  time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, notes, "# ASPP ranking")
	assert.Contains(t, notes, "Rows 12,345 | Pipelines 1,445 | Workers 8")
	assert.Contains(t, notes, "Complexities 0,1,2")
	assert.Contains(t, notes, "Elapsed 1m30s")
	assert.Contains(t, notes, "| 1 | `avg5-RMS` | 0.700 | 0.900 | 0.800 |")
	assert.Contains(t, notes, "## Baseline (raw signal)")
	assert.Contains(t, notes, "| `raw-STD` | n/a | 0.900 | n/a |")
	assert.Contains(t, notes, "## Kernel size sweep: avg / RMS")
	assert.Contains(t, notes, "+0.200 over the best raw baseline")
	assert.True(t, strings.HasSuffix(notes, "\n"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", formatDuration(0))
	assert.Equal(t, "250ms", formatDuration(0.25))
	assert.Equal(t, "42s", formatDuration(42))
	assert.Equal(t, "1h01m01s", formatDuration(3661))
}
