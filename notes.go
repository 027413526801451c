package unevenness

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lucasjlepore/unevenness-grade/score"
)

// RunInfo describes the evaluation a report was built from.
type RunInfo struct {
	RunID        string
	Dataset      string
	Rows         int
	Pipelines    int
	Complexities []int
	Workers      int
	Elapsed      time.Duration
	GeneratedAt  time.Time
}

// BuildRankingNotes renders a report as a markdown summary.
func BuildRankingNotes(r Report, info RunInfo) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	b.WriteString("# ASPP ranking\n\n")
	if info.RunID != "" {
		fmt.Fprintf(&b, "Run `%s`", info.RunID)
		if !info.GeneratedAt.IsZero() {
			fmt.Fprintf(&b, " at %s", info.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))
		}
		b.WriteString("\n\n")
	}
	if info.Dataset != "" {
		fmt.Fprintf(&b, "Dataset: `%s`\n", info.Dataset)
	}
	p.Fprintf(&b, "Rows %d | Pipelines %d | Workers %d", info.Rows, info.Pipelines, info.Workers)
	if len(info.Complexities) > 0 {
		fmt.Fprintf(&b, " | Complexities %s", joinInts(info.Complexities))
	}
	if info.Elapsed > 0 {
		fmt.Fprintf(&b, " | Elapsed %s", formatDuration(info.Elapsed.Seconds()))
	}
	b.WriteString("\n")

	d := r.Distribution
	p.Fprintf(&b, "\nScored %d features, %d with a defined overall score", d.Features, d.Defined)
	if d.Undefined > 0 {
		p.Fprintf(&b, " (%d undefined: no qualifying bucket or setup pair)", d.Undefined)
	}
	b.WriteString(".\n")
	if d.Defined > 0 {
		fmt.Fprintf(&b, "Overall min %.3f / median %.3f / mean %.3f / max %.3f\n", d.Min, d.Median, d.Mean, d.Max)
	}

	fmt.Fprintf(&b, "\n## Top %d\n\n", len(r.Top))
	writeScoreTable(&b, r.Top, true)

	if len(r.Baseline) > 0 {
		b.WriteString("\n## Baseline (raw signal)\n\n")
		writeScoreTable(&b, r.Baseline, false)
	}

	for _, sw := range r.Sweeps {
		fmt.Fprintf(&b, "\n## Kernel size sweep: %s / %s\n\n", sw.Kind, sw.Aggregation)
		b.WriteString("| size | feature | grading | consistency | overall |\n")
		b.WriteString("|---:|---|---:|---:|---:|\n")
		for _, pt := range sw.Points {
			fmt.Fprintf(&b, "| %d | `%s` | %s | %s | %s |\n",
				pt.Size,
				pt.Scored.Feature,
				formatScore(pt.Scored.Grading),
				formatScore(pt.Scored.Consistency),
				formatScore(pt.Scored.Overall),
			)
		}
	}

	if len(r.Top) > 0 {
		b.WriteString("\n## Notes\n\n- ")
		b.WriteString(assessment(r))
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()) + "\n"
}

func writeScoreTable(b *strings.Builder, rows []score.ScoredFeature, ranked bool) {
	if ranked {
		b.WriteString("| # | feature | grading | consistency | overall |\n")
		b.WriteString("|---:|---|---:|---:|---:|\n")
	} else {
		b.WriteString("| feature | grading | consistency | overall |\n")
		b.WriteString("|---|---:|---:|---:|\n")
	}
	for i, sf := range rows {
		if ranked {
			fmt.Fprintf(b, "| %d ", i+1)
		}
		fmt.Fprintf(b, "| `%s` | %s | %s | %s |\n",
			sf.Feature,
			formatScore(sf.Grading),
			formatScore(sf.Consistency),
			formatScore(sf.Overall),
		)
	}
}

func assessment(r Report) string {
	best := r.Top[0]
	if math.IsNaN(best.Overall) {
		return "No feature reached a defined overall score; check that the primary source has velocity buckets with varying ground truth and that setups share segments."
	}
	baseline := math.NaN()
	for _, sf := range r.Baseline {
		if !math.IsNaN(sf.Overall) {
			baseline = sf.Overall
			break
		}
	}
	switch {
	case math.IsNaN(baseline):
		return fmt.Sprintf("Best feature `%s` scores %.3f overall.", best.Feature, best.Overall)
	case best.Overall > baseline:
		return fmt.Sprintf("Best feature `%s` scores %.3f overall, %+.3f over the best raw baseline.", best.Feature, best.Overall, best.Overall-baseline)
	default:
		return fmt.Sprintf("No processed feature beats the raw baseline (%.3f overall).", baseline)
	}
}

// FormatScore renders a score with three decimals, "n/a" when undefined.
func FormatScore(v float64) string { return formatScore(v) }

func formatScore(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	if seconds < 1 {
		return fmt.Sprintf("%.0fms", seconds*1000)
	}
	s := int(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
