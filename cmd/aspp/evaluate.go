package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	unevenness "github.com/lucasjlepore/unevenness-grade"
	"github.com/lucasjlepore/unevenness-grade/benchmark"
	"github.com/lucasjlepore/unevenness-grade/internal/config"
)

func newEvaluateCommand(ctx *commandContext) *cobra.Command {
	var (
		datasetPath string
		outDir      string
		format      string
		workers     int
		top         int
		overwrite   bool
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate every pipeline of the grid and rank the features",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("dataset") {
				if cfg.Paths.Dataset, err = config.ExpandPath(datasetPath); err != nil {
					return err
				}
			}
			if flags.Changed("out") {
				if cfg.Paths.OutputDir, err = config.ExpandPath(outDir); err != nil {
					return err
				}
			}
			if flags.Changed("format") {
				cfg.Evaluation.Format = strings.ToLower(strings.TrimSpace(format))
			}
			if flags.Changed("workers") {
				cfg.Evaluation.Workers = workers
			}
			if flags.Changed("top") {
				cfg.Evaluation.TopK = top
			}
			if flags.Changed("overwrite") {
				cfg.Evaluation.Overwrite = overwrite
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			report := unevenness.DefaultReportOptions()
			report.TopK = cfg.Evaluation.TopK
			progress, finish := newProgress(quiet)

			res, err := benchmark.Run(cmd.Context(), benchmark.Options{
				DatasetPath:   cfg.Paths.Dataset,
				OutDir:        cfg.Paths.OutputDir,
				Format:        cfg.Evaluation.Format,
				Overwrite:     cfg.Evaluation.Overwrite,
				Read:          cfg.ReadOptions(),
				PrimarySource: cfg.Dataset.PrimarySource,
				Operations:    cfg.Grid.Operations,
				Aggregations:  cfg.Grid.Aggregations,
				Complexities:  cfg.Grid.Complexities,
				Workers:       cfg.Evaluation.Workers,
				Report:        report,
				WriteMetrics:  cfg.Evaluation.Metrics,
				Progress:      progress,
				Logger:        ctx.log(),
			})
			finish()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := message.NewPrinter(language.English)
			d := res.Report.Distribution
			p.Fprintf(out, "Scored %d features (%d defined)\n", d.Features, d.Defined)
			fmt.Fprintln(out, rankingTable(res.Report))
			fmt.Fprintf(out, "Run:       %s\n", res.RunID)
			fmt.Fprintf(out, "Features:  %s\n", res.FeaturesPath)
			fmt.Fprintf(out, "Scores:    %s\n", res.ScoresPath)
			fmt.Fprintf(out, "Summary:   %s\n", res.SummaryPath)
			fmt.Fprintf(out, "Manifest:  %s\n", res.ManifestPath)
			if res.MetricsPath != "" {
				fmt.Fprintf(out, "Metrics:   %s\n", res.MetricsPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Recording dataset (CSV)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory")
	cmd.Flags().StringVar(&format, "format", "", "Table format: parquet|csv")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Worker goroutines (0 = all CPUs)")
	cmd.Flags().IntVar(&top, "top", 0, "Number of ranked features to print")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Allow writing into a non-empty output directory")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Disable the progress bar")
	return cmd
}

func rankingTable(r unevenness.Report) string {
	rows := make([][]string, 0, len(r.Top))
	for i, sf := range r.Top {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			sf.Feature,
			unevenness.FormatScore(sf.Grading),
			unevenness.FormatScore(sf.Consistency),
			unevenness.FormatScore(sf.Overall),
		})
	}
	return renderTable(
		[]string{"#", "Feature", "Grading", "Consistency", "Overall"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight},
	)
}
