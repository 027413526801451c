package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasjlepore/unevenness-grade/benchmark"
	"github.com/lucasjlepore/unevenness-grade/internal/config"
)

func newWindshieldCommand(ctx *commandContext) *cobra.Command {
	var (
		datasetPath string
		outDir      string
		overwrite   bool
	)

	cmd := &cobra.Command{
		Use:   "windshield",
		Short: "Score fixed pipelines on the controlled mounting experiments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source := cfg.Paths.WindshieldDataset
			if cmd.Flags().Changed("dataset") {
				if source, err = config.ExpandPath(datasetPath); err != nil {
					return err
				}
			}
			target := cfg.Paths.WindshieldOutputDir
			if cmd.Flags().Changed("out") {
				if target, err = config.ExpandPath(outDir); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("overwrite") {
				overwrite = cfg.Evaluation.Overwrite
			}

			res, err := benchmark.RunWindshield(cmd.Context(), benchmark.WindshieldOptions{
				DatasetPath: source,
				OutDir:      target,
				Overwrite:   overwrite,
				Read:        cfg.WindshieldReadOptions(),
				Pipelines:   pipelineSpecs(cfg.Windshield.Pipelines),
				Experiments: experiments(cfg.Windshield.Experiments),
				Workers:     cfg.Evaluation.Workers,
				Logger:      ctx.log(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, windshieldTable(res))
			fmt.Fprintf(out, "Scores:  %s\n", res.CSVPath)
			fmt.Fprintf(out, "JSON:    %s\n", res.JSONPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Windshield experiment dataset (CSV)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Allow writing into a non-empty output directory")
	return cmd
}

func pipelineSpecs(in []config.Pipeline) []benchmark.PipelineSpec {
	out := make([]benchmark.PipelineSpec, len(in))
	for i, p := range in {
		out[i] = benchmark.PipelineSpec{Operations: p.Operations, Aggregation: p.Aggregation}
	}
	return out
}

func experiments(in []config.Experiment) []benchmark.Experiment {
	out := make([]benchmark.Experiment, len(in))
	for i, e := range in {
		out[i] = benchmark.Experiment{Name: e.Name, Accounts: e.Accounts}
	}
	return out
}

func windshieldTable(res *benchmark.WindshieldResult) string {
	var rows [][]string
	for _, er := range res.Experiments {
		for _, gs := range er.Scores {
			consistency := "n/a"
			if gs.Consistency != nil {
				consistency = fmt.Sprintf("%.3f", *gs.Consistency)
			}
			rows = append(rows, []string{
				er.Name,
				gs.Feature,
				consistency,
				fmt.Sprint(er.Rows),
				fmt.Sprint(len(er.Groups)),
			})
		}
	}
	return renderTable(
		[]string{"Experiment", "Feature", "Consistency", "Rows", "Groups"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}
