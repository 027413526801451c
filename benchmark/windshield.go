package benchmark

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/lucasjlepore/unevenness-grade/aspp"
	"github.com/lucasjlepore/unevenness-grade/dataset"
	"github.com/lucasjlepore/unevenness-grade/score"
)

// DefaultPipelines are the fixed pipelines of the mounting study.
func DefaultPipelines() []PipelineSpec {
	return []PipelineSpec{
		{Operations: nil, Aggregation: "RMS"},
		{Operations: []string{"avg-5"}, Aggregation: "STD"},
		{Operations: []string{"avg-3", "avg-3"}, Aggregation: "RMS"},
	}
}

// DefaultExperiments are the controlled mounting experiments of the field
// study.
func DefaultExperiments() []Experiment {
	return []Experiment{
		{Name: "Mounting Strength", Accounts: []string{"Mounting Strength Test"}},
		{Name: "Mounting Type", Accounts: []string{"Mounting Type Test"}},
		{Name: "Mounting Position", Accounts: []string{"Unevenness Test Position"}},
		{Name: "Phone Type", Accounts: []string{"Phone Type Test", "Phone Type Test 2"}},
	}
}

// RunWindshield evaluates the fixed pipelines on every experiment and scores
// how consistent each feature stays across the experiment's conditions.
func RunWindshield(ctx context.Context, opts WindshieldOptions) (*WindshieldResult, error) {
	if strings.TrimSpace(opts.DatasetPath) == "" {
		return nil, fmt.Errorf("dataset path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	specs := opts.Pipelines
	if len(specs) == 0 {
		specs = DefaultPipelines()
	}
	experiments := opts.Experiments
	if len(experiments) == 0 {
		experiments = DefaultExperiments()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pipelines := make([]*aspp.Pipeline, 0, len(specs))
	for _, spec := range specs {
		p, err := aspp.New(spec.Operations, spec.Aggregation)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, p)
	}

	unlock, err := lockOutputDir(opts.OutDir)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if err := dataset.EnsureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	read := opts.Read
	read.Needs |= dataset.NeedNotes
	ds, err := dataset.LoadFile(opts.DatasetPath, read)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	ev := aspp.NewEvaluator(aspp.EvaluatorOptions{Workers: opts.Workers, Logger: logger})

	res := &WindshieldResult{
		RunID:     runID,
		OutputDir: opts.OutDir,
		CSVPath:   filepath.Join(opts.OutDir, "windshield_scores.csv"),
		JSONPath:  filepath.Join(opts.OutDir, "windshield_scores.json"),
	}
	for _, exp := range experiments {
		sub := ds.WithAccounts(exp.Accounts...)
		er := ExperimentResult{Name: exp.Name, Accounts: exp.Accounts, Rows: sub.Len()}
		if sub.Len() == 0 {
			logger.Warn("experiment has no rows", "experiment", exp.Name, "accounts", exp.Accounts)
			for _, p := range pipelines {
				er.Scores = append(er.Scores, GroupScore{Feature: p.CanonicalID()})
			}
			res.Experiments = append(res.Experiments, er)
			continue
		}

		table, err := ev.EvaluateRaw(ctx, pipelines, sub.RawSignals())
		if err != nil {
			return nil, fmt.Errorf("experiment %q: %w", exp.Name, err)
		}
		scorer := score.NewScorer(sub.Rows, score.Options{})
		er.Groups = scorer.Notes()
		for _, id := range table.IDs() {
			v, err := scorer.RawConsistencyScore(table, id)
			if err != nil {
				return nil, fmt.Errorf("experiment %q: %w", exp.Name, err)
			}
			er.Scores = append(er.Scores, GroupScore{Feature: id, Consistency: finite(v)})
		}
		logger.Info("experiment scored", "experiment", exp.Name, "rows", sub.Len(), "groups", len(er.Groups))
		res.Experiments = append(res.Experiments, er)
	}

	if err := writeWindshieldCSV(res.CSVPath, res.Experiments); err != nil {
		return nil, fmt.Errorf("write windshield_scores.csv: %w", err)
	}
	if err := dataset.WriteJSON(res.JSONPath, res); err != nil {
		return nil, fmt.Errorf("write windshield_scores.json: %w", err)
	}
	return res, nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func writeWindshieldCSV(path string, experiments []ExperimentResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"experiment", "feature", "consistency", "rows", "groups"}); err != nil {
		return err
	}
	for _, er := range experiments {
		for _, gs := range er.Scores {
			consistency := ""
			if gs.Consistency != nil {
				consistency = dataset.FormatFloat(*gs.Consistency)
			}
			row := []string{er.Name, gs.Feature, consistency, strconv.Itoa(er.Rows), strconv.Itoa(len(er.Groups))}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}
