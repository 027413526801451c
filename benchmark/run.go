package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	unevenness "github.com/lucasjlepore/unevenness-grade"
	"github.com/lucasjlepore/unevenness-grade/aspp"
	"github.com/lucasjlepore/unevenness-grade/dataset"
	"github.com/lucasjlepore/unevenness-grade/score"
)

// ErrOutputLocked is returned when another run holds the output directory.
var ErrOutputLocked = errors.New("output directory is locked by another run")

// Run executes the full grid search and writes all artifacts.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.DatasetPath) == "" {
		return nil, fmt.Errorf("dataset path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	if len(opts.Complexities) == 0 {
		return nil, fmt.Errorf("at least one complexity is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	unlock, err := lockOutputDir(opts.OutDir)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if err := dataset.EnsureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	started := time.Now()
	logger = logger.With("run_id", runID)
	var timings Timings

	families := make([]*aspp.Family, 0, len(opts.Complexities))
	total := 0
	for _, k := range opts.Complexities {
		fam, err := aspp.NewFamily(opts.Operations, opts.Aggregations, k)
		if err != nil {
			return nil, fmt.Errorf("complexity %d: %w", k, err)
		}
		families = append(families, fam)
		total += fam.Count()
	}

	mark := time.Now()
	ds, err := dataset.LoadFile(opts.DatasetPath, opts.Read)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	timings.LoadS = time.Since(mark).Seconds()
	logger.Info("dataset loaded", "path", opts.DatasetPath, "rows", ds.Len(), "pipelines", total)

	mark = time.Now()
	signals, err := aspp.DecodeSignals(ds.RawSignals())
	if err != nil {
		return nil, fmt.Errorf("decode signals: %w", err)
	}
	timings.DecodeS = time.Since(mark).Seconds()

	reg := prometheus.NewRegistry()
	metrics, err := aspp.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	mark = time.Now()
	merged := aspp.NewFeatureTable(ds.Len())
	batches := make([]BatchInfo, 0, len(families))
	offset := 0
	workers := 0
	for i, fam := range families {
		pipelines, err := fam.Create()
		if err != nil {
			return nil, err
		}
		base := offset
		ev := aspp.NewEvaluator(aspp.EvaluatorOptions{
			Workers: opts.Workers,
			Metrics: metrics,
			Logger:  logger,
			Progress: func(done, _ int) {
				if opts.Progress != nil {
					opts.Progress(base+done, total)
				}
			},
		})
		workers = ev.Workers()

		batchStart := time.Now()
		table, err := ev.Evaluate(ctx, pipelines, signals)
		if err != nil {
			return nil, fmt.Errorf("complexity %d: %w", opts.Complexities[i], err)
		}
		if err := merged.Merge(table); err != nil {
			return nil, fmt.Errorf("merge complexity %d: %w", opts.Complexities[i], err)
		}
		batches = append(batches, BatchInfo{
			Complexity: opts.Complexities[i],
			Pipelines:  len(pipelines),
			Seconds:    time.Since(batchStart).Seconds(),
		})
		offset += len(pipelines)
		logger.Info("batch evaluated", "complexity", opts.Complexities[i], "pipelines", len(pipelines))
	}
	timings.EvaluateS = time.Since(mark).Seconds()

	mark = time.Now()
	scorer := score.NewScorer(ds.Rows, score.Options{PrimarySource: opts.PrimarySource})
	scored, err := scorer.ScoreAll(merged)
	if err != nil {
		return nil, fmt.Errorf("score features: %w", err)
	}
	report := unevenness.BuildReport(scored, opts.Report)
	timings.ScoreS = time.Since(mark).Seconds()
	logger.Info("features scored",
		"features", len(scored),
		"defined", report.Distribution.Defined,
		"setups", len(scorer.Setups()),
		"common_segments", len(scorer.CommonSegments()),
	)

	mark = time.Now()
	res := &Result{
		RunID:        runID,
		OutputDir:    opts.OutDir,
		FeaturesPath: filepath.Join(opts.OutDir, "features."+format),
		ScoresPath:   filepath.Join(opts.OutDir, "scores."+format),
		SummaryPath:  filepath.Join(opts.OutDir, "summary.md"),
		ManifestPath: filepath.Join(opts.OutDir, "manifest.json"),
		Report:       report,
	}

	var columnMap map[string]string
	switch format {
	case "csv":
		if err := dataset.WriteAugmentedCSV(res.FeaturesPath, ds, merged); err != nil {
			return nil, fmt.Errorf("write features csv: %w", err)
		}
		if err := writeScoresCSV(res.ScoresPath, report.Ranked); err != nil {
			return nil, fmt.Errorf("write scores csv: %w", err)
		}
	case "parquet":
		if columnMap, err = dataset.WriteAugmentedParquet(res.FeaturesPath, ds, merged); err != nil {
			return nil, fmt.Errorf("write features parquet: %w", err)
		}
		if err := writeScoresParquet(res.ScoresPath, report.Ranked); err != nil {
			return nil, fmt.Errorf("write scores parquet: %w", err)
		}
	}

	notes := unevenness.BuildRankingNotes(report, unevenness.RunInfo{
		RunID:        runID,
		Dataset:      filepath.Base(opts.DatasetPath),
		Rows:         ds.Len(),
		Pipelines:    total,
		Complexities: opts.Complexities,
		Workers:      workers,
		Elapsed:      time.Since(started),
		GeneratedAt:  time.Now(),
	})
	if err := os.WriteFile(res.SummaryPath, []byte(notes), 0o644); err != nil {
		return nil, fmt.Errorf("write summary.md: %w", err)
	}

	if opts.WriteMetrics {
		res.MetricsPath = filepath.Join(opts.OutDir, "metrics.prom")
		if err := prometheus.WriteToTextfile(res.MetricsPath, reg); err != nil {
			return nil, fmt.Errorf("write metrics.prom: %w", err)
		}
	}
	timings.WriteS = time.Since(mark).Seconds()
	timings.TotalS = time.Since(started).Seconds()

	artifacts := []string{
		filepath.Base(res.FeaturesPath),
		filepath.Base(res.ScoresPath),
		filepath.Base(res.SummaryPath),
	}
	if res.MetricsPath != "" {
		artifacts = append(artifacts, filepath.Base(res.MetricsPath))
	}
	manifest := Manifest{
		RunID:        runID,
		Dataset:      opts.DatasetPath,
		Rows:         ds.Len(),
		Format:       format,
		Operations:   opts.Operations,
		Aggregations: opts.Aggregations,
		Batches:      batches,
		Features:     merged.Len(),
		Defined:      report.Distribution.Defined,
		Workers:      workers,
		StartedAt:    started.UTC(),
		Timings:      timings,
		ColumnMap:    columnMap,
		Artifacts:    artifacts,
	}
	if err := dataset.WriteJSON(res.ManifestPath, manifest); err != nil {
		return nil, fmt.Errorf("write manifest.json: %w", err)
	}

	logger.Info("run complete", "out", opts.OutDir, "elapsed", time.Since(started).Round(time.Millisecond))
	return res, nil
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return format, nil
}

// lockOutputDir takes an exclusive lock on a sibling file of dir so that
// two runs never write the same directory.
func lockOutputDir(dir string) (func(), error) {
	clean := filepath.Clean(dir)
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return nil, fmt.Errorf("create output parent: %w", err)
	}
	lock := flock.New(clean + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, dir)
	}
	return func() { _ = lock.Unlock() }, nil
}
