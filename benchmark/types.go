package benchmark

import (
	"log/slog"
	"time"

	unevenness "github.com/lucasjlepore/unevenness-grade"
	"github.com/lucasjlepore/unevenness-grade/dataset"
)

// Options configures a grid search run.
type Options struct {
	DatasetPath string
	OutDir      string
	Format      string // parquet|csv
	Overwrite   bool

	Read          dataset.ReadOptions
	PrimarySource string

	Operations   []string
	Aggregations []string
	Complexities []int
	Workers      int

	Report       unevenness.ReportOptions
	WriteMetrics bool

	// Progress receives pipelines done and the total over all complexities.
	Progress func(done, total int)
	Logger   *slog.Logger
}

// Result returns generated output paths and the ranking.
type Result struct {
	RunID        string           `json:"run_id"`
	OutputDir    string           `json:"output_dir"`
	FeaturesPath string           `json:"features_path"`
	ScoresPath   string           `json:"scores_path"`
	SummaryPath  string           `json:"summary_path"`
	ManifestPath string           `json:"manifest_path"`
	MetricsPath  string           `json:"metrics_path,omitempty"`
	Report       unevenness.Report `json:"-"`
}

// Manifest describes one run for later inspection.
type Manifest struct {
	RunID        string            `json:"run_id"`
	Dataset      string            `json:"dataset"`
	Rows         int               `json:"rows"`
	Format       string            `json:"format"`
	Operations   []string          `json:"operations"`
	Aggregations []string          `json:"aggregations"`
	Batches      []BatchInfo       `json:"batches"`
	Features     int               `json:"features"`
	Defined      int               `json:"defined"`
	Workers      int               `json:"workers"`
	StartedAt    time.Time         `json:"started_at"`
	Timings      Timings           `json:"timings"`
	ColumnMap    map[string]string `json:"parquet_column_map,omitempty"`
	Artifacts    []string          `json:"artifacts"`
}

// BatchInfo is one evaluated complexity.
type BatchInfo struct {
	Complexity int     `json:"complexity"`
	Pipelines  int     `json:"pipelines"`
	Seconds    float64 `json:"seconds"`
}

// Timings splits a run into its stages, in seconds.
type Timings struct {
	LoadS     float64 `json:"load_s"`
	DecodeS   float64 `json:"decode_s"`
	EvaluateS float64 `json:"evaluate_s"`
	ScoreS    float64 `json:"score_s"`
	WriteS    float64 `json:"write_s"`
	TotalS    float64 `json:"total_s"`
}

// PipelineSpec names one fixed pipeline by its operation and aggregation ids.
type PipelineSpec struct {
	Operations  []string
	Aggregation string
}

// Experiment is a controlled mounting experiment: the accounts whose rows
// it covers. Within an experiment, rows are grouped by note.
type Experiment struct {
	Name     string
	Accounts []string
}

// WindshieldOptions configures the mounting experiments.
type WindshieldOptions struct {
	DatasetPath string
	OutDir      string
	Overwrite   bool
	Read        dataset.ReadOptions
	Pipelines   []PipelineSpec
	Experiments []Experiment
	Workers     int
	Logger      *slog.Logger
}

// WindshieldResult lists the consistency of every pipeline per experiment.
type WindshieldResult struct {
	RunID       string             `json:"run_id"`
	OutputDir   string             `json:"output_dir"`
	CSVPath     string             `json:"csv_path"`
	JSONPath    string             `json:"json_path"`
	Experiments []ExperimentResult `json:"experiments"`
}

// ExperimentResult is one experiment's scores.
type ExperimentResult struct {
	Name     string       `json:"name"`
	Accounts []string     `json:"accounts"`
	Rows     int          `json:"rows"`
	Groups   []string     `json:"groups"`
	Scores   []GroupScore `json:"scores"`
}

// GroupScore is the raw consistency of one feature across the note groups
// of an experiment.
type GroupScore struct {
	Feature     string   `json:"feature"`
	Consistency *float64 `json:"consistency"`
}
