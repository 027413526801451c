package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/lucasjlepore/unevenness-grade/dataset"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths holds input datasets and output directories.
type Paths struct {
	Dataset             string `toml:"dataset" yaml:"dataset" validate:"required"`
	OutputDir           string `toml:"output_dir" yaml:"output_dir" validate:"required"`
	WindshieldDataset   string `toml:"windshield_dataset" yaml:"windshield_dataset"`
	WindshieldOutputDir string `toml:"windshield_output_dir" yaml:"windshield_output_dir"`
}

// Grid is the pipeline parameter space of a benchmark run.
type Grid struct {
	Operations   []string `toml:"operations" yaml:"operations"`
	Aggregations []string `toml:"aggregations" yaml:"aggregations" validate:"required,min=1"`
	Complexities []int    `toml:"complexities" yaml:"complexities" validate:"required,min=1,dive,min=0,max=4"`
}

// Evaluation controls the worker pool and artifacts.
type Evaluation struct {
	Workers   int    `toml:"workers" yaml:"workers" validate:"min=0"`
	Format    string `toml:"format" yaml:"format" validate:"oneof=csv parquet"`
	Overwrite bool   `toml:"overwrite" yaml:"overwrite"`
	TopK      int    `toml:"top_k" yaml:"top_k" validate:"min=1"`
	Metrics   bool   `toml:"metrics" yaml:"metrics"`
}

// Dataset describes how input files are read.
type Dataset struct {
	Columns        dataset.Columns   `toml:"columns" yaml:"columns"`
	PrimarySource  string            `toml:"primary_source" yaml:"primary_source" validate:"required"`
	DefaultSource  string            `toml:"default_source" yaml:"default_source"`
	BucketWidth    float64           `toml:"bucket_width" yaml:"bucket_width" validate:"min=0"`
	VehicleAliases map[string]string `toml:"vehicle_aliases" yaml:"vehicle_aliases"`
}

// Pipeline names one fixed pipeline.
type Pipeline struct {
	Operations  []string `toml:"operations" yaml:"operations"`
	Aggregation string   `toml:"aggregation" yaml:"aggregation" validate:"required"`
}

// Experiment is one controlled windshield experiment: the accounts it covers.
type Experiment struct {
	Name     string   `toml:"name" yaml:"name" validate:"required"`
	Accounts []string `toml:"accounts" yaml:"accounts" validate:"required,min=1,dive,required"`
}

// Windshield holds the controlled mounting experiments.
type Windshield struct {
	Pipelines   []Pipeline   `toml:"pipelines" yaml:"pipelines" validate:"dive"`
	Experiments []Experiment `toml:"experiments" yaml:"experiments" validate:"dive"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" yaml:"format" validate:"oneof=json console auto"`
}

// Config encapsulates every setting of the aspp command.
//
// Sections:
//   - Paths: datasets and output directories
//   - Grid: candidate operations, aggregations and complexities
//   - Evaluation: workers, output format, ranking size, metrics
//   - Dataset: column contract and derived column rules
//   - Windshield: fixed pipelines and experiments of the mounting study
//   - Logging: log level and format
type Config struct {
	Paths      Paths      `toml:"paths" yaml:"paths"`
	Grid       Grid       `toml:"grid" yaml:"grid"`
	Evaluation Evaluation `toml:"evaluation" yaml:"evaluation"`
	Dataset    Dataset    `toml:"dataset" yaml:"dataset"`
	Windshield Windshield `toml:"windshield" yaml:"windshield"`
	Logging    Logging    `toml:"logging" yaml:"logging"`
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/aspp/config.toml")
}

// Load locates, parses, and validates a configuration file. A .env file in
// the working directory and ASPP_* variables override file values.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		// Arrays of tables decode over existing elements; start them empty.
		cfg.Windshield = Windshield{}
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
		if cfg.Windshield.Pipelines == nil {
			cfg.Windshield.Pipelines = DefaultPipelines()
		}
		if cfg.Windshield.Experiments == nil {
			cfg.Windshield.Experiments = DefaultExperiments()
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("aspp.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// ExpandPath resolves ~ and returns an absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Sample returns the embedded sample configuration.
func Sample() string { return sampleConfig }

// ReadOptions converts the dataset section for the grid benchmark.
func (c *Config) ReadOptions() dataset.ReadOptions {
	return dataset.ReadOptions{
		Columns:        c.Dataset.Columns,
		Needs:          dataset.NeedGrading | dataset.NeedSegments,
		DefaultSource:  c.Dataset.DefaultSource,
		VehicleAliases: c.Dataset.VehicleAliases,
		BucketWidth:    c.Dataset.BucketWidth,
	}
}

// WindshieldReadOptions converts the dataset section for the windshield
// experiments, which group by note instead of segment.
func (c *Config) WindshieldReadOptions() dataset.ReadOptions {
	opts := c.ReadOptions()
	opts.Needs = dataset.NeedNotes
	return opts
}
