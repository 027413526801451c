package config

import "github.com/lucasjlepore/unevenness-grade/dataset"

// DefaultOperations is the candidate operation set of a full benchmark.
func DefaultOperations() []string {
	return []string{
		"avg-3", "avg-5", "avg-7", "avg-9", "avg-11",
		"rmp-3", "rmp-5", "rmp-7", "rmp-9", "rmp-11",
		"bnd-00/25", "bnd-10/40", "bnd-25/50",
		"bnd-00/10", "bnd-10/20", "bnd-20/30", "bnd-30/40", "bnd-40/50",
	}
}

// DefaultAggregations lists every aggregation id.
func DefaultAggregations() []string {
	return []string{"RMS", "STD", "MAX", "MOM", "MFFT"}
}

// DefaultPipelines are the fixed pipelines compared in the windshield study.
func DefaultPipelines() []Pipeline {
	return []Pipeline{
		{Operations: []string{}, Aggregation: "RMS"},
		{Operations: []string{"avg-5"}, Aggregation: "STD"},
		{Operations: []string{"avg-3", "avg-3"}, Aggregation: "RMS"},
	}
}

// DefaultExperiments are the controlled mounting experiments.
func DefaultExperiments() []Experiment {
	return []Experiment{
		{Name: "Mounting Strength", Accounts: []string{"Mounting Strength Test"}},
		{Name: "Mounting Type", Accounts: []string{"Mounting Type Test"}},
		{Name: "Mounting Position", Accounts: []string{"Unevenness Test Position"}},
		{Name: "Phone Type", Accounts: []string{"Phone Type Test", "Phone Type Test 2"}},
	}
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Paths: Paths{
			Dataset:             "./data/zeb_data_set.csv",
			OutputDir:           "./results/evaluate-aspp",
			WindshieldDataset:   "./data/windshield_data_set.csv",
			WindshieldOutputDir: "./results/analyze-windshield-parameters",
		},
		Grid: Grid{
			Operations:   DefaultOperations(),
			Aggregations: DefaultAggregations(),
			Complexities: []int{0, 1, 2},
		},
		Evaluation: Evaluation{
			Workers: 0,
			Format:  "parquet",
			TopK:    10,
			Metrics: true,
		},
		Dataset: Dataset{
			Columns:        dataset.DefaultColumns(),
			PrimarySource:  dataset.PrimarySource,
			DefaultSource:  dataset.PrimarySource,
			VehicleAliases: dataset.DefaultVehicleAliases(),
		},
		Windshield: Windshield{
			Pipelines:   DefaultPipelines(),
			Experiments: DefaultExperiments(),
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}
