package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) applyEnv() error {
	if v, ok := lookupEnv("ASPP_DATASET"); ok {
		c.Paths.Dataset = v
	}
	if v, ok := lookupEnv("ASPP_OUTPUT_DIR"); ok {
		c.Paths.OutputDir = v
	}
	if v, ok := lookupEnv("ASPP_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ASPP_WORKERS: %w", err)
		}
		c.Evaluation.Workers = n
	}
	if v, ok := lookupEnv("ASPP_FORMAT"); ok {
		c.Evaluation.Format = v
	}
	if v, ok := lookupEnv("ASPP_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv("ASPP_LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.Dataset, err = expandPath(strings.TrimSpace(c.Paths.Dataset)); err != nil {
		return fmt.Errorf("paths.dataset: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.WindshieldDataset, err = expandPath(strings.TrimSpace(c.Paths.WindshieldDataset)); err != nil {
		return fmt.Errorf("paths.windshield_dataset: %w", err)
	}
	if c.Paths.WindshieldOutputDir, err = expandPath(strings.TrimSpace(c.Paths.WindshieldOutputDir)); err != nil {
		return fmt.Errorf("paths.windshield_output_dir: %w", err)
	}

	c.Evaluation.Format = strings.ToLower(strings.TrimSpace(c.Evaluation.Format))
	if c.Evaluation.Format == "" {
		c.Evaluation.Format = "parquet"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "auto"
	}

	c.Grid.Operations = trimAll(c.Grid.Operations)
	c.Grid.Aggregations = trimAll(c.Grid.Aggregations)
	for i := range c.Windshield.Pipelines {
		c.Windshield.Pipelines[i].Operations = trimAll(c.Windshield.Pipelines[i].Operations)
		c.Windshield.Pipelines[i].Aggregation = strings.TrimSpace(c.Windshield.Pipelines[i].Aggregation)
	}
	c.Dataset.PrimarySource = strings.TrimSpace(c.Dataset.PrimarySource)
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
