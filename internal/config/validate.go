package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/lucasjlepore/unevenness-grade/signal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate ensures the configuration contains usable values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}

	for _, id := range c.Grid.Operations {
		if _, err := signal.ParseOperation(id); err != nil {
			return fmt.Errorf("grid.operations: %w", err)
		}
	}
	for _, id := range c.Grid.Aggregations {
		if _, err := signal.ParseAggregation(id); err != nil {
			return fmt.Errorf("grid.aggregations: %w", err)
		}
	}
	seen := make(map[int]bool, len(c.Grid.Complexities))
	for _, k := range c.Grid.Complexities {
		if seen[k] {
			return fmt.Errorf("grid.complexities: %d listed twice", k)
		}
		seen[k] = true
	}

	for i, p := range c.Windshield.Pipelines {
		for _, id := range p.Operations {
			if _, err := signal.ParseOperation(id); err != nil {
				return fmt.Errorf("windshield.pipelines[%d]: %w", i, err)
			}
		}
		if _, err := signal.ParseAggregation(p.Aggregation); err != nil {
			return fmt.Errorf("windshield.pipelines[%d]: %w", i, err)
		}
	}
	names := make(map[string]bool, len(c.Windshield.Experiments))
	for _, e := range c.Windshield.Experiments {
		if names[e.Name] {
			return fmt.Errorf("windshield.experiments: %q listed twice", e.Name)
		}
		names[e.Name] = true
	}
	return nil
}
