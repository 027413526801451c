package aspp

import (
	"fmt"

	"github.com/lucasjlepore/unevenness-grade/signal"
)

// Config is one point of a family's parameter grid.
type Config struct {
	OperationIDs  []string `json:"operations"`
	AggregationID string   `json:"aggregation"`
}

// Family is the grid of every pipeline with Complexity operation slots,
// each slot drawn from Operations, followed by one of Aggregations.
type Family struct {
	Operations   []string
	Aggregations []string
	Complexity   int
}

// NewFamily validates the grid definition. Identifiers are parsed when the
// family is materialized.
func NewFamily(operationIDs, aggregationIDs []string, complexity int) (*Family, error) {
	if complexity < 0 {
		return nil, fmt.Errorf("%w: complexity %d must not be negative", signal.ErrInvalidParameter, complexity)
	}
	if len(aggregationIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one aggregation is required", signal.ErrInvalidParameter)
	}
	if complexity > 0 && len(operationIDs) == 0 {
		return nil, fmt.Errorf("%w: complexity %d needs candidate operations", signal.ErrInvalidParameter, complexity)
	}
	return &Family{
		Operations:   append([]string(nil), operationIDs...),
		Aggregations: append([]string(nil), aggregationIDs...),
		Complexity:   complexity,
	}, nil
}

// Count is |Operations|^Complexity * |Aggregations|.
func (f *Family) Count() int {
	n := len(f.Aggregations)
	for i := 0; i < f.Complexity; i++ {
		n *= len(f.Operations)
	}
	return n
}

// Configs calls fn for every grid point in order: slot 1 varies slowest,
// the aggregation fastest. Returning false stops the walk.
func (f *Family) Configs(fn func(Config) bool) {
	if f.Count() == 0 {
		return
	}
	slots := make([]int, f.Complexity)
	for {
		ops := make([]string, f.Complexity)
		for i, idx := range slots {
			ops[i] = f.Operations[idx]
		}
		for _, agg := range f.Aggregations {
			if !fn(Config{OperationIDs: ops, AggregationID: agg}) {
				return
			}
		}

		// Odometer increment, last slot first.
		i := f.Complexity - 1
		for ; i >= 0; i-- {
			slots[i]++
			if slots[i] < len(f.Operations) {
				break
			}
			slots[i] = 0
		}
		if i < 0 {
			return
		}
	}
}

// Create materializes every pipeline of the grid.
func (f *Family) Create() ([]*Pipeline, error) {
	out := make([]*Pipeline, 0, f.Count())
	var err error
	f.Configs(func(c Config) bool {
		var p *Pipeline
		p, err = New(c.OperationIDs, c.AggregationID)
		if err != nil {
			err = fmt.Errorf("family complexity %d: %w", f.Complexity, err)
			return false
		}
		out = append(out, p)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
