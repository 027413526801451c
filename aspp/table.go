package aspp

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateFeatureID reports two configurations producing the same canonical id.
	ErrDuplicateFeatureID = errors.New("duplicate feature id")
	// ErrRowMismatch reports a feature column whose length differs from the table's row count.
	ErrRowMismatch = errors.New("feature column length mismatch")
)

// FeatureTable maps canonical pipeline ids to row aligned feature values.
type FeatureTable struct {
	rows    int
	order   []string
	columns map[string][]float64
}

// NewFeatureTable returns an empty table for a dataset with rows rows.
func NewFeatureTable(rows int) *FeatureTable {
	return &FeatureTable{rows: rows, columns: make(map[string][]float64)}
}

// Add inserts one column. Existing ids are never overwritten.
func (t *FeatureTable) Add(id string, values []float64) error {
	if _, exists := t.columns[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFeatureID, id)
	}
	if len(values) != t.rows {
		return fmt.Errorf("%w: %s has %d values for %d rows", ErrRowMismatch, id, len(values), t.rows)
	}
	t.columns[id] = values
	t.order = append(t.order, id)
	return nil
}

// Merge appends every column of others, in order.
func (t *FeatureTable) Merge(others ...*FeatureTable) error {
	for _, other := range others {
		if other == nil {
			continue
		}
		for _, id := range other.order {
			if err := t.Add(id, other.columns[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

// IDs returns the feature ids in insertion order.
func (t *FeatureTable) IDs() []string { return append([]string(nil), t.order...) }

// Column returns the values of one feature.
func (t *FeatureTable) Column(id string) ([]float64, bool) {
	values, ok := t.columns[id]
	return values, ok
}

// Len is the number of feature columns.
func (t *FeatureTable) Len() int { return len(t.order) }

// Rows is the number of dataset rows every column covers.
func (t *FeatureTable) Rows() int { return t.rows }

// Value returns the feature value of one row; ok is false for unknown ids
// and out of range rows.
func (t *FeatureTable) Value(id string, row int) (float64, bool) {
	values, ok := t.columns[id]
	if !ok || row < 0 || row >= len(values) {
		return 0, false
	}
	return values[row], true
}
