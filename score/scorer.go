package score

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lucasjlepore/unevenness-grade/aspp"
	"github.com/lucasjlepore/unevenness-grade/dataset"
)

// ErrUnknownFeature reports a feature id the table does not hold.
var ErrUnknownFeature = errors.New("unknown feature")

// GroupKey identifies one measurement setup.
type GroupKey struct {
	Vehicle string
	Device  string
}

func (k GroupKey) String() string { return k.Vehicle + "/" + k.Device }

// Options selects the rows a Scorer uses.
type Options struct {
	// PrimarySource restricts grading and segment consistency; empty means
	// dataset.PrimarySource.
	PrimarySource string
}

// ScoredFeature is one row of the score table.
type ScoredFeature struct {
	Feature     string
	Grading     float64
	Consistency float64
	Overall     float64
}

// MarshalJSON writes undefined scores as null.
func (s ScoredFeature) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Feature     string   `json:"feature"`
		Grading     *float64 `json:"grading"`
		Consistency *float64 `json:"consistency"`
		Overall     *float64 `json:"overall"`
	}{s.Feature, finiteOrNil(s.Grading), finiteOrNil(s.Consistency), finiteOrNil(s.Overall)})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Table is the read side of a feature table.
type Table interface {
	IDs() []string
	Column(id string) ([]float64, bool)
}

// Scorer holds the row groupings every feature is scored against.
type Scorer struct {
	rows int

	buckets  [][]int
	targets  [][]float64
	setups   []GroupKey
	segments [][]int
	common   []int
	notes    []string
	byNote   [][]int
}

// NewScorer precomputes velocity buckets, segment aligned setup groups and
// note groups for rows.
func NewScorer(rows []dataset.Row, opts Options) *Scorer {
	primary := opts.PrimarySource
	if primary == "" {
		primary = dataset.PrimarySource
	}
	s := &Scorer{rows: len(rows)}

	bucketRows := make(map[float64][]int)
	setupRows := make(map[GroupKey][]int)
	noteRows := make(map[string][]int)
	for i, r := range rows {
		if r.Note != "" {
			noteRows[r.Note] = append(noteRows[r.Note], i)
		}
		if r.Source != primary {
			continue
		}
		if r.VelocityBucket != nil && r.Target != nil && !math.IsNaN(*r.VelocityBucket) {
			bucketRows[*r.VelocityBucket] = append(bucketRows[*r.VelocityBucket], i)
		}
		if r.SegmentID != nil {
			key := GroupKey{Vehicle: r.Vehicle, Device: r.Device}
			setupRows[key] = append(setupRows[key], i)
		}
	}

	bucketKeys := make([]float64, 0, len(bucketRows))
	for k := range bucketRows {
		bucketKeys = append(bucketKeys, k)
	}
	sort.Float64s(bucketKeys)
	for _, k := range bucketKeys {
		idx := bucketRows[k]
		targets := make([]float64, len(idx))
		for j, i := range idx {
			targets[j] = *rows[i].Target
		}
		s.buckets = append(s.buckets, idx)
		s.targets = append(s.targets, targets)
	}

	segmentIDs := make(map[GroupKey][]int, len(setupRows))
	for key, idx := range setupRows {
		ids := make([]int, len(idx))
		for j, i := range idx {
			ids[j] = *rows[i].SegmentID
		}
		segmentIDs[key] = ids
	}
	s.common = CommonSegmentIDs(segmentIDs)
	common := make(map[int]bool, len(s.common))
	for _, id := range s.common {
		common[id] = true
	}
	for key := range setupRows {
		s.setups = append(s.setups, key)
	}
	sort.Slice(s.setups, func(a, b int) bool {
		if s.setups[a].Vehicle != s.setups[b].Vehicle {
			return s.setups[a].Vehicle < s.setups[b].Vehicle
		}
		return s.setups[a].Device < s.setups[b].Device
	})
	for _, key := range s.setups {
		var idx []int
		for _, i := range setupRows[key] {
			if common[*rows[i].SegmentID] {
				idx = append(idx, i)
			}
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return *rows[idx[a]].SegmentID < *rows[idx[b]].SegmentID
		})
		s.segments = append(s.segments, idx)
	}

	for note := range noteRows {
		s.notes = append(s.notes, note)
	}
	sort.Strings(s.notes)
	for _, note := range s.notes {
		s.byNote = append(s.byNote, noteRows[note])
	}
	return s
}

// Setups lists the (vehicle, device) groups in scoring order.
func (s *Scorer) Setups() []GroupKey { return append([]GroupKey(nil), s.setups...) }

// CommonSegments lists the segment ids recorded by every setup.
func (s *Scorer) CommonSegments() []int { return append([]int(nil), s.common...) }

// Notes lists the condition labels of the raw consistency groups.
func (s *Scorer) Notes() []string { return append([]string(nil), s.notes...) }

func (s *Scorer) column(table Table, id string) ([]float64, error) {
	values, ok := table.Column(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, id)
	}
	if len(values) != s.rows {
		return nil, fmt.Errorf("%w: %s has %d values for %d rows", aspp.ErrRowMismatch, id, len(values), s.rows)
	}
	return values, nil
}

func pick(values []float64, idx [][]int) [][]float64 {
	out := make([][]float64, len(idx))
	for g, rows := range idx {
		out[g] = make([]float64, len(rows))
		for j, i := range rows {
			out[g][j] = values[i]
		}
	}
	return out
}

// GradeScore is the velocity stratified absolute correlation of the feature
// with the ground truth.
func (s *Scorer) GradeScore(table Table, id string) (float64, error) {
	values, err := s.column(table, id)
	if err != nil {
		return math.NaN(), err
	}
	return GradeBuckets(pick(values, s.buckets), s.targets), nil
}

// ConsistencyScore compares the feature across setups on their common
// segments, value by value.
func (s *Scorer) ConsistencyScore(table Table, id string) (float64, error) {
	values, err := s.column(table, id)
	if err != nil {
		return math.NaN(), err
	}
	return PairwiseConsistency(pick(values, s.segments), true), nil
}

// RawConsistencyScore compares group means of the feature across note
// groups.
func (s *Scorer) RawConsistencyScore(table Table, id string) (float64, error) {
	values, err := s.column(table, id)
	if err != nil {
		return math.NaN(), err
	}
	return PairwiseConsistency(pick(values, s.byNote), false), nil
}

// Score computes grading, segment consistency and their mean.
func (s *Scorer) Score(table Table, id string) (ScoredFeature, error) {
	grading, err := s.GradeScore(table, id)
	if err != nil {
		return ScoredFeature{}, err
	}
	consistency, err := s.ConsistencyScore(table, id)
	if err != nil {
		return ScoredFeature{}, err
	}
	return ScoredFeature{
		Feature:     id,
		Grading:     grading,
		Consistency: consistency,
		Overall:     Overall(grading, consistency),
	}, nil
}

// ScoreAll scores every feature in table order.
func (s *Scorer) ScoreAll(table Table) ([]ScoredFeature, error) {
	ids := table.IDs()
	out := make([]ScoredFeature, 0, len(ids))
	for _, id := range ids {
		sf, err := s.Score(table, id)
		if err != nil {
			return nil, err
		}
		out = append(out, sf)
	}
	return out, nil
}
