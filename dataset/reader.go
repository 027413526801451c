package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lucasjlepore/unevenness-grade/signal"
)

// ErrMissingColumn reports a required column absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// LoadFile reads a dataset from a comma-delimited file.
func LoadFile(path string, opts ReadOptions) (*Dataset, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("dataset path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return ds, nil
}

type columnIndex struct {
	raw, vehicle, device, mounting, source, segmentID, segmentType int
	velocity, bucket, target, note, account, setup                 int
}

// Read parses a header line followed by one line per recorded segment.
func Read(r io.Reader, opts ReadOptions) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	header = append([]string(nil), header...)

	idx, err := resolveColumns(header, opts)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Header: header}
	if idx.setup < 0 {
		ds.Derived = append(ds.Derived, SetupColumn)
	}
	if idx.source < 0 {
		ds.Derived = append(ds.Derived, SourceColumn)
	}
	if idx.target >= 0 {
		ds.Derived = append(ds.Derived, GradeColumn)
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("line %d: %d fields for %d columns", line, len(record), len(header))
		}
		row, err := parseRow(record, idx, header, opts)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row.Index = len(ds.Rows)
		ds.Rows = append(ds.Rows, row)
		ds.Records = append(ds.Records, record)
	}
	return ds, nil
}

func resolveColumns(header []string, opts ReadOptions) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	lookup := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}
	c := opts.Columns
	idx := columnIndex{
		raw:         lookup(c.RawSignal),
		vehicle:     lookup(c.Vehicle),
		device:      lookup(c.Device),
		mounting:    lookup(c.Mounting),
		source:      lookup(c.Source),
		segmentID:   lookup(c.SegmentID),
		segmentType: lookup(c.SegmentType),
		velocity:    lookup(c.Velocity),
		bucket:      lookup(c.VelocityBucket),
		target:      lookup(c.Target),
		note:        lookup(c.Note),
		account:     lookup(c.Account),
		setup:       lookup(c.Setup),
	}

	type requirement struct {
		role, name string
		at         int
	}
	required := []requirement{{"raw_signal", c.RawSignal, idx.raw}}
	if opts.Needs&NeedGrading != 0 {
		bucket := idx.bucket
		if bucket < 0 && opts.BucketWidth > 0 {
			bucket = idx.velocity
		}
		required = append(required,
			requirement{"velocity_bucket", c.VelocityBucket, bucket},
			requirement{"target", c.Target, idx.target},
		)
	}
	if opts.Needs&NeedSegments != 0 {
		required = append(required,
			requirement{"vehicle", c.Vehicle, idx.vehicle},
			requirement{"device", c.Device, idx.device},
			requirement{"segment_id", c.SegmentID, idx.segmentID},
		)
	}
	if opts.Needs&NeedNotes != 0 {
		required = append(required, requirement{"note", c.Note, idx.note})
	}
	for _, req := range required {
		if req.at < 0 {
			return idx, fmt.Errorf("%w: %s (%q)", ErrMissingColumn, req.role, req.name)
		}
	}
	return idx, nil
}

func parseRow(record []string, idx columnIndex, header []string, opts ReadOptions) (Row, error) {
	cell := func(i int) string {
		if i < 0 {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := Row{
		Vehicle:     cell(idx.vehicle),
		Device:      cell(idx.device),
		Mounting:    cell(idx.mounting),
		Source:      cell(idx.source),
		SegmentType: cell(idx.segmentType),
		Note:        cell(idx.note),
		Account:     cell(idx.account),
		Setup:       cell(idx.setup),
	}
	if alias, ok := opts.VehicleAliases[row.Vehicle]; ok {
		row.Vehicle = alias
	}
	if idx.source < 0 {
		row.Source = opts.DefaultSource
	}
	if idx.setup < 0 {
		row.Setup = row.Device + row.Vehicle + row.Mounting
	}
	if idx.raw >= 0 && !signal.IsMissing(record[idx.raw]) {
		raw := record[idx.raw]
		row.RawSignal = &raw
	}

	var err error
	if row.Velocity, err = parseNumber(record, idx.velocity, header); err != nil {
		return row, err
	}
	if row.VelocityBucket, err = parseNumber(record, idx.bucket, header); err != nil {
		return row, err
	}
	if idx.bucket < 0 && opts.BucketWidth > 0 && row.Velocity != nil {
		b := roundToNearest(*row.Velocity, opts.BucketWidth)
		row.VelocityBucket = &b
	}
	if row.Target, err = parseNumber(record, idx.target, header); err != nil {
		return row, err
	}
	if row.Target != nil {
		row.Grade = DigitizeGrade(*row.Target)
	}

	segment, err := parseNumber(record, idx.segmentID, header)
	if err != nil {
		return row, err
	}
	if segment != nil {
		if *segment != math.Trunc(*segment) {
			return row, fmt.Errorf("column %q: segment id %v is not an integer", header[idx.segmentID], *segment)
		}
		id := int(*segment)
		row.SegmentID = &id
	}
	return row, nil
}

// parseNumber returns nil for absent columns and missing cells.
func parseNumber(record []string, i int, header []string) (*float64, error) {
	if i < 0 {
		return nil, nil
	}
	text := strings.TrimSpace(record[i])
	if signal.IsMissing(text) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", header[i], err)
	}
	if math.IsNaN(v) {
		return nil, nil
	}
	return &v, nil
}

func roundToNearest(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}
