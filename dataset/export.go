package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// Features is the read side of a feature table.
type Features interface {
	IDs() []string
	Column(id string) ([]float64, bool)
}

// EnsureOutputDir creates path and refuses to reuse a non-empty directory
// unless overwrite is set.
func EnsureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// AugmentedHeader is the original header, the derived columns, then one
// column per feature id.
func AugmentedHeader(ds *Dataset, features Features) []string {
	header := make([]string, 0, len(ds.Header)+len(ds.Derived)+len(features.IDs()))
	header = append(header, ds.Header...)
	header = append(header, ds.Derived...)
	return append(header, features.IDs()...)
}

func derivedCells(ds *Dataset, row Row) []string {
	out := make([]string, 0, len(ds.Derived))
	for _, name := range ds.Derived {
		switch name {
		case SetupColumn:
			out = append(out, row.Setup)
		case SourceColumn:
			out = append(out, row.Source)
		case GradeColumn:
			if row.Target == nil {
				out = append(out, "")
			} else {
				out = append(out, strconv.Itoa(row.Grade))
			}
		default:
			out = append(out, "")
		}
	}
	return out
}

func featureColumns(ds *Dataset, features Features) ([][]float64, error) {
	ids := features.IDs()
	cols := make([][]float64, len(ids))
	for i, id := range ids {
		values, ok := features.Column(id)
		if !ok {
			return nil, fmt.Errorf("feature %s has no column", id)
		}
		if len(values) != ds.Len() {
			return nil, fmt.Errorf("feature %s has %d values for %d rows", id, len(values), ds.Len())
		}
		cols[i] = values
	}
	return cols, nil
}

// WriteAugmentedCSV writes the dataset with one extra column per feature.
func WriteAugmentedCSV(path string, ds *Dataset, features Features) error {
	cols, err := featureColumns(ds, features)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(AugmentedHeader(ds, features)); err != nil {
		return err
	}
	for i, row := range ds.Rows {
		out := make([]string, 0, len(ds.Header)+len(ds.Derived)+len(cols))
		out = append(out, ds.Records[i]...)
		out = append(out, derivedCells(ds, row)...)
		for _, col := range cols {
			out = append(out, FormatFloat(col[i]))
		}
		if err := w.Write(out); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteAugmentedParquet writes the same table as WriteAugmentedCSV. Parquet
// column names are sanitized; the returned map gives the parquet name of
// every augmented column.
func WriteAugmentedParquet(path string, ds *Dataset, features Features) (map[string]string, error) {
	cols, err := featureColumns(ds, features)
	if err != nil {
		return nil, err
	}
	header := AugmentedHeader(ds, features)
	names := ParquetColumnNames(header)

	textColumns := len(ds.Header) + len(ds.Derived)
	md := make([]string, len(header))
	for i := range header {
		if i < textColumns {
			md[i] = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY", names[i])
		} else {
			md[i] = fmt.Sprintf("name=%s, type=DOUBLE", names[i])
		}
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, err
	}
	pw, err := writer.NewCSVWriter(md, fw, 4)
	if err != nil {
		_ = fw.Close()
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for i, row := range ds.Rows {
		rec := make([]interface{}, 0, len(header))
		for _, v := range ds.Records[i] {
			rec = append(rec, v)
		}
		for _, v := range derivedCells(ds, row) {
			rec = append(rec, v)
		}
		for _, col := range cols {
			rec = append(rec, col[i])
		}
		if err := pw.Write(rec); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}

	mapping := make(map[string]string, len(header))
	for i, h := range header {
		mapping[h] = names[i]
	}
	return mapping, nil
}

// ParquetColumnNames maps arbitrary header names onto unique identifier-safe
// parquet names, e.g. "avg3bnd10/40-RMS" -> "avg3bnd10_40_RMS".
func ParquetColumnNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		var b strings.Builder
		for _, r := range h {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		}
		name := strings.Trim(b.String(), "_")
		if name == "" {
			name = "col"
		}
		if name[0] >= '0' && name[0] <= '9' {
			name = "c_" + name
		}
		base := name
		for n := 2; used[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// FormatFloat renders a feature value; NaN is written as an empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
