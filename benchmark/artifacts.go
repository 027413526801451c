package benchmark

import (
	"encoding/csv"
	"os"
	"strconv"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/lucasjlepore/unevenness-grade/dataset"
	"github.com/lucasjlepore/unevenness-grade/score"
)

var scoreHeader = []string{"rank", "feature", "grading", "consistency", "overall"}

func writeScoresCSV(path string, ranked []score.ScoredFeature) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(scoreHeader); err != nil {
		return err
	}
	for i, sf := range ranked {
		row := []string{
			strconv.Itoa(i + 1),
			sf.Feature,
			dataset.FormatFloat(sf.Grading),
			dataset.FormatFloat(sf.Consistency),
			dataset.FormatFloat(sf.Overall),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type scoreParquetRow struct {
	Rank        int64   `parquet:"name=rank, type=INT64"`
	Feature     string  `parquet:"name=feature, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Grading     float64 `parquet:"name=grading, type=DOUBLE"`
	Consistency float64 `parquet:"name=consistency, type=DOUBLE"`
	Overall     float64 `parquet:"name=overall, type=DOUBLE"`
}

func writeScoresParquet(path string, ranked []score.ScoredFeature) error {
	data, err := marshalScoresParquet(ranked)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// marshalScoresParquet keeps NaN for undefined scores.
func marshalScoresParquet(ranked []score.ScoredFeature) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(scoreParquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for i, sf := range ranked {
		row := scoreParquetRow{
			Rank:        int64(i + 1),
			Feature:     sf.Feature,
			Grading:     sf.Grading,
			Consistency: sf.Consistency,
			Overall:     sf.Overall,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
