package aspp

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/unevenness-grade/signal"
)

func fixtureRows() []*string {
	return []*string{
		strPtr("0.1,0.4,-0.3,0.2,0.9,-1.1,0.05,0.3"),
		strPtr("1,2,3"),
		nil,
		strPtr(" 0.5 , -0.5 ,0.5,-0.5,0.5,-0.5 "),
		strPtr("nan"),
		strPtr("2.5,2.4,2.6,2.2,2.9,3.1,2.7,2.8,2.5,2.4,2.6,2.2"),
	}
}

func TestEvaluatorMatchesSequentialEvaluation(t *testing.T) {
	f, err := NewFamily([]string{"avg-3", "rmp-5", "bnd-10/40"}, []string{"RMS", "STD", "MOM"}, 2)
	require.NoError(t, err)
	pipelines, err := f.Create()
	require.NoError(t, err)

	raw := fixtureRows()
	signals, err := DecodeSignals(raw)
	require.NoError(t, err)

	var calls atomic.Int64
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	ev := NewEvaluator(EvaluatorOptions{
		Workers:  4,
		Metrics:  metrics,
		Progress: func(done, total int) { calls.Add(1); assert.LessOrEqual(t, done, total) },
	})
	table, err := ev.Evaluate(context.Background(), pipelines, signals)
	require.NoError(t, err)
	require.Equal(t, len(pipelines), table.Len())
	assert.Equal(t, len(raw), table.Rows())
	assert.Equal(t, int64(len(pipelines)), calls.Load())

	for i, id := range table.IDs() {
		assert.Equal(t, pipelines[i].CanonicalID(), id)
		want, err := pipelines[i].EvaluateRows(raw)
		require.NoError(t, err)
		got, ok := table.Column(id)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	counters := gatherCounters(t, reg)
	assert.Equal(t, float64(len(pipelines)), counters["aspp_pipelines_evaluated_total"])
	assert.Equal(t, float64(len(pipelines)*len(raw)), counters["aspp_rows_evaluated_total"])
	assert.Equal(t, 1.0, counters["aspp_evaluation_batches_total"])
}

func gatherCounters(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				out[mf.GetName()] += c.GetValue()
			}
		}
	}
	return out
}

func TestEvaluatorDefaultsWorkers(t *testing.T) {
	ev := NewEvaluator(EvaluatorOptions{})
	assert.Positive(t, ev.Workers())
}

func TestEvaluatorRejectsDuplicateIDs(t *testing.T) {
	pipelines := []*Pipeline{
		MustNew([]string{"avg-3"}, "RMS"),
		MustNew([]string{"avg-5"}, "RMS"),
		MustNew([]string{"avg-3"}, "RMS"),
	}
	signals, err := DecodeSignals(fixtureRows())
	require.NoError(t, err)
	_, err = NewEvaluator(EvaluatorOptions{Workers: 2}).Evaluate(context.Background(), pipelines, signals)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateFeatureID))
}

func TestEvaluateRawPropagatesMalformedSignal(t *testing.T) {
	raw := append(fixtureRows(), strPtr("1,,2"))
	_, err := NewEvaluator(EvaluatorOptions{Workers: 2}).EvaluateRaw(context.Background(),
		[]*Pipeline{MustNew(nil, "RMS")}, raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, signal.ErrMalformedSignal))
	assert.Contains(t, err.Error(), "row 6")
}

func TestEvaluatorHonoursCancelledContext(t *testing.T) {
	f, err := NewFamily([]string{"avg-3", "avg-5"}, []string{"RMS"}, 2)
	require.NoError(t, err)
	pipelines, err := f.Create()
	require.NoError(t, err)
	signals, err := DecodeSignals(fixtureRows())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewEvaluator(EvaluatorOptions{Workers: 1}).Evaluate(ctx, pipelines, signals)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
