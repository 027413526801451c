package aspp

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lucasjlepore/unevenness-grade/signal"
)

// EvaluatorOptions configures the worker pool.
type EvaluatorOptions struct {
	// Workers bounds the pool; zero uses GOMAXPROCS.
	Workers int
	// Metrics is optional.
	Metrics *Metrics
	// Progress, when set, is called after every finished pipeline from a
	// single goroutine.
	Progress func(done, total int)
	Logger   *slog.Logger
}

// Evaluator runs many pipelines over one dataset in parallel.
type Evaluator struct {
	workers  int
	metrics  *Metrics
	progress func(done, total int)
	logger   *slog.Logger
}

// NewEvaluator builds an evaluator from opts.
func NewEvaluator(opts EvaluatorOptions) *Evaluator {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		workers:  workers,
		metrics:  opts.Metrics,
		progress: opts.Progress,
		logger:   logger,
	}
}

// Workers returns the pool size.
func (e *Evaluator) Workers() int { return e.workers }

type job struct {
	index    int
	pipeline *Pipeline
}

type column struct {
	index  int
	id     string
	values []float64
	took   time.Duration
}

// DecodeSignals decodes every raw trace cell once so workers can share the
// result read-only.
func DecodeSignals(raw []*string) ([]signal.Signal, error) {
	out := make([]signal.Signal, len(raw))
	for i, cell := range raw {
		s, err := signal.DecodeOptional(cell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// Evaluate computes one feature column per pipeline. signals must not be
// modified while Evaluate runs. The returned table lists columns in the
// order of pipelines; duplicate canonical ids fail the batch.
func (e *Evaluator) Evaluate(ctx context.Context, pipelines []*Pipeline, signals []signal.Signal) (*FeatureTable, error) {
	start := time.Now()
	seen := make(map[string]int, len(pipelines))
	for i, p := range pipelines {
		if prev, dup := seen[p.CanonicalID()]; dup {
			return nil, fmt.Errorf("%w: %s (pipelines %d and %d)", ErrDuplicateFeatureID, p.CanonicalID(), prev, i)
		}
		seen[p.CanonicalID()] = i
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan job)
	results := make(chan column)

	g.Go(func() error {
		defer close(jobs)
		for i, p := range pipelines {
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case jobs <- job{index: i, pipeline: p}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				began := time.Now()
				values := j.pipeline.EvaluateSignals(signals)
				select {
				case results <- column{index: j.index, id: j.pipeline.CanonicalID(), values: values, took: time.Since(began)}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]column, len(pipelines))
	done := 0
	for c := range results {
		collected[c.index] = c
		done++
		e.metrics.observePipeline(len(signals), c.took)
		if e.progress != nil {
			e.progress(done, len(pipelines))
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate pipelines: %w", err)
	}

	table := NewFeatureTable(len(signals))
	for _, c := range collected {
		if err := table.Add(c.id, c.values); err != nil {
			return nil, err
		}
	}
	e.metrics.observeBatch()
	e.logger.Debug("evaluated pipeline batch",
		slog.Int("pipelines", len(pipelines)),
		slog.Int("rows", len(signals)),
		slog.Int("workers", e.workers),
		slog.Duration("took", time.Since(start)),
	)
	return table, nil
}

// EvaluateRaw decodes raw cells and evaluates, for callers that do not keep
// decoded signals around.
func (e *Evaluator) EvaluateRaw(ctx context.Context, pipelines []*Pipeline, raw []*string) (*FeatureTable, error) {
	signals, err := DecodeSignals(raw)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(ctx, pipelines, signals)
}
