package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/genoreport/internal/model"
)

// DefaultConcurrency is the number of datasets reported at once when no
// limit is configured.
const DefaultConcurrency = 4

// RunFunc reports on the dataset file at path and writes everything it
// prints to out.
type RunFunc func(ctx context.Context, path string, out io.Writer) (*model.Report, error)

// Result is the outcome of one dataset of a batch.
type Result struct {
	// Path is the dataset file.
	Path string

	// Report is nil when Err is set.
	Report *model.Report

	// Output holds what the run printed.
	Output []byte

	// Err is the fatal error of the run, if any.
	Err error
}

// BatchProcessor reports several dataset files concurrently.
// Each run prints into its own buffer so outputs never interleave.
type BatchProcessor struct {
	run         RunFunc
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent runs.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor calling run per dataset.
func NewBatchProcessor(run RunFunc, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		run:         run,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch reports every path and returns the results in input order.
// A failed dataset does not stop the others; its error is in its Result.
// The returned error is only set when the context is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))
	err := bp.ProcessBatchWithCallback(ctx, paths, func(r Result, i int) {
		results[i] = r
	})
	return results, err
}

// ProcessBatchWithCallback reports every path and calls callback once per
// dataset, strictly in input order, as soon as the dataset and all datasets
// before it are done. Callbacks never run concurrently.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	paths []string,
	callback func(result Result, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_datasets", len(paths),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	var (
		mu   sync.Mutex
		done = make([]*Result, len(paths))
		next int
	)
	// emit flushes the finished prefix of results in order.
	emit := func(i int, r Result) {
		mu.Lock()
		defer mu.Unlock()
		done[i] = &r
		for next < len(done) && done[next] != nil {
			callback(*done[next], next)
			done[next] = nil
			next++
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				emit(i, Result{Path: path, Err: ctx.Err()})
				return ctx.Err()
			default:
			}

			var buf bytes.Buffer
			report, err := bp.run(ctx, path, &buf)
			if err != nil {
				bp.logger.Warn("report failed",
					"dataset", path,
					"error", err,
				)
			}
			// A failed run is recorded, not returned, so the rest continue.
			emit(i, Result{Path: path, Report: report, Output: buf.Bytes(), Err: err})
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_datasets", len(paths),
		"elapsed", time.Since(startTime),
	)
	return err
}
