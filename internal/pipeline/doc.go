// Package pipeline runs report generation as a sequence of steps.
//
// A Generator builds one Pipeline per report run: resolve the output
// directory, validate the dataset, compute the statistic, summarize it,
// write the report, build and display the chart, save it and archive the
// report. Each step receives the shared Run and may add warnings to it.
//
// BatchProcessor reports several dataset files concurrently with errgroup
// and emits each dataset's output in input order.
package pipeline
