package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/genoreport/internal/chart"
	"github.com/nao1215/genoreport/internal/genotype"
	"github.com/nao1215/genoreport/internal/log"
	"github.com/nao1215/genoreport/internal/metric"
	"github.com/nao1215/genoreport/internal/model"
)

// Step is one stage of a report run.
type Step interface {
	// Do executes the step. Returned errors are fatal for the run;
	// non-fatal issues are recorded with Run.Warnf.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Warner prints warnings and returns the formatted message.
type Warner interface {
	Warnf(format string, args ...any) string
}

// Run carries the state of one report run between steps.
type Run struct {
	// Dataset is the input. Steps only read it.
	Dataset *genotype.Dataset

	// Request holds the options of the run.
	Request Request

	// Report accumulates the printed and archived results.
	Report *model.Report

	// Dir is the resolved output directory.
	Dir string

	// Vector is the computed statistic.
	Vector metric.Vector

	// Chart is the built chart, nil when no chart could be built.
	Chart *chart.Spec

	// Performed lists the names of the completed steps.
	Performed []string

	warner Warner
}

// NewRun creates a run over ds with an empty report.
func NewRun(ds *genotype.Dataset, req Request, warner Warner) *Run {
	return &Run{
		Dataset: ds,
		Request: req,
		Report:  model.NewReport(ds.Name(), req.Kind, req.Method),
		warner:  warner,
	}
}

// Warnf prints a warning and records it in the report.
func (r *Run) Warnf(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if r.warner != nil {
		msg = r.warner.Warnf(format, args...)
	}
	r.Report.AddWarning(msg)
	return msg
}

// Pipeline executes steps in order and stops at the first error.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence. Cancellation is checked before each
// step. The first step error is returned and no later step runs.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Log(ctx, log.LevelProgress, "executing step",
			"step", step.Name(),
			"dataset", run.Report.Dataset,
		)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"dataset", run.Report.Dataset,
				"error", err,
			)
			return err
		}

		p.logger.Log(ctx, log.LevelDetail, "step completed",
			"step", step.Name(),
			"dataset", run.Report.Dataset,
		)
		run.Performed = append(run.Performed, step.Name())
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
