package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/genoreport/internal/chart"
	"github.com/nao1215/genoreport/internal/config"
	"github.com/nao1215/genoreport/internal/genotype"
	"github.com/nao1215/genoreport/internal/log"
	"github.com/nao1215/genoreport/internal/metric"
	"github.com/nao1215/genoreport/internal/model"
	"github.com/nao1215/genoreport/internal/report"
)

// Request holds the options of one report run.
type Request struct {
	// Kind selects the statistic.
	Kind model.Kind

	// Method selects the aggregation axis. Empty means the kind's default.
	Method model.Method

	// Plot holds the chart options.
	Plot config.PlotOptions

	// Save holds the chart persistence options.
	Save config.SaveOptions

	// IndToList is the length of the lowest-N listing of individual reports.
	IndToList int
}

// RequestFromConfig builds the request of a kind from a resolved config.
func RequestFromConfig(kind model.Kind, method model.Method, cfg *config.Config) Request {
	return Request{
		Kind:      kind,
		Method:    method,
		Plot:      cfg.Plot,
		Save:      cfg.Save,
		IndToList: cfg.IndToList,
	}
}

func (r Request) normalized() Request {
	if r.Method == "" {
		r.Method = r.Kind.DefaultMethod()
	}
	if r.IndToList <= 0 {
		r.IndToList = config.DefaultIndToList
	}
	if r.Plot.Bins <= 0 {
		r.Plot.Bins = config.DefaultBins
	}
	return r
}

// Generator produces reports. One Generator serves any number of runs.
type Generator struct {
	logger  *slog.Logger
	warner  Warner
	writer  report.Writer
	viewer  chart.Viewer
	archive Archiver
	workDir string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithGeneratorLogger sets the progress logger.
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithWarner sets where warnings are printed.
func WithWarner(w Warner) GeneratorOption {
	return func(g *Generator) {
		g.warner = w
	}
}

// WithWriter sets the report writer. Without one nothing is printed.
func WithWriter(w report.Writer) GeneratorOption {
	return func(g *Generator) {
		g.writer = w
	}
}

// WithViewer sets the chart viewer used when display is requested.
func WithViewer(v chart.Viewer) GeneratorOption {
	return func(g *Generator) {
		g.viewer = v
	}
}

// WithArchive stores every report in the archive.
func WithArchive(a Archiver) GeneratorOption {
	return func(g *Generator) {
		g.archive = a
	}
}

// WithWorkDir sets the default working directory used when a request has
// no save directory.
func WithWorkDir(dir string) GeneratorOption {
	return func(g *Generator) {
		g.workDir = dir
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Pipeline returns the steps of one run, in execution order.
func (g *Generator) Pipeline() *Pipeline {
	p := New(WithLogger(g.logger))
	p.AddSteps(
		NewResolveDirStep(g.workDir),
		&ValidateStep{},
		&ComputeStep{},
		NewSummarizeStep(g.logger),
		NewWriteStep(g.writer),
		NewChartStep(g.viewer),
		&SaveStep{},
		NewArchiveStep(g.archive),
	)
	return p
}

// Generate reports on ds and returns ds itself. The dataset is never
// modified. Fatal errors abort before any report output.
func (g *Generator) Generate(ctx context.Context, ds *genotype.Dataset, req Request) (*genotype.Dataset, error) {
	if _, err := g.Run(ctx, ds, req); err != nil {
		return nil, err
	}
	return ds, nil
}

// Run reports on ds and returns the finished report.
func (g *Generator) Run(ctx context.Context, ds *genotype.Dataset, req Request) (*model.Report, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: dataset is nil", metric.ErrMissingField)
	}
	run := NewRun(ds, req.normalized(), g.warner)

	g.logger.Log(ctx, log.LevelBanner, "starting report",
		"report", run.Report.Title(),
		"dataset", ds.Name(),
	)

	if err := g.Pipeline().Execute(ctx, run); err != nil {
		return nil, err
	}

	g.logger.Log(ctx, log.LevelBanner, "completed report",
		"report", run.Report.Title(),
		"dataset", ds.Name(),
		"warnings", len(run.Report.Warnings),
	)
	return run.Report, nil
}
