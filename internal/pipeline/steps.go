package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/genoreport/internal/chart"
	"github.com/nao1215/genoreport/internal/config"
	"github.com/nao1215/genoreport/internal/describe"
	"github.com/nao1215/genoreport/internal/log"
	"github.com/nao1215/genoreport/internal/metric"
	"github.com/nao1215/genoreport/internal/model"
	"github.com/nao1215/genoreport/internal/report"
)

// Archiver stores generated reports.
type Archiver interface {
	SaveReport(ctx context.Context, report *model.Report) (int64, error)
}

// ResolveDirStep picks the output directory of the run.
type ResolveDirStep struct {
	// workDir is the process-wide default working directory.
	workDir string
}

// NewResolveDirStep creates a ResolveDirStep falling back to workDir.
func NewResolveDirStep(workDir string) *ResolveDirStep {
	return &ResolveDirStep{workDir: workDir}
}

// Name returns the step name.
func (s *ResolveDirStep) Name() string { return "resolve_dir" }

// Do sets run.Dir. Invalid directories warn and fall back to the temp dir.
func (s *ResolveDirStep) Do(_ context.Context, run *Run) error {
	run.Dir = config.ResolveDir(run.Request.Save.Dir, s.workDir, run)
	return nil
}

// ValidateStep checks that the dataset can produce the requested report.
type ValidateStep struct{}

// Name returns the step name.
func (s *ValidateStep) Name() string { return "validate" }

// Do returns the precondition error of the kind, if any.
func (s *ValidateStep) Do(_ context.Context, run *Run) error {
	if err := metric.Validate(run.Dataset, run.Request.Kind, run.Request.Method); err != nil {
		return fmt.Errorf("cannot report %s: %w", run.Report.Title(), err)
	}
	return nil
}

// ComputeStep computes the statistic vector.
type ComputeStep struct{}

// Name returns the step name.
func (s *ComputeStep) Name() string { return "compute" }

// Do fills run.Vector and the dataset dimensions of the report.
func (s *ComputeStep) Do(_ context.Context, run *Run) error {
	ds := run.Dataset
	run.Vector = metric.Compute(ds, run.Request.Kind, run.Request.Method)

	run.Report.DataType = string(ds.Type())
	run.Report.NumLoci = ds.NumLoci()
	run.Report.NumIndividuals = ds.NumIndividuals()
	run.Report.Fingerprint = ds.Fingerprint()
	return nil
}

// SummarizeStep computes every table of the report.
type SummarizeStep struct {
	logger *slog.Logger
}

// NewSummarizeStep creates a SummarizeStep logging results to logger.
func NewSummarizeStep(logger *slog.Logger) *SummarizeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummarizeStep{logger: logger}
}

// Name returns the step name.
func (s *SummarizeStep) Name() string { return "summarize" }

// Do fills the summary, threshold, population and lowest-N tables.
// A vector without finite values leaves the tables empty and warns.
func (s *SummarizeStep) Do(ctx context.Context, run *Run) error {
	r := run.Report
	values := run.Vector.Values

	r.MissingRate = describe.Round(run.Dataset.MissingRate(), 2)

	summary, err := describe.Summarize(values)
	r.Summary = summary
	if errors.Is(err, describe.ErrNoValues) {
		run.Warnf("no finite %s values, summary and chart skipped", strings.ToLower(r.Kind.Info().Label))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to summarize %s: %w", r.Title(), err)
	}

	r.Thresholds = describe.Thresholds(values)

	if r.IsIndividual() {
		r.Populations = describe.PopulationMeans(values, run.Vector.Groups)
		r.Lowest = describe.Lowest(values, run.Vector.Names, run.Vector.Groups, run.Request.IndToList)
	}

	s.logger.Log(ctx, log.LevelResult, "summary computed",
		"dataset", r.Dataset,
		"report", r.Title(),
		"n", summary.N,
		"na", summary.NA,
		"mean", summary.Mean,
		"missing_rate", r.MissingRate,
	)
	return nil
}

// WriteStep prints the report.
type WriteStep struct {
	writer report.Writer
}

// NewWriteStep creates a WriteStep. A nil writer prints nothing.
func NewWriteStep(w report.Writer) *WriteStep {
	return &WriteStep{writer: w}
}

// Name returns the step name.
func (s *WriteStep) Name() string { return "write" }

// Do writes the report.
func (s *WriteStep) Do(_ context.Context, run *Run) error {
	if s.writer == nil {
		return nil
	}
	if _, err := s.writer.Write(run.Report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ChartStep builds the combined boxplot and histogram and displays it.
type ChartStep struct {
	viewer chart.Viewer
}

// NewChartStep creates a ChartStep. A nil viewer never displays.
func NewChartStep(viewer chart.Viewer) *ChartStep {
	return &ChartStep{viewer: viewer}
}

// Name returns the step name.
func (s *ChartStep) Name() string { return "chart" }

// Do sets run.Chart. Nothing is built when the summary has no values.
func (s *ChartStep) Do(_ context.Context, run *Run) error {
	if run.Report.Summary.N == 0 {
		return nil
	}
	opts := run.Request.Plot

	palette, msg := chart.ResolvePalette(opts.Colors)
	if msg != "" {
		run.Warnf("%s", msg)
	}
	theme, err := chart.ParseTheme(opts.Theme)
	if err != nil {
		return err
	}

	spec := chart.NewSpec(run.Report.Title(), run.Request.Kind.Info().AxisLabel, run.Vector.Values, chart.Options{
		Palette: palette,
		Theme:   theme,
		Bins:    opts.Bins,
	})
	run.Chart = &spec

	if opts.Display && s.viewer != nil {
		if err := s.viewer.View(spec); err != nil {
			run.Warnf("failed to display chart: %v", err)
		}
	}
	return nil
}

// SaveStep persists the chart when a save name is set.
type SaveStep struct{}

// Name returns the step name.
func (s *SaveStep) Name() string { return "save" }

// Do writes the snapshot and image files into run.Dir.
// Unknown format tags and write failures warn and skip the save.
func (s *SaveStep) Do(_ context.Context, run *Run) error {
	save := run.Request.Save
	if save.Name == "" || run.Chart == nil {
		return nil
	}
	tag := save.Type
	if tag == "" {
		tag = config.DefaultSaveType
	}

	files, err := chart.Save(*run.Chart, run.Dir, save.Name, tag)
	run.Report.ChartFiles = append(run.Report.ChartFiles, files...)
	switch {
	case errors.Is(err, chart.ErrUnknownFormat):
		run.Warnf("unknown save type %q (use one of %s), chart not saved", tag, formatList())
	case err != nil:
		run.Warnf("%v", err)
	}
	return nil
}

func formatList() string {
	names := make([]string, 0, len(chart.Formats()))
	for _, f := range chart.Formats() {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}

// ArchiveStep stores the finished report.
type ArchiveStep struct {
	archive Archiver
}

// NewArchiveStep creates an ArchiveStep. A nil archive stores nothing.
func NewArchiveStep(archive Archiver) *ArchiveStep {
	return &ArchiveStep{archive: archive}
}

// Name returns the step name.
func (s *ArchiveStep) Name() string { return "archive" }

// Do saves the report. Archive failures only warn.
func (s *ArchiveStep) Do(ctx context.Context, run *Run) error {
	if s.archive == nil {
		return nil
	}
	if _, err := s.archive.SaveReport(ctx, run.Report); err != nil {
		run.Warnf("failed to archive report: %v", err)
	}
	return nil
}
