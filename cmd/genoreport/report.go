package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/genoreport/internal/chart"
	"github.com/nao1215/genoreport/internal/config"
	"github.com/nao1215/genoreport/internal/database"
	"github.com/nao1215/genoreport/internal/genotype"
	"github.com/nao1215/genoreport/internal/log"
	"github.com/nao1215/genoreport/internal/model"
	"github.com/nao1215/genoreport/internal/pipeline"
	"github.com/nao1215/genoreport/internal/report"
)

// NewReportCmd creates the report command of one statistic.
func NewReportCmd(kind model.Kind) *cobra.Command {
	info := kind.Info()
	methods := make([]string, 0, len(info.Methods))
	for _, m := range info.Methods {
		methods = append(methods, string(m))
	}

	cmd := &cobra.Command{
		Use:   kind.String() + " <genotypes.tsv>...",
		Short: "Report " + strings.ToLower(info.Label),
		Long: fmt.Sprintf(`Report %s of one or more genotype files.

Prints the number of loci and individuals, the five-number summary and mean,
the count of NA entries, the overall missing rate and a 21-row quantile
threshold table (0%%, 5%%, ..., 100%%). Individual-oriented reports add the
mean per population and the individuals with the lowest values.

Supported methods: %s (default %s).

Locus metadata (TrimmedSequence, rdepth, RepAvg, ...) is read from --loci or
from the sibling <name>.loci.tsv of each genotype file.

Examples:
  # Report a single dataset
  genoreport %[4]s turtles.tsv

  # Save the chart as a snapshot and a PNG image
  genoreport %[4]s --save-name %[4]s --save-type png turtles.tsv

  # Report several datasets, two at a time, as JSON
  genoreport %[4]s --batch 2 --json run1.tsv run2.tsv run3.tsv`,
			strings.ToLower(info.Label), strings.Join(methods, ", "), kind.DefaultMethod(), kind.String()),
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportCmd(cmd, args, kind)
		},
	}

	defaults := config.NewConfig()

	// Dataset flags
	cmd.Flags().StringP("loci", "l", "",
		"Locus metadata file (default: <name>.loci.tsv next to each genotype file)")
	cmd.Flags().StringP("method", "M", "",
		"Aggregation method: "+strings.Join(methods, " or "))
	cmd.Flags().IntP("ind-to-list", "n", config.DefaultIndToList,
		"Number of lowest individuals listed by individual reports")

	// Chart flags
	cmd.Flags().Int("bins", config.DefaultBins, "Histogram bin count")
	cmd.Flags().StringSlice("colors", defaults.Plot.Colors,
		"Border and fill colors (hex or color names)")
	cmd.Flags().String("theme", defaults.Plot.Theme,
		"Chart theme: "+themeNames())
	cmd.Flags().Bool("display", defaults.Plot.Display, "Show the chart after the report")
	cmd.Flags().String("save-dir", "", "Directory for saved charts (default: working directory)")
	cmd.Flags().String("save-name", "", "Base file name of saved charts; nothing is saved when empty")
	cmd.Flags().String("save-type", config.DefaultSaveType,
		"Chart format: RDS, png, jpeg, tiff, svg, pdf or eps")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of datasets reported concurrently")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Archive flags
	cmd.Flags().Bool("archive", defaults.Archive, "Store the report in the archive")
	cmd.Flags().String("archive-dir", "", "Archive directory (default: XDG data directory)")

	return cmd
}

func themeNames() string {
	names := make([]string, 0, len(chart.Themes()))
	for _, t := range chart.Themes() {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}

// runReportCmd executes a report command.
func runReportCmd(cmd *cobra.Command, args []string, kind model.Kind) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	method, err := methodFlag(cmd, kind)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runReport(ctx, cfg, kind, method, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// methodFlag parses --method. Empty selects the kind's default.
func methodFlag(cmd *cobra.Command, kind model.Kind) (model.Method, error) {
	s, err := cmd.Flags().GetString("method")
	if err != nil {
		return "", err
	}
	if s == "" {
		return kind.DefaultMethod(), nil
	}
	method, err := model.ParseMethod(s)
	if err != nil {
		return "", err
	}
	if !kind.Supports(method) {
		return "", fmt.Errorf("%s does not support method %q", kind, method)
	}
	return method, nil
}

// buildConfig layers defaults, the configuration file, the environment and
// the flags that were set explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit config path must exist; otherwise a missing file is fine.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(cf)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Datasets = args
	return cfg, nil
}

// applyFlags copies the explicitly set flags into cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("verbosity") {
		n, err := flags.GetInt("verbosity")
		if err != nil {
			return err
		}
		if cfg.Verbosity, err = log.ParseVerbosity(n); err != nil {
			return err
		}
	}
	if cfg.JSONLog, err = flags.GetBool("log-json"); err != nil {
		return err
	}

	stringFlags := map[string]*string{
		"loci":        &cfg.LocusFile,
		"theme":       &cfg.Plot.Theme,
		"save-dir":    &cfg.Save.Dir,
		"save-name":   &cfg.Save.Name,
		"save-type":   &cfg.Save.Type,
		"output":      &cfg.ReportFile,
		"archive-dir": &cfg.ArchiveDir,
	}
	for name, dst := range stringFlags {
		if flags.Changed(name) {
			if *dst, err = flags.GetString(name); err != nil {
				return err
			}
		}
	}

	intFlags := map[string]*int{
		"ind-to-list": &cfg.IndToList,
		"bins":        &cfg.Plot.Bins,
		"batch":       &cfg.BatchSize,
	}
	for name, dst := range intFlags {
		if flags.Changed(name) {
			if *dst, err = flags.GetInt(name); err != nil {
				return err
			}
		}
	}

	boolFlags := map[string]*bool{
		"display": &cfg.Plot.Display,
		"archive": &cfg.Archive,
	}
	for name, dst := range boolFlags {
		if flags.Changed(name) {
			if *dst, err = flags.GetBool(name); err != nil {
				return err
			}
		}
	}

	// Output formats are plain switches without a config file entry.
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}

	if flags.Changed("colors") {
		if cfg.Plot.Colors, err = flags.GetStringSlice("colors"); err != nil {
			return err
		}
	}
	return nil
}

// runReport reports every dataset of cfg and writes the results to stdout
// or the report file in input order.
func runReport(ctx context.Context, cfg *config.Config, kind model.Kind, method model.Method, stdout, stderr io.Writer) (err error) {
	logger := log.NewLogger(stderr, cfg.Verbosity)
	if cfg.JSONLog {
		logger = log.NewJSONLogger(stderr, cfg.Verbosity)
	}

	archive := openArchive(cfg, logger)
	if archive != nil {
		defer func() {
			if cerr := archive.Close(); cerr != nil {
				logger.Error("failed to close archive", "error", cerr)
			}
		}()
	}

	out, closeOut, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	run := func(ctx context.Context, path string, w io.Writer) (*model.Report, error) {
		dcfg := cfg.ForDataset(datasetName(path))

		ds, err := genotype.LoadFile(path, dcfg.LocusFile)
		if err != nil {
			return nil, err
		}

		// Structured reports keep the side channel off the report stream.
		side := w
		if cfg.JSONReport || cfg.MarkdownReport {
			side = stderr
		}

		opts := []pipeline.GeneratorOption{
			pipeline.WithGeneratorLogger(logger),
			pipeline.WithWarner(log.NewWarner(side, cfg.Verbosity)),
			pipeline.WithViewer(chart.NewTerminalViewer(side, 0)),
			pipeline.WithWorkDir(cfg.WorkDir),
		}
		if rw := newReportWriter(w, cfg); rw != nil {
			opts = append(opts, pipeline.WithWriter(rw))
		}
		if archive != nil {
			opts = append(opts, pipeline.WithArchive(archive))
		}

		return pipeline.NewGenerator(opts...).Run(ctx, ds, pipeline.RequestFromConfig(kind, method, dcfg))
	}

	bp := pipeline.NewBatchProcessor(run,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	failed := 0
	err = bp.ProcessBatchWithCallback(ctx, cfg.Datasets, func(r pipeline.Result, _ int) {
		if _, werr := out.Write(r.Output); werr != nil {
			logger.Error("failed to write report", "dataset", r.Path, "error", werr)
		}
		if r.Err != nil {
			failed++
			fmt.Fprintf(stderr, "Error: %s: %v\n", r.Path, r.Err)
		}
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d datasets failed", failed, len(cfg.Datasets))
	}
	return nil
}

// openArchive opens the report archive. Failures disable archiving with a
// logged warning.
func openArchive(cfg *config.Config, logger *slog.Logger) *database.ReportDB {
	if !cfg.Archive {
		return nil
	}
	dir := cfg.ArchiveDir
	if dir == "" {
		dir = config.XDGDataDir()
	}
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		logger.Warn("report archive disabled", "dir", dir, "error", err)
		return nil
	}
	logger.Log(context.Background(), log.LevelDetail, "archive opened", "path", db.Path())
	return db
}

// newReportWriter selects the report writer. Text reports are suppressed
// at verbosity 0 unless they go to a file.
func newReportWriter(w io.Writer, cfg *config.Config) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewEnvelopeWriter(w, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	case cfg.Verbosity.Reports() || cfg.ReportFile != "":
		return report.NewSimpleWriter(w, report.WithDetail(cfg.Verbosity >= log.VerbosityDetail))
	default:
		return nil
	}
}

// openOutput returns the report destination and its close function.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// datasetName returns the genotype file name without extension, the key of
// per-dataset config entries.
func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
