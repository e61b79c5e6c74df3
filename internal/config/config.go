package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/nao1215/genoreport/internal/chart"
	"github.com/nao1215/genoreport/internal/log"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "genoreport"

	// EnvWorkDir names the environment variable holding the default
	// working directory. It overrides the workdir entry of the config file.
	EnvWorkDir = "GENOREPORT_WORKDIR"

	// DefaultBins is the histogram bin count.
	DefaultBins = 50

	// DefaultIndToList is the number of lowest call-rate individuals listed
	// by individual-oriented reports.
	DefaultIndToList = 20

	// DefaultBatchSize is the number of datasets reported concurrently.
	// Chart rendering is CPU bound, so a small value keeps output responsive.
	DefaultBatchSize = 4

	// DefaultSaveType is the format tag used when a save name is given
	// without a type.
	DefaultSaveType = "RDS"
)

// PlotOptions controls the chart built by every report.
type PlotOptions struct {
	// Colors is the (border, fill) color pair. Entries are hex strings
	// ("#3B528BFF") or color names ("steelblue"). Fewer than two entries are
	// completed from the default palette; extra entries are dropped with a
	// warning.
	Colors []string

	// Theme names the chart theme (dartR, minimal, classic, dark).
	Theme string

	// Bins is the histogram bin count.
	Bins int

	// Display shows the chart through the viewer after it is built.
	Display bool
}

// SaveOptions controls chart persistence.
// Nothing is saved when Name is empty.
type SaveOptions struct {
	// Dir is the output directory. When empty, the default working
	// directory is used, and the system temp directory after that.
	Dir string

	// Name is the base file name without extension.
	Name string

	// Type is the format tag (RDS, png, jpeg, tiff, svg, pdf, eps).
	Type string
}

// Config holds all configuration options for genoreport.
// It is populated from built-in defaults, the configuration file, the
// environment and CLI flags, in that order, and passed explicitly to the
// report pipeline.
type Config struct {
	// WorkDir is the process-wide default working directory.
	// It is read once at startup and never changed afterwards.
	WorkDir string

	// Verbosity is the report verbosity, 0 to 5.
	Verbosity log.Verbosity

	// JSONLog writes log records as JSON lines instead of text.
	JSONLog bool

	// Plot holds the chart options.
	Plot PlotOptions

	// IndToList is the length of the lowest call-rate listing.
	IndToList int

	// Save holds the chart persistence options.
	Save SaveOptions

	// LocusFile is the locus metadata file. When empty, the sibling
	// <stem>.loci.tsv of each dataset is used if present.
	LocusFile string

	// JSONReport enables JSON report output instead of the text tables.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the text tables.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// BatchSize is the number of datasets reported concurrently.
	BatchSize int

	// Archive stores every generated report in the SQLite archive.
	Archive bool

	// ArchiveDir is the directory of the report archive.
	// Defaults to the XDG data directory (~/.local/share/genoreport on Linux).
	ArchiveDir string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the locations listed by FindConfigFile.
	ConfigFilePath string

	// Overrides holds the per-dataset settings loaded from the config file.
	Overrides *File

	// Datasets is the list of genotype files to report on.
	Datasets []string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Verbosity: log.DefaultVerbosity,
		Plot: PlotOptions{
			Colors:  chart.DefaultColors(),
			Theme:   chart.DefaultTheme.String(),
			Bins:    DefaultBins,
			Display: true,
		},
		IndToList:  DefaultIndToList,
		Save:       SaveOptions{Type: DefaultSaveType},
		BatchSize:  DefaultBatchSize,
		Archive:    true,
		ArchiveDir: XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for genoreport.
// On Linux: ~/.local/share/genoreport
// On macOS: ~/Library/Application Support/genoreport
// On Windows: %LOCALAPPDATA%\genoreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for genoreport.
// On Linux: ~/.config/genoreport
// On macOS: ~/Library/Application Support/genoreport
// On Windows: %APPDATA%\genoreport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error, wrapped with the
// offending value where one exists.
func (c *Config) Validate() error {
	if len(c.Datasets) == 0 {
		return ErrNoDataset
	}

	if !c.Verbosity.Valid() {
		return ErrInvalidVerbosity
	}

	if c.Plot.Bins <= 0 {
		return ErrInvalidBins
	}

	if c.IndToList < 0 {
		return ErrInvalidIndToList
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if err := validatePlot(c.Plot.Colors, c.Plot.Theme); err != nil {
		return err
	}

	if c.Overrides != nil {
		for name, o := range c.Overrides.Datasets {
			if o.Bins < 0 || o.IndToList < 0 {
				return wrapf(ErrInvalidOverride, "dataset %q: negative value", name)
			}
			if err := validatePlot(o.Colors, o.Theme); err != nil {
				return wrapf(err, "dataset %q", name)
			}
		}
	}

	return nil
}

func validatePlot(colors []string, theme string) error {
	for _, c := range colors {
		if _, err := chart.ParseColor(c); err != nil {
			return wrapf(ErrInvalidColor, "%q", c)
		}
	}
	if theme != "" {
		if _, err := chart.ParseTheme(theme); err != nil {
			return wrapf(ErrInvalidTheme, "%q", theme)
		}
	}
	return nil
}

// ForDataset returns a copy of c with the overrides of the named dataset
// applied on top of the file defaults. Dataset entries win over global
// settings because they are more specific.
func (c *Config) ForDataset(name string) *Config {
	out := *c
	out.Plot.Colors = append([]string(nil), c.Plot.Colors...)
	if c.Overrides == nil {
		return &out
	}

	o := c.Overrides.DatasetConfig(name)
	if o.LocusFile != "" {
		out.LocusFile = o.LocusFile
	}
	if len(o.Colors) > 0 {
		out.Plot.Colors = append([]string(nil), o.Colors...)
	}
	if o.Theme != "" {
		out.Plot.Theme = o.Theme
	}
	if o.Bins > 0 {
		out.Plot.Bins = o.Bins
	}
	if o.IndToList > 0 {
		out.IndToList = o.IndToList
	}
	if o.SaveName != "" {
		out.Save.Name = o.SaveName
	}
	return &out
}
